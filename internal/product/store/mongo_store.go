package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/product-catalog/internal/product/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the MongoDB collection holding product documents.
const CollectionName = "products"

var _ ProductStore = (*MongoStore)(nil)

// MongoStore implements ProductStore on top of a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore creates a ProductStore backed by the products collection of the given database.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(CollectionName),
	}
}

// Insert adds a new document. Fails with ErrDuplicateID if the _id is taken.
func (s *MongoStore) Insert(ctx context.Context, product Product) (*Product, error) {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.coll.InsertOne(ctx, product)
		return err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert product %s: %w: %w", product.ID, perrors.ErrDuplicateID, err)
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return &product, nil
}

// FindAll returns every document in natural order.
func (s *MongoStore) FindAll(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, 16)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		cur, err := s.coll.Find(ctx, bson.D{})
		if err != nil {
			return err
		}
		defer func() { _ = cur.Close(ctx) }()

		return cur.All(ctx, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return out, nil
}

// FindByID looks a product up by _id.
func (s *MongoStore) FindByID(ctx context.Context, id string) (Product, bool, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return p, true, nil
}

// Save replaces the document with the same _id, inserting it when absent.
func (s *MongoStore) Save(ctx context.Context, product Product) (*Product, error) {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.coll.ReplaceOne(ctx,
			bson.D{{Key: "_id", Value: product.ID}},
			product,
			options.Replace().SetUpsert(true),
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save product %s: %w", product.ID, err)
	}
	return &product, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.client.Ping(ctx, readpref.Primary())
	})
}
