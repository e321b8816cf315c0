package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/product-catalog/internal/product/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const pgUniqueViolation = "23505"

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS products (
		id  TEXT PRIMARY KEY,
		doc JSONB NOT NULL
	)`

var _ ProductStore = (*PgStore)(nil)

// PgStore implements ProductStore using PostgreSQL, one JSONB document per row.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// EnsureSchema creates the products table when it does not exist yet.
func (p *PgStore) EnsureSchema(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := p.db.Exec(ctx, createTableSQL)
		return err
	})
}

// Insert adds a new product. Fails with ErrDuplicateID on primary key conflicts.
func (p *PgStore) Insert(ctx context.Context, product Product) (*Product, error) {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}
	doc, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := p.db.Exec(ctx, `INSERT INTO products (id, doc) VALUES ($1, $2)`, product.ID, doc)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("insert product %s: %w: %w", product.ID, perrors.ErrDuplicateID, err)
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return &product, nil
}

// FindAll retrieves all products.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, 16)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := p.db.Query(ctx, `SELECT doc FROM products`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				return err
			}
			var product Product
			if err := json.Unmarshal(raw, &product); err != nil {
				return err
			}
			out = append(out, product)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return out, nil
}

// FindByID retrieves a product by its unique identifier.
func (p *PgStore) FindByID(ctx context.Context, id string) (Product, bool, error) {
	var raw []byte

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return p.db.QueryRow(ctx, `SELECT doc FROM products WHERE id = $1`, id).Scan(&raw)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, fmt.Errorf("failed to find product by ID: %w", err)
	}

	var product Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return Product{}, false, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return product, true, nil
}

// Save upserts the product document under its ID.
func (p *PgStore) Save(ctx context.Context, product Product) (*Product, error) {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}
	doc, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := p.db.Exec(ctx, `
			INSERT INTO products (id, doc) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc
		`, product.ID, doc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save product %s: %w", product.ID, err)
	}
	return &product, nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return p.db.Ping(ctx)
	})
}
