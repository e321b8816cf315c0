// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// Product represents a product document in the store.
type Product struct {
	ID          string  `json:"id"          bson:"_id"`
	Name        string  `json:"name"        bson:"name"`
	Description string  `json:"description" bson:"description"`
	Price       float64 `json:"price"       bson:"price"`
	Category    string  `json:"category"    bson:"category"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, MongoDB, PostgreSQL).
type ProductStore interface {
	// Insert adds a new product. An empty ID is assigned by the store.
	// Returns ErrDuplicateID if a product with the same ID already exists.
	Insert(ctx context.Context, product Product) (*Product, error)

	// FindAll returns all available products in store-defined order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// The boolean is false if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (Product, bool, error)

	// Save creates the product if its ID is absent, or fully overwrites it otherwise.
	Save(ctx context.Context, product Product) (*Product, error)

	// Ping reports whether the underlying store is reachable.
	Ping(ctx context.Context) error
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
