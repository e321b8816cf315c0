package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/abgdnv/product-catalog/internal/product/errors"
	"github.com/google/uuid"
)

// inMemory implements ProductStore using an in-memory map.
type inMemory struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[string]Product),
	}
}

// Insert stores a new product, assigning a UUID when the ID is empty.
func (s *inMemory) Insert(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, fmt.Errorf("insert product %s: %w", product.ID, errors.ErrDuplicateID)
	}
	s.products[product.ID] = product

	return &product, nil
}

// FindAll retrieves all products.
func (s *inMemory) FindAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	return list, nil
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	return p, ok, nil
}

// Save creates or overwrites the product under its ID.
func (s *inMemory) Save(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	s.products[product.ID] = product

	return &product, nil
}

func (s *inMemory) Ping(_ context.Context) error { return nil }
