// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"

	"github.com/abgdnv/product-catalog/internal/product/store"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// AddProduct inserts a new product and returns it with its assigned ID.
	// Returns ErrDuplicateID if a product with the same ID already exists.
	AddProduct(ctx context.Context, product ProductDto) (*ProductDto, error)

	// GetAllProducts returns all available products.
	// Returns an empty slice if no products exist.
	GetAllProducts(ctx context.Context) ([]ProductDto, error)

	// GetProductByID retrieves a single product by its unique identifier.
	// The boolean is false if the product does not exist; that is not an error.
	GetProductByID(ctx context.Context, id string) (*ProductDto, bool, error)

	// UpdateProduct stores update under id, overriding any ID in the payload.
	// It does not check for existence: an unknown id creates a new product.
	UpdateProduct(ctx context.Context, id string, update ProductDto) (*ProductDto, error)
}

// service implements ProductService and provides methods to manage products.
type service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) ProductService {
	return &service{
		repository: repo,
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// AddProduct inserts the product and returns the stored record.
func (s *service) AddProduct(ctx context.Context, product ProductDto) (*ProductDto, error) {
	p, err := s.repository.Insert(ctx, toModel(product))
	if err != nil {
		return nil, fmt.Errorf("failed to add product: %w", err)
	}

	return toDto(p), nil
}

// GetAllProducts retrieves a list of all products and returns them as ProductDTOs.
func (s *service) GetAllProducts(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// GetProductByID retrieves a product by its ID and returns it as a ProductDto.
func (s *service) GetProductByID(ctx context.Context, id string) (*ProductDto, bool, error) {
	product, found, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	if !found {
		return nil, false, nil
	}

	return toDto(&product), true, nil
}

// UpdateProduct sets the product ID to id and upserts it.
func (s *service) UpdateProduct(ctx context.Context, id string, update ProductDto) (*ProductDto, error) {
	update.ID = id
	p, err := s.repository.Save(ctx, toModel(update))
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	return toDto(p), nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
	}
}

func toModel(dto ProductDto) store.Product {
	return store.Product{
		ID:          dto.ID,
		Name:        dto.Name,
		Description: dto.Description,
		Price:       dto.Price,
		Category:    dto.Category,
	}
}
