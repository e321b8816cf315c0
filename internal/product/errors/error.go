// Package errors provides custom error types for product-related operations.
package errors

import "errors"

// ErrDuplicateID is returned when an insert collides with an existing product id.
var ErrDuplicateID = errors.New("product with this id already exists")
