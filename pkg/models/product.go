package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is reference data describing a product type (e.g. "Free Range
// Chicken"). Creation is mirrored to the ledger; later mutations are
// local-only.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	SyncFields
}

// TableName returns the database table name
func (Product) TableName() string {
	return "products"
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// UpdateProductRequest is the request body for updating a product
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ProductResponse is the API response for product operations
type ProductResponse struct {
	Product
}

// ProductListResponse is the API response for listing products
type ProductListResponse struct {
	Items      []Product `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}
