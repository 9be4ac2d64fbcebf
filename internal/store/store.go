// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/mzherdev/product-catalog/internal/catalog"
	"github.com/shopspring/decimal"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)

	// Exists reports whether a product with the given ID is persisted.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// FindAll returns all available products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]catalog.Product, error)

	// FindByCategory returns all products in the given category.
	FindByCategory(ctx context.Context, category string) ([]catalog.Product, error)

	// SearchByName returns products whose name contains the search term (case-insensitive).
	SearchByName(ctx context.Context, term string) ([]catalog.Product, error)

	// FindByPriceRange returns products priced within [minPrice, maxPrice], bounds inclusive.
	FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]catalog.Product, error)

	// FindLowStock returns products whose stock is strictly below the threshold.
	FindLowStock(ctx context.Context, threshold int32) ([]catalog.Product, error)

	// Create adds a new product. The database assigns ID and creation timestamp.
	Create(ctx context.Context, params catalog.CreateParams) (*catalog.Product, error)

	// Update replaces every mutable field of an existing product by ID.
	// Callers must have already confirmed the product exists.
	Update(ctx context.Context, product *catalog.Product) error

	// AdjustStock atomically increments the stock of a product by delta
	// (which may be negative). The increment only applies when the resulting
	// stock is non-negative; the returned boolean reports whether a row changed.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int32) (bool, error)

	// DeleteByID removes a product by its ID. Absence is not an error at this layer.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// CountByCategory returns the number of products per category, covering
	// exactly the categories present in storage.
	CountByCategory(ctx context.Context) (map[string]int64, error)
}
