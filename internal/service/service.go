// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mzherdev/product-catalog/internal/catalog"
	perrors "github.com/mzherdev/product-catalog/internal/errors"
	"github.com/mzherdev/product-catalog/internal/store"
	"github.com/shopspring/decimal"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindAll returns all available products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindByCategory returns all products in the given category.
	FindByCategory(ctx context.Context, category string) ([]ProductDto, error)

	// SearchByName returns products whose name contains the search term (case-insensitive).
	SearchByName(ctx context.Context, term string) ([]ProductDto, error)

	// FindByPriceRange returns products priced within [minPrice, maxPrice], bounds inclusive.
	FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]ProductDto, error)

	// FindLowStock returns products whose stock is strictly below the threshold.
	FindLowStock(ctx context.Context, threshold int32) ([]ProductDto, error)

	// Create validates a product draft and adds it to the catalog.
	// Returns ErrPriceNegative or ErrStockNegative on invalid drafts.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update validates and replaces an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) error

	// AdjustStock atomically changes the stock of a product by delta, which may be negative.
	// Returns ErrProductNotFound if no product exists with the given ID and
	// ErrInsufficientStock if the adjustment would drive stock below zero.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int32) error

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// CountByCategory returns the number of products per category.
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// DefaultLowStockThreshold is the stock level below which products are
// reported by the low-stock query when the caller does not supply one.
const DefaultLowStockThreshold = 10

// ProductCreateDto represents the data transfer object for creating a new product.
// Price and stock sign checks are business rules and live in the service, not in tags.
type ProductCreateDto struct {
	Name        string          `json:"name"        validate:"required,max=100"`
	Description string          `json:"description" validate:"required,max=500"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"    validate:"required"`
	Stock       int32           `json:"stock"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// ProductUpdateDto represents the data transfer object for replacing an existing product.
type ProductUpdateDto struct {
	Name        string          `json:"name"        validate:"required,max=100"`
	Description string          `json:"description" validate:"required,max=500"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"    validate:"required"`
	Stock       int32           `json:"stock"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// StockAdjustDto represents the data transfer object for a stock adjustment.
// Quantity is a delta and may be negative.
type StockAdjustDto struct {
	Quantity int32 `json:"quantity"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int32           `json:"stock"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Created     string          `json:"created"`
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// FindByCategory retrieves products in the given category as ProductDTOs.
func (s *Service) FindByCategory(ctx context.Context, category string) ([]ProductDto, error) {
	products, err := s.repository.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by category %q: %w", category, err)
	}
	return toDtos(products), nil
}

// SearchByName retrieves products whose name contains the search term as ProductDTOs.
func (s *Service) SearchByName(ctx context.Context, term string) ([]ProductDto, error) {
	products, err := s.repository.SearchByName(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name %q: %w", term, err)
	}
	return toDtos(products), nil
}

// FindByPriceRange retrieves products within the inclusive price range as ProductDTOs.
func (s *Service) FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]ProductDto, error) {
	products, err := s.repository.FindByPriceRange(ctx, minPrice, maxPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by price range: %w", err)
	}
	return toDtos(products), nil
}

// FindLowStock retrieves products whose stock is strictly below the threshold as ProductDTOs.
func (s *Service) FindLowStock(ctx context.Context, threshold int32) ([]ProductDto, error) {
	products, err := s.repository.FindLowStock(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch low stock products: %w", err)
	}
	return toDtos(products), nil
}

// Create validates a product draft, persists it, and returns it as a ProductDto.
// Validation runs before any repository call, so invalid drafts cause no writes.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	if err := validateDraft(product.Price, product.Stock); err != nil {
		return nil, err
	}
	created, err := s.repository.Create(ctx, catalog.CreateParams{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(created), nil
}

// Update validates and replaces an existing product's details.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) error {
	exists, err := s.repository.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check product %s before update: %w", id, err)
	}
	if !exists {
		return perrors.ErrProductNotFound
	}
	if err := validateDraft(product.Price, product.Stock); err != nil {
		return err
	}
	err = s.repository.Update(ctx, &catalog.Product{
		ID:          id,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
	})
	if err != nil {
		return fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	return nil
}

// AdjustStock changes the stock of a product by delta. The pre-read guard
// produces ErrInsufficientStock without a write in the common case; the
// store's conditional increment is the authoritative check under concurrency.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, delta int32) error {
	current, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch product %s before stock adjustment: %w", id, err)
	}
	if current.Stock+delta < 0 {
		return perrors.ErrInsufficientStock
	}
	applied, err := s.repository.AdjustStock(ctx, id, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust stock for product with ID %s: %w", id, err)
	}
	if !applied {
		// A concurrent adjustment consumed the stock between the guard and the increment.
		return perrors.ErrInsufficientStock
	}
	return nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repository.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check product %s before deletion: %w", id, err)
	}
	if !exists {
		return perrors.ErrProductNotFound
	}
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	return nil
}

// CountByCategory returns the number of products per category.
func (s *Service) CountByCategory(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repository.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products by category: %w", err)
	}
	return counts, nil
}

// validateDraft enforces the sign invariants shared by create and update.
func validateDraft(price decimal.Decimal, stock int32) error {
	if price.IsNegative() {
		return perrors.ErrPriceNegative
	}
	if stock < 0 {
		return perrors.ErrStockNegative
	}
	return nil
}

// toDto converts a catalog.Product to a ProductDto.
func toDto(product *catalog.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
		Created:     product.CreatedAt.Format(time.RFC3339),
	}
}

func toDtos(products []catalog.Product) []ProductDto {
	productDTOs := make([]ProductDto, len(products))
	for i := range products {
		productDTOs[i] = *toDto(&products[i])
	}
	return productDTOs
}
