package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mzherdev/product-catalog/internal/catalog"
	perrors "github.com/mzherdev/product-catalog/internal/errors"
	"github.com/shopspring/decimal"
)

const productColumns = "id, name, description, price, category, stock, image_url, created_at"

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// Exists reports whether a product with the given ID is persisted.
func (p *PgStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM products WHERE id = $1`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return count > 0, nil
}

// FindAll retrieves all available products.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at`
	return p.queryProducts(ctx, query)
}

// FindByCategory retrieves all products in the given category.
func (p *PgStore) FindByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at`
	return p.queryProducts(ctx, query, category)
}

// likeEscaper neutralizes the LIKE metacharacters so a search term
// containing % or _ matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByName retrieves products whose name contains the search term, ignoring case.
func (p *PgStore) SearchByName(ctx context.Context, term string) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY created_at`
	return p.queryProducts(ctx, query, likeEscaper.Replace(term))
}

// FindByPriceRange retrieves products priced within the inclusive [minPrice, maxPrice] range.
func (p *PgStore) FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE price >= $1 AND price <= $2 ORDER BY price`
	return p.queryProducts(ctx, query, minPrice, maxPrice)
}

// FindLowStock retrieves products whose stock is strictly below the threshold.
func (p *PgStore) FindLowStock(ctx context.Context, threshold int32) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock < $1 ORDER BY stock`
	return p.queryProducts(ctx, query, threshold)
}

// Create adds a new product to the catalog.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, params catalog.CreateParams) (*catalog.Product, error) {
	query := `INSERT INTO products (name, description, price, category, stock, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns
	product, err := scanProduct(p.db.QueryRow(ctx, query,
		params.Name, params.Description, params.Price, params.Category, params.Stock, params.ImageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces every mutable field of an existing product by ID.
// Callers must have already confirmed the product exists.
func (p *PgStore) Update(ctx context.Context, product *catalog.Product) error {
	query := `UPDATE products
		SET name = $2, description = $3, price = $4, category = $5, stock = $6, image_url = $7
		WHERE id = $1`
	_, err := p.db.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Price,
		product.Category, product.Stock, product.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// AdjustStock atomically increments the stock of a product by delta.
// The WHERE clause rejects the update when the adjusted stock would be
// negative, so concurrent adjustments can never drive stock below zero.
func (p *PgStore) AdjustStock(ctx context.Context, id uuid.UUID, delta int32) (bool, error) {
	query := `UPDATE products SET stock = stock + $2 WHERE id = $1 AND stock + $2 >= 0`
	tag, err := p.db.Exec(ctx, query, id, delta)
	if err != nil {
		return false, fmt.Errorf("failed to adjust product stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByID removes a product by its unique identifier.
// Deleting an absent product is a no-op.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	return nil
}

// CountByCategory returns the number of products per category.
// Categories with no products are omitted, not zero-filled.
func (p *PgStore) CountByCategory(ctx context.Context) (map[string]int64, error) {
	rows, err := p.db.Query(ctx, `SELECT category, count(*) FROM products GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to count products by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category counts: %w", err)
	}
	return counts, nil
}

func (p *PgStore) queryProducts(ctx context.Context, query string, args ...any) ([]catalog.Product, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0)
	for rows.Next() {
		var product catalog.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Category, &product.Stock, &product.ImageURL, &product.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var product catalog.Product
	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Category, &product.Stock, &product.ImageURL, &product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
