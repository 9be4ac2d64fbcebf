// Package catalog defines the product entity shared by the store and service layers.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a single catalog record. ID and CreatedAt are assigned by the
// database on insert and never change afterwards.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int32
	ImageURL    string
	CreatedAt   time.Time
}

// CreateParams carries the fields of a product draft, i.e. a product
// before the database has assigned its ID and creation timestamp.
type CreateParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int32
	ImageURL    string
}
