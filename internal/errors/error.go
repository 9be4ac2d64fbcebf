// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when no product exists with the requested ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrPriceNegative is returned when a draft carries a negative price.
	ErrPriceNegative = errors.New("price cannot be negative")

	// ErrStockNegative is returned when a draft carries a negative stock quantity.
	ErrStockNegative = errors.New("stock cannot be negative")

	// ErrInsufficientStock is returned when a stock adjustment would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)
