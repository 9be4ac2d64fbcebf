// Package main seeds the catalog database with a sample product set.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mzherdev/product-catalog/internal/catalog"
	"github.com/mzherdev/product-catalog/internal/config"
	"github.com/mzherdev/product-catalog/internal/store"
	"github.com/mzherdev/product-catalog/pkg/bootstrap"
	"github.com/mzherdev/product-catalog/pkg/config/configloader"
	"github.com/shopspring/decimal"
)

const serviceName = "catalog"

var sampleProducts = []catalog.CreateParams{
	{
		Name:        `MacBook Pro 16"`,
		Description: "High-performance laptop with M3 Pro chip, 16GB RAM, 512GB SSD",
		Price:       decimal.NewFromFloat(2499.99),
		Category:    "Electronics",
		Stock:       25,
		ImageURL:    "https://example.com/macbook-pro.jpg",
	},
	{
		Name:        "iPhone 15 Pro",
		Description: "Latest iPhone with A17 Pro chip, 256GB storage",
		Price:       decimal.NewFromFloat(1199.99),
		Category:    "Electronics",
		Stock:       50,
		ImageURL:    "https://example.com/iphone-15-pro.jpg",
	},
	{
		Name:        "Sony WH-1000XM5 Headphones",
		Description: "Premium noise-cancelling wireless headphones",
		Price:       decimal.NewFromFloat(399.99),
		Category:    "Electronics",
		Stock:       40,
		ImageURL:    "https://example.com/sony-headphones.jpg",
	},
	{
		Name:        "Ergonomic Office Chair",
		Description: "Comfortable office chair with lumbar support",
		Price:       decimal.NewFromFloat(299.99),
		Category:    "Furniture",
		Stock:       15,
		ImageURL:    "https://example.com/office-chair.jpg",
	},
	{
		Name:        "Standing Desk",
		Description: `Height-adjustable standing desk, 60" x 30"`,
		Price:       decimal.NewFromFloat(599.99),
		Category:    "Furniture",
		Stock:       8,
		ImageURL:    "https://example.com/standing-desk.jpg",
	},
	{
		Name:        "Mechanical Keyboard",
		Description: "RGB mechanical gaming keyboard with Cherry MX switches",
		Price:       decimal.NewFromFloat(149.99),
		Category:    "Electronics",
		Stock:       30,
		ImageURL:    "https://example.com/keyboard.jpg",
	},
	{
		Name:        "Wireless Mouse",
		Description: "Ergonomic wireless mouse with precision tracking",
		Price:       decimal.NewFromFloat(79.99),
		Category:    "Electronics",
		Stock:       60,
		ImageURL:    "https://example.com/mouse.jpg",
	},
	{
		Name:        `4K Monitor 27"`,
		Description: "Ultra HD 4K monitor with IPS panel and HDR",
		Price:       decimal.NewFromFloat(449.99),
		Category:    "Electronics",
		Stock:       20,
		ImageURL:    "https://example.com/monitor.jpg",
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("seeding failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := configloader.Load[*config.Config](serviceName)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := bootstrap.NewLogger(cfg.Log.Level)

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()

	productStore := store.NewPgStore(dbPool)
	for _, params := range sampleProducts {
		created, err := productStore.Create(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", params.Name, err)
		}
		logger.Info("Seeded product", "ID", created.ID, "Name", created.Name)
	}
	logger.Info("Seeding complete", "count", len(sampleProducts))
	return nil
}
