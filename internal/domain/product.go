package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product mirrors the backend product payload. Price arrives as a JSON
// string ("249.00") and is kept as a decimal so no float conversion ever
// touches money. Weight is a free-form display string ("500 g") owned by
// the backend; it is never parsed or used in arithmetic.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Images      []string        `json:"images,omitempty"`
	Stock       int             `json:"stock"`
	Weight      string          `json:"weight"`
	Tag         string          `json:"tag,omitempty"`
	Rating      float64         `json:"rating"`
	CreatedAt   time.Time       `json:"created_at"`
}

// FeaturedProduct is a product pinned to the storefront landing page.
type FeaturedProduct struct {
	ID       int64   `json:"id"`
	Product  Product `json:"product"`
	IsActive bool    `json:"is_active"`
}
