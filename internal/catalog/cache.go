package catalog

import (
	"context"
	"errors"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

// Cache stores product listings between backend fetches. Implementations
// return ErrCacheMiss when a key is absent or expired.
type Cache interface {
	GetProducts(ctx context.Context, key string) ([]domain.Product, error)
	SetProducts(ctx context.Context, key string, products []domain.Product) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")
