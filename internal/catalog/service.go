// Package catalog serves product listings with a cache-aside layer in
// front of the backend. The catalog changes rarely, so listings are cached
// aggressively while carts and orders always go straight to the server.
package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

const (
	productsKey = "products"
	featuredKey = "featured"
)

// CatalogAPI is the slice of the backend client the service needs.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	FeaturedProducts(ctx context.Context) ([]domain.FeaturedProduct, error)
}

type Service struct {
	api   CatalogAPI
	cache Cache
	sfg   singleflight.Group
}

func NewService(api CatalogAPI, cache Cache) *Service {
	return &Service{api: api, cache: cache}
}

// Products returns the full catalog, from cache when possible. Concurrent
// callers missing the cache share one backend fetch. The cache fill runs
// in the background; a cache failure never fails the listing.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	if cached, err := s.cache.GetProducts(ctx, productsKey); err == nil {
		return cached, nil
	}

	v, err, _ := s.sfg.Do(productsKey, func() (any, error) {
		products, err := s.api.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := s.cache.SetProducts(context.Background(), productsKey, products); err != nil {
				log.Printf("catalog: cache fill failed: %v", err)
			}
		}()
		return products, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return v.([]domain.Product), nil
}

// Product returns one product. The cached listing is consulted first so
// browsing from a loaded catalog never refetches.
func (s *Service) Product(ctx context.Context, id int64) (domain.Product, error) {
	if cached, err := s.cache.GetProducts(ctx, productsKey); err == nil {
		for _, p := range cached {
			if p.ID == id {
				return p, nil
			}
		}
	}

	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Featured returns the landing-page products, filtered to active ones.
func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	if cached, err := s.cache.GetProducts(ctx, featuredKey); err == nil {
		return cached, nil
	}

	v, err, _ := s.sfg.Do(featuredKey, func() (any, error) {
		featured, err := s.api.FeaturedProducts(ctx)
		if err != nil {
			return nil, err
		}
		products := make([]domain.Product, 0, len(featured))
		for _, f := range featured {
			if f.IsActive {
				products = append(products, f.Product)
			}
		}
		go func() {
			if err := s.cache.SetProducts(context.Background(), featuredKey, products); err != nil {
				log.Printf("catalog: cache fill failed: %v", err)
			}
		}()
		return products, nil
	})
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	return v.([]domain.Product), nil
}

// Search filters the catalog by a case-insensitive match against name,
// description and tag. An empty query returns the whole catalog.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return products, nil
	}

	var out []domain.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) ||
			strings.Contains(strings.ToLower(p.Tag), query) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Invalidate drops the cached listings so the next read refetches.
func (s *Service) Invalidate(ctx context.Context) error {
	for _, key := range []string{productsKey, featuredKey} {
		if err := s.cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("invalidate %s: %w", key, err)
		}
	}
	return nil
}
