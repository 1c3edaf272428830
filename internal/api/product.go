package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

// ListProducts fetches the full product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/", nil, nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var product domain.Product
	path := fmt.Sprintf("/api/products/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &product); err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return product, nil
}

// FeaturedProducts fetches the active landing-page features.
func (c *Client) FeaturedProducts(ctx context.Context) ([]domain.FeaturedProduct, error) {
	var featured []domain.FeaturedProduct
	if err := c.do(ctx, http.MethodGet, "/api/featured-products/", nil, nil, &featured); err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	return featured, nil
}
