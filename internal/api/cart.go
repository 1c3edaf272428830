package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

type addCartItemDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateQuantityDTO struct {
	Quantity int `json:"quantity"`
}

// ListCart fetches the full cart for the authenticated user.
func (c *Client) ListCart(ctx context.Context) ([]domain.LineItem, error) {
	var items []domain.LineItem
	if err := c.do(ctx, http.MethodGet, "/api/cart/", nil, nil, &items); err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return items, nil
}

// AddCartItem adds quantity of a product to the cart. The server merges
// into an existing line item for the same product, so the response body is
// not a reliable picture of the cart; callers refetch instead.
func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) error {
	body := addCartItemDTO{ProductID: productID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPost, "/api/cart/", nil, body, nil); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// UpdateCartItem sets the quantity of an existing cart line item.
func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	path := fmt.Sprintf("/api/cart/%d/", itemID)
	if err := c.do(ctx, http.MethodPut, path, nil, updateQuantityDTO{Quantity: quantity}, nil); err != nil {
		return fmt.Errorf("update cart item %d: %w", itemID, err)
	}
	return nil
}

// RemoveCartItem deletes a cart line item.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) error {
	path := fmt.Sprintf("/api/cart/%d/", itemID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("remove cart item %d: %w", itemID, err)
	}
	return nil
}
