package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

type checkoutDTO struct {
	AddressID     int64                `json:"address_id"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

type checkoutResponseDTO struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

// Checkout submits the order for the current server-side cart, tagged with
// the caller's idempotency key. Callers own the key's lifetime: reusing it
// when retrying a submission after an ambiguous failure lets the backend
// return the order it already created instead of placing a second one.
func (c *Client) Checkout(ctx context.Context, addressID int64, method domain.PaymentMethod, idempotencyKey string) (int64, error) {
	headers := map[string]string{"X-Idempotency-Key": idempotencyKey}
	body := checkoutDTO{AddressID: addressID, PaymentMethod: method}

	var resp checkoutResponseDTO
	if err := c.do(ctx, http.MethodPost, "/api/checkout/", headers, body, &resp); err != nil {
		return 0, fmt.Errorf("checkout: %w", err)
	}
	return resp.OrderID, nil
}

// ListOrders returns the user's orders, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/", nil, nil, &orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// LatestOrder returns the most recently placed order.
func (c *Client) LatestOrder(ctx context.Context) (domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/latest/", nil, nil, &order); err != nil {
		return domain.Order{}, fmt.Errorf("latest order: %w", err)
	}
	return order, nil
}

// GetOrder returns one order by id.
func (c *Client) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	path := fmt.Sprintf("/api/orders/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &order); err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}
