package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

// ListAddresses fetches all saved addresses for the authenticated user.
func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	var addrs []domain.Address
	if err := c.do(ctx, http.MethodGet, "/api/addresses/", nil, nil, &addrs); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addrs, nil
}

// CreateAddress persists a draft address; the returned copy carries the
// server-assigned id.
func (c *Client) CreateAddress(ctx context.Context, addr domain.Address) (domain.Address, error) {
	var saved domain.Address
	if err := c.do(ctx, http.MethodPost, "/api/addresses/", nil, addr, &saved); err != nil {
		return domain.Address{}, fmt.Errorf("create address: %w", err)
	}
	return saved, nil
}

// UpdateAddress overwrites an existing address by id.
func (c *Client) UpdateAddress(ctx context.Context, addr domain.Address) (domain.Address, error) {
	var saved domain.Address
	path := fmt.Sprintf("/api/addresses/%d/", addr.ID)
	if err := c.do(ctx, http.MethodPut, path, nil, addr, &saved); err != nil {
		return domain.Address{}, fmt.Errorf("update address %d: %w", addr.ID, err)
	}
	return saved, nil
}

// DeleteAddress removes an address by id.
func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/addresses/%d/", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete address %d: %w", id, err)
	}
	return nil
}
