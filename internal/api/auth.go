package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

type loginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the signup payload. Address and Phone are optional.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Login authenticates and, on success, installs the access token on the
// client so subsequent calls are authenticated.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Session, error) {
	var session domain.Session
	body := loginDTO{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/users/login/", nil, body, &session); err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}
	c.SetToken(session.Access)
	return session, nil
}

// Register creates a new account. It does not log in; callers follow up
// with Login.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	if err := c.do(ctx, http.MethodPost, "/api/users/register/", nil, reg, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	var profile domain.Profile
	if err := c.do(ctx, http.MethodGet, "/api/users/profile/", nil, nil, &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile saves profile changes and returns the server's view.
func (c *Client) UpdateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	var saved domain.Profile
	if err := c.do(ctx, http.MethodPut, "/api/users/profile/", nil, p, &saved); err != nil {
		return domain.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return saved, nil
}
