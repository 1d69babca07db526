package api

import (
	"context"
	"net/http"

	"thiepcuoi.vn/web/internal/domain"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResponse, error) {
	if c.Offline() {
		return c.offline.login(creds)
	}
	var out domain.AuthResponse
	err := c.do(ctx, call{op: "auth.login", method: http.MethodPost, path: []string{"auth", "dang_nhap"}, body: creds}, &out)
	return out, err
}

// Register creates an account. The backend answers with the created user.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	if c.Offline() {
		return c.offline.register(reg)
	}
	var out domain.User
	err := c.do(ctx, call{op: "auth.register", method: http.MethodPost, path: []string{"auth", "dang_ky"}, body: reg}, &out)
	return out, err
}

// CurrentUser returns the profile for the token on ctx.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	if c.Offline() {
		return c.offline.currentUser(ctx)
	}
	var out domain.User
	err := c.do(ctx, call{op: "auth.me", method: http.MethodGet, path: []string{"auth", "thong_tin_ca_nhan"}}, &out)
	return out, err
}
