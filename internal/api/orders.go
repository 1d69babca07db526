package api

import (
	"context"
	"net/http"

	"thiepcuoi.vn/web/internal/domain"
)

// CreateOrder submits a checkout.
func (c *Client) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if c.Offline() {
		return c.offline.createOrder(ctx, order)
	}
	var out domain.Order
	err := c.do(ctx, call{op: "orders.create", method: http.MethodPost, path: []string{"orders"}, body: order}, &out)
	return out, err
}

// Orders lists the user's orders.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	if c.Offline() {
		return c.offline.listOrders(ctx)
	}
	var out []domain.Order
	err := c.do(ctx, call{op: "orders.list", method: http.MethodGet, path: []string{"orders"}}, &out)
	return out, err
}

// Order fetches one order.
func (c *Client) Order(ctx context.Context, id domain.ID) (domain.Order, error) {
	if c.Offline() {
		return c.offline.order(ctx, id)
	}
	var out domain.Order
	err := c.do(ctx, call{op: "orders.get", method: http.MethodGet, path: []string{"orders", id.String()}}, &out)
	return out, err
}
