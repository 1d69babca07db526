package api

import (
	"context"
	"net/http"

	"thiepcuoi.vn/web/internal/domain"
)

// Render merges custom data into a card template. With SaveCard=false nothing is persisted.
func (c *Client) Render(ctx context.Context, req domain.RenderRequest) (domain.CustomizedCard, error) {
	if c.Offline() {
		return c.offline.render(ctx, req)
	}
	var out domain.CustomizedCard
	err := c.do(ctx, call{op: "customized_cards.render", method: http.MethodPost, path: []string{"customized-cards", "render"}, body: req}, &out)
	if err == nil && !req.SaveCard {
		out.ID = ""
	}
	return out, err
}

// SavedCards lists only cards marked saved.
func (c *Client) SavedCards(ctx context.Context) ([]domain.CustomizedCard, error) {
	if c.Offline() {
		return c.offline.savedCards(ctx)
	}
	var out []domain.CustomizedCard
	err := c.do(ctx, call{op: "customized_cards.saved", method: http.MethodGet, path: []string{"customized-cards", "saved"}}, &out)
	return out, err
}

// CustomizedCard fetches one of the user's cards.
func (c *Client) CustomizedCard(ctx context.Context, id domain.ID) (domain.CustomizedCard, error) {
	if c.Offline() {
		return c.offline.card(ctx, id)
	}
	var out domain.CustomizedCard
	err := c.do(ctx, call{op: "customized_cards.get", method: http.MethodGet, path: []string{"customized-cards", id.String()}}, &out)
	return out, err
}

// DeleteCustomizedCard removes one of the user's cards.
func (c *Client) DeleteCustomizedCard(ctx context.Context, id domain.ID) error {
	if c.Offline() {
		return c.offline.deleteCard(ctx, id)
	}
	return c.do(ctx, call{op: "customized_cards.delete", method: http.MethodDelete, path: []string{"customized-cards", id.String()}}, nil)
}
