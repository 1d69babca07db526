package api

import (
	"context"
	"net/http"

	"thiepcuoi.vn/web/internal/domain"
)

// CreateInvitation persists a basic invitation.
func (c *Client) CreateInvitation(ctx context.Context, inv domain.CustomInvitation) (domain.CustomInvitation, error) {
	if c.Offline() {
		return c.offline.saveInvitation(ctx, inv)
	}
	var out domain.CustomInvitation
	err := c.do(ctx, call{op: "custom_invitations.create", method: http.MethodPost, path: []string{"custom-invitations"}, body: inv}, &out)
	return out, err
}

// UpdateInvitation replaces the content of an existing invitation.
func (c *Client) UpdateInvitation(ctx context.Context, id domain.ID, inv domain.CustomInvitation) (domain.CustomInvitation, error) {
	if c.Offline() {
		inv.ID = id
		return c.offline.saveInvitation(ctx, inv)
	}
	var out domain.CustomInvitation
	err := c.do(ctx, call{op: "custom_invitations.update", method: http.MethodPut, path: []string{"custom-invitations", id.String()}, body: inv}, &out)
	return out, err
}

// Invitation fetches one of the user's invitations.
func (c *Client) Invitation(ctx context.Context, id domain.ID) (domain.CustomInvitation, error) {
	if c.Offline() {
		return c.offline.invitation(ctx, id)
	}
	var out domain.CustomInvitation
	err := c.do(ctx, call{op: "custom_invitations.get", method: http.MethodGet, path: []string{"custom-invitations", id.String()}}, &out)
	return out, err
}

// Invitations lists the user's invitations.
func (c *Client) Invitations(ctx context.Context) ([]domain.CustomInvitation, error) {
	if c.Offline() {
		return c.offline.listInvitations(ctx)
	}
	var out []domain.CustomInvitation
	err := c.do(ctx, call{op: "custom_invitations.list", method: http.MethodGet, path: []string{"custom-invitations"}}, &out)
	return out, err
}

// DeleteInvitation removes one of the user's invitations.
func (c *Client) DeleteInvitation(ctx context.Context, id domain.ID) error {
	if c.Offline() {
		return c.offline.deleteInvitation(ctx, id)
	}
	return c.do(ctx, call{op: "custom_invitations.delete", method: http.MethodDelete, path: []string{"custom-invitations", id.String()}}, nil)
}
