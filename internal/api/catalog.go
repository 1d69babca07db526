package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"thiepcuoi.vn/web/internal/domain"
)

// Categories lists template categories.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	if c.Offline() {
		return c.offline.categories(), nil
	}
	var out []domain.Category
	err := c.do(ctx, call{op: "categories.list", method: http.MethodGet, path: []string{"categories"}}, &out)
	return out, err
}

// Templates lists active templates.
func (c *Client) Templates(ctx context.Context) ([]domain.Template, error) {
	if c.Offline() {
		return c.offline.templates("", ""), nil
	}
	var out []domain.Template
	err := c.do(ctx, call{op: "templates.list", method: http.MethodGet, path: []string{"templates"}}, &out)
	return out, err
}

// Template fetches one template.
func (c *Client) Template(ctx context.Context, id domain.ID) (domain.Template, error) {
	if c.Offline() {
		return c.offline.template(id)
	}
	var out domain.Template
	err := c.do(ctx, call{op: "templates.get", method: http.MethodGet, path: []string{"templates", id.String()}}, &out)
	return out, err
}

// TemplatesByCategory lists templates in a category.
func (c *Client) TemplatesByCategory(ctx context.Context, categoryID domain.ID) ([]domain.Template, error) {
	if c.Offline() {
		return c.offline.templates(categoryID, ""), nil
	}
	var out []domain.Template
	err := c.do(ctx, call{op: "templates.by_category", method: http.MethodGet, path: []string{"templates", "danh_muc", categoryID.String()}}, &out)
	return out, err
}

// SearchTemplates runs a keyword search.
func (c *Client) SearchTemplates(ctx context.Context, keyword string) ([]domain.Template, error) {
	keyword = strings.TrimSpace(keyword)
	if c.Offline() {
		return c.offline.templates("", keyword), nil
	}
	var out []domain.Template
	err := c.do(ctx, call{
		op:     "templates.search",
		method: http.MethodGet,
		path:   []string{"templates", "tim_kiem"},
		query:  url.Values{"keyword": {keyword}},
	}, &out)
	return out, err
}

// CardTemplates lists the HTML card templates attached to a base template.
func (c *Client) CardTemplates(ctx context.Context, templateID domain.ID) ([]domain.CardTemplate, error) {
	if c.Offline() {
		return c.offline.cardTemplates(templateID), nil
	}
	var out []domain.CardTemplate
	err := c.do(ctx, call{op: "card_templates.by_template", method: http.MethodGet, path: []string{"card-templates", "template", templateID.String()}}, &out)
	return out, err
}

// CardTemplate fetches one card template.
func (c *Client) CardTemplate(ctx context.Context, id domain.ID) (domain.CardTemplate, error) {
	if c.Offline() {
		return c.offline.cardTemplate(id)
	}
	var out domain.CardTemplate
	err := c.do(ctx, call{op: "card_templates.get", method: http.MethodGet, path: []string{"card-templates", id.String()}}, &out)
	return out, err
}
