package api

import (
	"context"

	"golang.org/x/sync/errgroup"

	"thiepcuoi.vn/web/internal/domain"
)

// CatalogPage is the data behind the template listing.
type CatalogPage struct {
	Categories []domain.Category
	Templates  []domain.Template
}

// LoadCatalog fetches categories and the filtered template list in parallel.
// An empty categoryID and keyword list every template.
func (c *Client) LoadCatalog(ctx context.Context, categoryID domain.ID, keyword string) (CatalogPage, error) {
	var page CatalogPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := c.Categories(gctx)
		page.Categories = cats
		return err
	})
	g.Go(func() error {
		var (
			tpls []domain.Template
			err  error
		)
		switch {
		case keyword != "":
			tpls, err = c.SearchTemplates(gctx, keyword)
			if err == nil && !categoryID.IsZero() {
				tpls = filterByCategory(tpls, categoryID)
			}
		case !categoryID.IsZero():
			tpls, err = c.TemplatesByCategory(gctx, categoryID)
		default:
			tpls, err = c.Templates(gctx)
		}
		page.Templates = tpls
		return err
	})
	if err := g.Wait(); err != nil {
		return CatalogPage{}, err
	}
	return page, nil
}

func filterByCategory(tpls []domain.Template, categoryID domain.ID) []domain.Template {
	out := tpls[:0]
	for _, t := range tpls {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// EditorData is what the card editor needs before the first preview.
type EditorData struct {
	Template      domain.Template
	CardTemplates []domain.CardTemplate
}

// LoadEditor fetches the base template and its card templates in parallel.
func (c *Client) LoadEditor(ctx context.Context, templateID domain.ID) (EditorData, error) {
	var data EditorData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tpl, err := c.Template(gctx, templateID)
		data.Template = tpl
		return err
	})
	g.Go(func() error {
		cts, err := c.CardTemplates(gctx, templateID)
		data.CardTemplates = cts
		return err
	})
	if err := g.Wait(); err != nil {
		return EditorData{}, err
	}
	return data, nil
}
