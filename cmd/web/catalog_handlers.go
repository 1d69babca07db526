package main

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"thiepcuoi.vn/web/internal/domain"
	"thiepcuoi.vn/web/internal/format"
	mw "thiepcuoi.vn/web/internal/middleware"
	"thiepcuoi.vn/web/internal/render"
	"thiepcuoi.vn/web/internal/seo"
)

var errNoPrice = errors.New("template has no price")

const (
	homeFeaturedLimit = 6
	summaryRunes      = 120
)

// TemplateCard is a catalog grid tile.
type TemplateCard struct {
	ID           domain.ID
	Name         string
	CategoryName string
	Summary      string
	ImageURL     string
	Price        domain.Money
	Href         string
}

// CatalogView backs the catalog page and its grid fragment.
type CatalogView struct {
	Lang       string
	Categories []domain.Category
	Templates  []TemplateCard
	CategoryID domain.ID
	Keyword    string
	Query      string
}

// TemplateView backs the template detail page.
type TemplateView struct {
	Template       domain.Template
	Description    template.HTML
	CardTemplates  []domain.CardTemplate
	CustomizeHref  string
	InvitationHref string
}

func templateCards(tpls []domain.Template) []TemplateCard {
	out := make([]TemplateCard, 0, len(tpls))
	for _, t := range tpls {
		out = append(out, TemplateCard{
			ID:           t.ID,
			Name:         t.Name,
			CategoryName: t.CategoryName,
			Summary:      format.Truncate(stripMarkdown(t.Description), summaryRunes),
			ImageURL:     t.ImageURL,
			Price:        t.Price,
			Href:         templateHref(t),
		})
	}
	return out
}

// stripMarkdown drops the emphasis and heading markers used in descriptions so tiles show plain text.
func stripMarkdown(s string) string {
	s = strings.NewReplacer("**", "", "__", "", "#", "", "`", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func (a *app) homeHandler(w http.ResponseWriter, r *http.Request) {
	page, err := a.api.LoadCatalog(r.Context(), "", "")
	if err != nil {
		a.handleAPIError(w, r, err, "catalog.load_failed")
		return
	}
	featured := page.Templates
	if len(featured) > homeFeaturedLimit {
		featured = featured[:homeFeaturedLimit]
	}
	vm := a.pageData(r, "home.title")
	brand := a.t(r, "brand.name")
	root := siteURL(r)
	vm.SEO.JSONLD = append(vm.SEO.JSONLD,
		seo.JSON(seo.Organization(brand, root+"/", "")),
		seo.JSON(seo.WebSite(brand, root+"/", root+"/templates?q=")),
	)
	vm.Home = CatalogView{
		Lang:       vm.Lang,
		Categories: page.Categories,
		Templates:  templateCards(featured),
	}
	a.renderPage(w, r, "home", vm)
}

// templatesHandler renders the catalog. htmx filter requests get only the grid and an updated URL.
func (a *app) templatesHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	q := r.URL.Query()
	categoryID := domain.ID(strings.TrimSpace(q.Get("category")))
	keyword := strings.TrimSpace(q.Get("q"))

	page, err := a.api.LoadCatalog(r.Context(), categoryID, keyword)
	if err != nil {
		a.handleAPIError(w, r, err, "catalog.load_failed")
		return
	}
	view := CatalogView{
		Lang:       lang,
		Categories: page.Categories,
		Templates:  templateCards(page.Templates),
		CategoryID: categoryID,
		Keyword:    keyword,
		Query:      catalogQuery(categoryID, keyword),
	}

	if mw.HXTarget(r.Context()) == "catalog-grid" {
		push := "/templates"
		if view.Query != "" {
			push += "?" + view.Query
		}
		w.Header().Set("HX-Push-Url", push)
		a.renderTemplate(w, r, "frag_catalog_grid", view)
		return
	}

	vm := a.pageData(r, "catalog.title")
	vm.Catalog = view
	a.renderPage(w, r, "templates", vm)
}

func catalogQuery(categoryID domain.ID, keyword string) string {
	v := url.Values{}
	if !categoryID.IsZero() {
		v.Set("category", categoryID.String())
	}
	if keyword != "" {
		v.Set("q", keyword)
	}
	return v.Encode()
}

func (a *app) templateDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	data, err := a.api.LoadEditor(r.Context(), id)
	if err != nil {
		a.handleAPIError(w, r, err, "catalog.load_failed")
		return
	}
	tpl := data.Template
	vm := a.pageData(r, "catalog.detail_title")
	vm.Title = tpl.Name
	vm.SEO.Title = tpl.Name + " | " + a.t(r, "brand.name")
	vm.SEO.Description = format.Truncate(stripMarkdown(tpl.Description), 160)
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Description = vm.SEO.Description
	vm.SEO.OG.Image = tpl.ImageURL
	vm.SEO.OG.Type = "product"
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.Product{
		Name:        tpl.Name,
		Description: vm.SEO.Description,
		URL:         siteURL(r) + templateHref(tpl),
		ImageURL:    tpl.ImageURL,
		SKU:         tpl.ID.String(),
		Category:    tpl.CategoryName,
		PriceVND:    int64(tpl.Price),
	}.Schema()))
	vm.Template = TemplateView{
		Template:       tpl,
		Description:    render.Markdown(tpl.Description),
		CardTemplates:  data.CardTemplates,
		CustomizeHref:  "/templates/" + tpl.ID.String() + "/customize",
		InvitationHref: "/templates/" + tpl.ID.String() + "/invitation",
	}
	a.renderPage(w, r, "template", vm)
}

// templatePrice resolves the unit price of a template for cart entries. A template
// without a price cannot be sold.
func (a *app) templatePrice(r *http.Request, known domain.Money, templateID domain.ID) (domain.Money, error) {
	if known > 0 {
		return known, nil
	}
	tpl, err := a.api.Template(r.Context(), templateID)
	if err != nil {
		return 0, err
	}
	if tpl.Price <= 0 {
		return 0, fmt.Errorf("template %s: %w", templateID, errNoPrice)
	}
	return tpl.Price, nil
}
