package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/domain"
	"thiepcuoi.vn/web/internal/format"
	handlersPkg "thiepcuoi.vn/web/internal/handlers"
	"thiepcuoi.vn/web/internal/i18n"
	mw "thiepcuoi.vn/web/internal/middleware"
	"thiepcuoi.vn/web/internal/nav"
	"thiepcuoi.vn/web/internal/observability"
	"thiepcuoi.vn/web/internal/seo"
)

// views parses templates once, or on every request in dev mode.
type views struct {
	dir    string
	dev    bool
	bundle *i18n.Bundle

	mu    sync.Mutex
	cache *template.Template
}

func newViews(dir string, dev bool, bundle *i18n.Bundle) (*views, error) {
	v := &views{dir: dir, dev: dev, bundle: bundle}
	if dev {
		return v, nil
	}
	t, err := v.parse()
	if err != nil {
		return nil, err
	}
	v.cache = t
	return v, nil
}

func (v *views) funcs() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			return v.bundle.T(lang, key)
		},
		"tf": func(lang, key string, args ...any) string {
			return v.bundle.Tf(lang, key, args...)
		},
		"vnd": func(lang string, amount domain.Money) string {
			return format.FmtVND(int64(amount), lang)
		},
		"date":     format.DateString,
		"clock":    format.TimeString,
		"datetime": format.DateTimeString,
		"names":    format.WeddingNames,
		"truncate": format.Truncate,
		"status":   format.StatusOf,
		"add": func(a, b int) int {
			return a + b
		},
		"fieldError": func(lang string, errs fieldErrors, field string) string {
			key := errs.Get(field)
			if key == "" {
				return ""
			}
			return v.bundle.T(lang, key)
		},
	}
}

func (v *views) parse() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(v.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", v.dir)
	}
	return template.New("_root").Funcs(v.funcs()).ParseFiles(files...)
}

func (v *views) templates() (*template.Template, error) {
	if v.dev {
		return v.parse()
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	return v.cache, nil
}

// execute renders name into a buffer so template failures never leave half a page on the wire.
func (v *views) execute(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, err := v.templates()
	if err != nil {
		observability.FromContext(r.Context()).Error("template parse failed", zap.Error(err))
		http.Error(w, "template parse error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		observability.FromContext(r.Context()).Error("template exec failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// fieldErrors is the per-field error lookup used by form templates.
type fieldErrors interface {
	Get(field string) string
}

// renderPage executes the page template "page_<name>" with the shared layout data.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, name string, vm handlersPkg.PageData) {
	a.renderPageStatus(w, r, http.StatusOK, name, vm)
}

func (a *app) renderPageStatus(w http.ResponseWriter, r *http.Request, status int, name string, vm handlersPkg.PageData) {
	a.views.execute(w, r, status, "page_"+name, vm)
}

// renderTemplate executes a fragment template for htmx swaps.
func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	a.views.execute(w, r, http.StatusOK, name, data)
}

// pageData fills the layout fields every page shares.
func (a *app) pageData(r *http.Request, titleKey string) handlersPkg.PageData {
	lang := mw.Lang(r)
	user := mw.UserFromContext(r.Context())
	store := a.cart(r)
	brand := a.t(r, "brand.name")
	title := a.t(r, titleKey)

	vm := handlersPkg.PageData{
		Title:       title,
		Lang:        lang,
		Analytics:   handlersPkg.Analytics{GA4MeasurementID: a.cfg.Analytics.MeasurementID, Debug: a.cfg.Analytics.Debug},
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path, user != nil),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		CSRFToken:   mw.CSRFToken(r),
		CartCount:   store.TotalItems(),
		Degraded:    store.Degraded(),
	}
	if user != nil {
		vm.Viewer = &handlersPkg.Viewer{Username: user.Username, FullName: user.FullName}
	}
	if s := mw.GetSession(r); s != nil {
		for _, f := range s.PopFlash() {
			vm.Notices = append(vm.Notices, handlersPkg.Notice{Tone: f.Tone, Text: f.Text})
		}
	}

	vm.SEO.Title = title + " | " + brand
	vm.SEO.Description = a.t(r, "brand.tagline")
	vm.SEO.Canonical = absoluteURL(r)
	vm.SEO.OG.URL = vm.SEO.Canonical
	vm.SEO.OG.SiteName = brand
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Description = vm.SEO.Description
	vm.SEO.OG.Type = "website"
	vm.SEO.Alternates = a.alternates(r)
	if len(vm.Breadcrumbs) > 1 {
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(a.breadcrumbSchema(r, vm.Breadcrumbs)))
	}
	return vm
}

func (a *app) breadcrumbSchema(r *http.Request, crumbs []nav.Crumb) map[string]any {
	root := siteURL(r)
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		name := c.Label
		if c.LabelKey != "" {
			name = a.t(r, c.LabelKey)
		}
		item := seo.BreadcrumbItem{Name: name}
		if !c.Active {
			item.Item = root + c.Href
		}
		items = append(items, item)
	}
	return seo.BreadcrumbList(items)
}

func (a *app) t(r *http.Request, key string) string {
	return a.bundle.T(mw.Lang(r), key)
}

func (a *app) tf(r *http.Request, key string, args ...any) string {
	return a.bundle.Tf(mw.Lang(r), key, args...)
}

// siteURL is the scheme and host the visitor reached us on.
func siteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func absoluteURL(r *http.Request) string {
	return siteURL(r) + r.URL.Path
}

func (a *app) alternates(r *http.Request) []handlersPkg.Alternate {
	base := absoluteURL(r)
	out := make([]handlersPkg.Alternate, 0, len(a.bundle.Supported())+1)
	for _, l := range a.bundle.Supported() {
		out = append(out, handlersPkg.Alternate{Href: base + "?hl=" + l, Hreflang: l})
	}
	return append(out, handlersPkg.Alternate{Href: base, Hreflang: "x-default"})
}

// notify shows a toast. htmx requests get an HX-Trigger event; full page flows get a session flash.
func (a *app) notify(w http.ResponseWriter, r *http.Request, tone, text string) {
	if mw.IsHTMX(r.Context()) {
		addTrigger(w, "toast", map[string]string{"tone": tone, "message": text})
		return
	}
	flash(r, tone, text)
}

// flash queues a notice for the next full page render, e.g. after a redirect.
func flash(r *http.Request, tone, text string) {
	if s := mw.GetSession(r); s != nil {
		s.AddFlash(tone, text)
	}
}

// addTrigger merges an event into the HX-Trigger header.
func addTrigger(w http.ResponseWriter, event string, detail any) {
	events := map[string]any{}
	if raw := w.Header().Get("HX-Trigger"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &events)
	}
	events[event] = detail
	if raw, err := json.Marshal(events); err == nil {
		w.Header().Set("HX-Trigger", string(raw))
	}
}

// noSwap acknowledges an htmx request without touching the page.
func noSwap(w http.ResponseWriter) {
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(http.StatusNoContent)
}

// domainID reads an id path segment. Catalog links append a slug after the id ("3-vuon-hong").
func domainID(raw string) domain.ID {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '-'); i > 0 {
		raw = raw[:i]
	}
	return domain.ID(raw)
}

func pathID(r *http.Request) domain.ID {
	return domainID(chi.URLParam(r, "id"))
}

// templateHref is the canonical detail URL of a template.
func templateHref(t domain.Template) string {
	if slug := format.Slug(t.Name); slug != "" {
		return "/templates/" + t.ID.String() + "-" + slug
	}
	return "/templates/" + t.ID.String()
}

// safeNext returns a local redirect target or fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
