package handlers

import (
	"thiepcuoi.vn/web/internal/nav"
)

// Viewer is the signed-in user as shown in the layout.
type Viewer struct {
	Username string
	FullName string
}

// DisplayName prefers the full name.
func (v *Viewer) DisplayName() string {
	if v == nil {
		return ""
	}
	if v.FullName != "" {
		return v.FullName
	}
	return v.Username
}

// Notice is a one-shot message rendered at the top of the page.
type Notice struct {
	Tone string
	Text string
}

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       SEOData
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Viewer      *Viewer
	CSRFToken   string
	CartCount   int
	Degraded    bool
	Notices     []Notice

	// Optional per-page view model payloads
	Home       any
	Catalog    any
	Template   any
	Editor     any
	Invitation any
	Cart       any
	Checkout   any
	Orders     any
	Order      any
	Cards      any
	Invites    any
	Auth       any
	Profile    any
	Error      any
}
