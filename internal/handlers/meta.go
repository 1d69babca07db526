package handlers

import "html/template"

// SEOData is the <head> metadata of a page.
type SEOData struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Alternates  []Alternate
	// JSONLD holds marshalled schema.org blocks, one <script> each.
	JSONLD []template.JS
}

// OpenGraph feeds the og:* tags used by chat apps when a template link is shared.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

// Alternate is a hreflang link to the same page in another language.
type Alternate struct {
	Href     string
	Hreflang string
}
