// Package seo builds schema.org JSON-LD payloads for page heads.
package seo

import (
	"encoding/json"
	"html/template"
	"strconv"
)

const schemaContext = "https://schema.org"

// JSON marshals v for a <script type="application/ld+json"> block. It returns an empty string on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// WebSite returns a WebSite schema. searchURL is the catalog search prefix, e.g. "https://host/templates?q=".
func WebSite(name, url, searchURL string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList. The last item may omit its URL.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		entry := map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
		}
		if it.Item != "" {
			entry["item"] = it.Item
		}
		el = append(el, entry)
	}
	return map[string]any{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Product describes an invitation design priced in whole dong.
type Product struct {
	Name        string
	Description string
	URL         string
	ImageURL    string
	SKU         string
	Category    string
	PriceVND    int64
}

// Schema returns the Product payload with a single VND offer.
func (p Product) Schema() map[string]any {
	m := map[string]any{
		"@context":    schemaContext,
		"@type":       "Product",
		"name":        p.Name,
		"description": p.Description,
	}
	if p.URL != "" {
		m["url"] = p.URL
	}
	if p.ImageURL != "" {
		m["image"] = p.ImageURL
	}
	if p.SKU != "" {
		m["sku"] = p.SKU
	}
	if p.Category != "" {
		m["category"] = p.Category
	}
	if p.PriceVND > 0 {
		offer := map[string]any{
			"@type":         "Offer",
			"price":         strconv.FormatInt(p.PriceVND, 10),
			"priceCurrency": "VND",
			"availability":  "https://schema.org/InStock",
		}
		if p.URL != "" {
			offer["url"] = p.URL
		}
		m["offers"] = offer
	}
	return m
}
