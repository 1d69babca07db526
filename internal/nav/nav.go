package nav

import (
	"path"
	"strings"
	"unicode"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/templates"
	LabelKey string // i18n key, e.g. "nav.templates"
	Auth     bool   // shown only to signed-in users
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/templates", LabelKey: "nav.templates"},
	{Path: "/my-customized-cards", LabelKey: "nav.my_cards", Auth: true},
	{Path: "/my-invitations", LabelKey: "nav.my_invitations", Auth: true},
	{Path: "/orders", LabelKey: "nav.orders", Auth: true},
	{Path: "/cart", LabelKey: "nav.cart"},
}

// Build renders navigation items with active state given the current path.
// Auth-only items are skipped for anonymous visitors.
func Build(currentPath string, signedIn bool) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		if it.Auth && !signedIn {
			continue
		}
		active := isActive(it.Path, currentPath)
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   active,
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds the trail for currentPath: Home, the section, then one crumb per
// deeper segment. Id segments ("12" or "12-some-slug") show as "#12"; action segments
// such as "customize" use their label key.
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	clean := path.Clean(currentPath)
	if clean == "/" || clean == "." {
		return crumbs
	}
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")

	sec := sectionFor("/" + parts[0])
	crumbs = append(crumbs, Crumb{Href: sec.href, LabelKey: sec.key, Label: titleFromSegment(parts[0]), Active: len(parts) == 1})

	href := "/" + parts[0]
	for i, seg := range parts[1:] {
		href += "/" + seg
		c := Crumb{Href: href, Active: i == len(parts)-2}
		switch {
		case segmentKeys[seg] != "":
			c.LabelKey = segmentKeys[seg]
		case isIDSegment(seg):
			c.Label = "#" + strings.SplitN(seg, "-", 2)[0]
		default:
			c.Label = titleFromSegment(seg)
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

type section struct {
	href string
	key  string
}

// sectionFor labels a top-level segment. Sections outside the main navigation may
// point at a different listing page.
func sectionFor(top string) section {
	for _, it := range Main {
		if it.Path == top {
			return section{href: top, key: it.LabelKey}
		}
	}
	if sec, ok := extraSections[top]; ok {
		return sec
	}
	return section{href: top}
}

var extraSections = map[string]section{
	"/checkout":    {href: "/checkout", key: "nav.checkout"},
	"/login":       {href: "/login", key: "nav.login"},
	"/register":    {href: "/register", key: "nav.register"},
	"/profile":     {href: "/profile", key: "nav.profile"},
	"/invitations": {href: "/my-invitations", key: "nav.my_invitations"},
}

var segmentKeys = map[string]string{
	"customize":  "crumb.customize",
	"invitation": "crumb.invitation",
	"edit":       "crumb.edit",
	"download":   "crumb.download",
}

func isIDSegment(seg string) bool {
	head := strings.SplitN(seg, "-", 2)[0]
	if head == "" {
		return false
	}
	for _, r := range head {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func titleFromSegment(seg string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
