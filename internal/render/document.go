package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var previewPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "style").Globally()
	p.AllowElements("section", "header", "footer", "article", "span", "div", "small")
	return p
}()

// Sanitize strips scripts, event handlers and unsafe URLs from a rendered fragment.
func Sanitize(fragment string) string {
	return previewPolicy.Sanitize(fragment)
}

const documentShell = `<!DOCTYPE html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><style></style></head><body></body></html>`

// Document wraps a rendered fragment and its CSS into a standalone HTML page.
func Document(fragment, css string) (string, error) {
	doc, err := html.Parse(strings.NewReader(documentShell))
	if err != nil {
		return "", fmt.Errorf("render: parse shell: %w", err)
	}
	style := findElement(doc, atom.Style)
	body := findElement(doc, atom.Body)
	if style == nil || body == nil {
		return "", fmt.Errorf("render: document shell incomplete")
	}
	// style is a raw text element; keep the css from closing it early
	style.AppendChild(&html.Node{Type: html.TextNode, Data: strings.ReplaceAll(css, "</", `<\/`)})

	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", fmt.Errorf("render: parse fragment: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("render: write document: %w", err)
	}
	return buf.String(), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
