package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown       = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	markdownPolicy = bluemonday.UGCPolicy()
)

// Markdown converts a template description to sanitized HTML. Conversion errors fall back to escaped text.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(markdownPolicy.SanitizeBytes(buf.Bytes()))
}
