package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"thiepcuoi.vn/web/internal/domain"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// requiredFields must be non-blank whenever a template declares them.
var requiredFields = map[string]struct{}{
	domain.FieldGroomName:   {},
	domain.FieldBrideName:   {},
	domain.FieldWeddingDate: {},
}

// ErrInvalidData is returned when custom data does not satisfy a card template's variables.
var ErrInvalidData = errors.New("render: invalid or missing required fields")

// ValidationError lists the variables that failed validation.
type ValidationError struct {
	Missing   []string
	Malformed bool
}

func (e *ValidationError) Error() string {
	if e.Malformed {
		return "render: template variables are not valid JSON"
	}
	return fmt.Sprintf("render: missing fields: %s", strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidData }

// Engine merges custom data into card template HTML and CSS.
type Engine struct{}

// NewEngine returns a ready Engine.
func NewEngine() *Engine { return &Engine{} }

// Render substitutes {{ name }} placeholders. HTML values are escaped, CSS values are reduced to
// characters that cannot close a declaration or block. Unknown names render as "".
func (e *Engine) Render(tpl domain.CardTemplate, data map[string]string) (string, string) {
	return RenderHTML(tpl.HTMLContent, data), RenderCSS(tpl.CSSContent, data)
}

// RenderHTML fills placeholders in an HTML template.
func RenderHTML(src string, data map[string]string) string {
	return substitute(src, data, EscapeHTML)
}

// RenderCSS fills placeholders in a stylesheet.
func RenderCSS(src string, data map[string]string) string {
	return substitute(src, data, cssValue)
}

func substitute(src string, data map[string]string, escape func(string) string) string {
	if src == "" {
		return src
	}
	return placeholderPattern.ReplaceAllStringFunc(src, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-2])
		return escape(data[name])
	})
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeHTML escapes text for HTML element content and quoted attributes.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func cssValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '{', '}', ';', '<', '>', '\\':
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Validate checks data against a card template's declared variables (a JSON object keyed by name).
// Every declared name must be present; groom_name, bride_name and wedding_date must also be non-blank.
// An empty declaration accepts any data.
func (e *Engine) Validate(templateVariables string, data map[string]string) error {
	if strings.TrimSpace(templateVariables) == "" {
		return nil
	}
	var declared map[string]any
	if err := json.Unmarshal([]byte(templateVariables), &declared); err != nil {
		return &ValidationError{Malformed: true}
	}
	var missing []string
	for name := range declared {
		v, ok := data[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if _, req := requiredFields[name]; req && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Placeholders lists the distinct placeholder names used in src, in first-use order.
func Placeholders(src string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(src, -1) {
		name := strings.TrimSpace(m[1])
		if _, ok := seen[name]; ok || name == "" {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
