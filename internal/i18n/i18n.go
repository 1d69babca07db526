package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Bundle holds flat key/value dictionaries per language.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
	matcher   language.Matcher
	tags      []string
}

// Load reads <dir>/<lang>.json for each supported language. Only the fallback file is mandatory.
func Load(dir string, fallback string, supported []string) (*Bundle, error) {
	if fallback == "" {
		fallback = "vi"
	}
	if len(supported) == 0 {
		supported = []string{"vi", "en"}
	}
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	// The fallback goes first so the matcher prefers it on ties.
	ordered := append([]string{fallback}, supported...)
	var tags []language.Tag
	for _, l := range ordered {
		if _, seen := b.supported[l]; seen {
			continue
		}
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n: invalid language %q: %w", l, err)
		}
		b.supported[l] = struct{}{}
		b.tags = append(b.tags, l)
		tags = append(tags, tag)

		raw, err := os.ReadFile(filepath.Join(dir, l+".json"))
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("i18n: load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Supported lists configured languages in sorted order.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang has a dictionary slot.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[strings.ToLower(lang)]
	return ok
}

// T returns translation for key in lang, falling back to the default language and finally the key.
func (b *Bundle) T(lang, key string) string {
	if v, ok := b.lookup(lang, key); ok {
		return v
	}
	return key
}

// Has reports whether key is translated in lang or the fallback.
func (b *Bundle) Has(lang, key string) bool {
	_, ok := b.lookup(lang, key)
	return ok
}

// Tf formats the translation of key with args.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(b.T(lang, key), args...)
}

func (b *Bundle) lookup(lang, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	if m, ok := b.dict[lang]; ok {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	return "", false
}

// Resolve chooses the best supported language for an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.fallback
	}
	return b.tags[idx]
}
