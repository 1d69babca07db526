package middleware

import (
	"context"
	"net/http"
	"strings"

	"thiepcuoi.vn/web/internal/i18n"
)

const localeCookie = "hl"

// Locale settles the session language. An explicit ?hl= wins and is remembered in the
// hl cookie; otherwise a session without a language takes it from that cookie or
// from Accept-Language.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept-Language")
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyLocaleFB, bundle.Fallback()))
			s := GetSession(r)
			if lang, remember := pickLocale(bundle, r, s.Locale); lang != s.Locale {
				s.Locale = lang
				s.MarkDirty()
				if remember {
					http.SetCookie(w, &http.Cookie{Name: localeCookie, Value: lang, Path: "/", SameSite: http.SameSiteLaxMode})
				}
			}
			if s.Locale != "" {
				w.Header().Set("Content-Language", s.Locale)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// pickLocale returns the language to use and whether it came from ?hl=.
func pickLocale(bundle *i18n.Bundle, r *http.Request, current string) (string, bool) {
	if q := strings.ToLower(r.URL.Query().Get("hl")); q != "" {
		if bundle.IsSupported(q) {
			return q, true
		}
		return current, false
	}
	if current != "" {
		return current, false
	}
	if c, err := r.Cookie(localeCookie); err == nil && bundle.IsSupported(c.Value) {
		return strings.ToLower(c.Value), false
	}
	return bundle.Resolve(r.Header.Get("Accept-Language")), false
}

// Lang returns the session language, then the bundle fallback, then "vi".
func Lang(r *http.Request) string {
	if s := GetSession(r); s != nil && s.Locale != "" {
		return s.Locale
	}
	if fb, ok := r.Context().Value(ctxKeyLocaleFB).(string); ok && fb != "" {
		return fb
	}
	return "vi"
}
