package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// HXRequest holds the htmx request headers a handler may branch on.
type HXRequest struct {
	Target     string
	Trigger    string
	CurrentURL string
	Boosted    bool
}

// CurrentPath returns the path and query of the page that issued the request.
func (h *HXRequest) CurrentPath() string {
	if h == nil || h.CurrentURL == "" {
		return ""
	}
	u, err := url.Parse(h.CurrentURL)
	if err != nil {
		return ""
	}
	return u.RequestURI()
}

// HTMX stores the htmx request details on the context. Responses vary on HX-Request
// because the same URL can answer with a fragment or a full page.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "HX-Request")
		if r.Header.Get("HX-Request") != "true" {
			next.ServeHTTP(w, r)
			return
		}
		hx := &HXRequest{
			Target:     r.Header.Get("HX-Target"),
			Trigger:    r.Header.Get("HX-Trigger"),
			CurrentURL: r.Header.Get("HX-Current-URL"),
			Boosted:    r.Header.Get("HX-Boosted") == "true",
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyHTMX, hx)))
	})
}

// HX returns the htmx details of the request, or nil for a plain browser request.
func HX(ctx context.Context) *HXRequest {
	hx, _ := ctx.Value(ctxKeyHTMX).(*HXRequest)
	return hx
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(ctx context.Context) bool {
	return HX(ctx) != nil
}

// HXTarget returns the id of the element htmx will swap into.
func HXTarget(ctx context.Context) string {
	if hx := HX(ctx); hx != nil {
		return hx.Target
	}
	return ""
}

// writeError rejects a request. htmx callers get a danger toast and keep the page as is.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if IsHTMX(r.Context()) {
		trigger, _ := json.Marshal(map[string]any{
			"toast": map[string]string{"tone": "danger", "message": msg},
		})
		w.Header().Set("HX-Trigger", string(trigger))
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(code)
		return
	}
	http.Error(w, msg, code)
}
