package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"
)

const (
	csrfCookieName = "csrf_token"
	// CSRFFormField is the hidden input name used by plain forms.
	CSRFFormField = "csrf_token"
	// CSRFHeader is sent by htmx, see hx-headers on <body>.
	CSRFHeader = "X-CSRF-Token"
)

// CSRF keeps a readable csrf_token cookie in sync with the session token and
// rejects unsafe requests unless both the cookie and the submitted token match it.
func (c *Cookies) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		if s.CSRFToken == "" {
			s.CSRFToken = newCSRFToken()
			s.MarkDirty()
		}
		cookieOK := false
		if ck, err := r.Cookie(csrfCookieName); err == nil {
			cookieOK = tokensEqual(ck.Value, s.CSRFToken)
		}
		if !cookieOK {
			c.setCSRFCookie(w, s.CSRFToken)
		}
		if !isSafeMethod(r.Method) && !(cookieOK && tokensEqual(submittedCSRF(r), s.CSRFToken)) {
			writeError(w, r, http.StatusForbidden, "invalid CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *Cookies) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
}

func submittedCSRF(r *http.Request) string {
	if v := r.Header.Get(CSRFHeader); v != "" {
		return v
	}
	return r.PostFormValue(CSRFFormField)
}

func tokensEqual(a, b string) bool {
	return a != "" && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// CSRFToken returns the token to embed in pages.
func CSRFToken(r *http.Request) string { return GetSession(r).CSRFToken }

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func isSafeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions || m == http.MethodTrace
}
