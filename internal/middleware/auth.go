package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"thiepcuoi.vn/web/internal/api"
	"thiepcuoi.vn/web/internal/domain"
)

const (
	authCookieName = "THIEP_WEB_AUTH"
	authMaxAge     = 7 * 24 * time.Hour
)

type authCookie struct {
	Token   string    `json:"t"`
	User    User      `json:"u"`
	Expires time.Time `json:"e"`
}

// tokenExpiry returns the earlier of now+authMaxAge and the token's exp claim.
// The signature is not checked here; the backend verifies it on every call.
func tokenExpiry(token string, now time.Time) time.Time {
	limit := now.Add(authMaxAge)
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return limit
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(limit) {
		return claims.ExpiresAt.Time
	}
	return limit
}

// SignIn stores the bearer token in the encrypted auth cookie and rotates the session id.
func (c *Cookies) SignIn(w http.ResponseWriter, r *http.Request, resp domain.AuthResponse) error {
	now := time.Now()
	data := authCookie{
		Token: resp.Token,
		User: User{
			ID:       resp.User.ID.String(),
			Username: resp.User.Username,
			FullName: resp.User.FullName,
		},
		Expires: tokenExpiry(resp.Token, now),
	}
	val, err := c.auth.Encode(authCookieName, data)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  data.Expires,
		MaxAge:   int(data.Expires.Sub(now) / time.Second),
	})
	GetSession(r).RegenerateID()
	return nil
}

// SignOut drops the auth cookie.
func (c *Cookies) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	GetSession(r).RegenerateID()
}

// Auth hydrates the user and the API bearer token from the auth cookie.
// Expired or tampered cookies are cleared.
func (c *Cookies) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(authCookieName)
		if err != nil || ck.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		var data authCookie
		if err := c.auth.Decode(authCookieName, ck.Value, &data); err != nil || data.Token == "" || !time.Now().Before(data.Expires) {
			http.SetCookie(w, &http.Cookie{Name: authCookieName, Value: "", Path: "/", MaxAge: -1})
			next.ServeHTTP(w, r)
			return
		}
		user := data.User
		ctx := WithUser(r.Context(), &user)
		ctx = api.WithToken(ctx, data.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginURL builds the sign-in URL that returns to next afterwards.
func LoginURL(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// Redirect sends the browser to target, using HX-Redirect for htmx requests.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RequireAuth sends anonymous visitors to the sign-in page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			back := HX(r.Context()).CurrentPath()
			if back == "" {
				back = r.URL.RequestURI()
			}
			Redirect(w, r, LoginURL(back))
			return
		}
		next.ServeHTTP(w, r)
	})
}
