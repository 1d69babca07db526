package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"thiepcuoi.vn/web/internal/api"
	"thiepcuoi.vn/web/internal/domain"
	"thiepcuoi.vn/web/internal/i18n"
)

func newTestCookies(t *testing.T) *Cookies {
	t.Helper()
	c, err := NewCookies(Options{
		HashKey:  []byte("0123456789abcdef0123456789abcdef"),
		BlockKey: []byte("0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("NewCookies: %v", err)
	}
	return c
}

func newTestRouter(t *testing.T, c *Cookies) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	r.Use(HTMX, c.Session, c.Auth, c.CSRF)
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		if u := UserFromContext(r.Context()); u != nil {
			_, _ = w.Write([]byte(u.Username + ":" + api.TokenFromContext(r.Context())))
			return
		}
		_, _ = w.Write([]byte("anon:" + GetSession(r).CartID))
	})
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		if err := c.SignIn(w, r, domain.AuthResponse{Token: "tok", User: domain.User{ID: "1", Username: "demo"}}); err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(RequireAuth).Get("/orders", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("orders"))
	})
	return r
}

func cookiesFrom(rec *httptest.ResponseRecorder) []*http.Cookie {
	return (&http.Response{Header: rec.Header()}).Cookies()
}

func replay(req *http.Request, cookies []*http.Cookie) {
	for _, ck := range cookies {
		if ck.MaxAge < 0 {
			continue
		}
		req.AddCookie(ck)
	}
}

func csrfFrom(cookies []*http.Cookie) string {
	for _, ck := range cookies {
		if ck.Name == csrfCookieName {
			return ck.Value
		}
	}
	return ""
}

func TestSessionIsStableAcrossRequests(t *testing.T) {
	router := newTestRouter(t, newTestCookies(t))

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	cookies := cookiesFrom(first)
	if !strings.HasPrefix(first.Body.String(), "anon:") || len(first.Body.String()) <= len("anon:") {
		t.Fatalf("expected a cart id, got %q", first.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	replay(req, cookies)
	second := httptest.NewRecorder()
	router.ServeHTTP(second, req)
	if second.Body.String() != first.Body.String() {
		t.Fatalf("cart id changed: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestTamperedSessionIsReplaced(t *testing.T) {
	router := newTestRouter(t, newTestCookies(t))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	found := false
	for _, ck := range cookiesFrom(rec) {
		if ck.Name == sessionCookieName && ck.Value != "forged" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a fresh session cookie")
	}
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	router := newTestRouter(t, newTestCookies(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCSRFRejectionToastsForHTMX(t *testing.T) {
	router := newTestRouter(t, newTestCookies(t))
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Fatalf("expected no swap, got %q", rec.Header().Get("HX-Reswap"))
	}
	if trig := rec.Header().Get("HX-Trigger"); !strings.Contains(trig, `"tone":"danger"`) {
		t.Fatalf("expected danger toast trigger, got %q", trig)
	}
}

func TestSignInFlow(t *testing.T) {
	router := newTestRouter(t, newTestCookies(t))

	boot := httptest.NewRecorder()
	router.ServeHTTP(boot, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	cookies := cookiesFrom(boot)

	form := url.Values{CSRFFormField: {csrfFrom(cookies)}}
	login := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	login.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	replay(login, cookies)
	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, login)
	if loginRec.Code != http.StatusNoContent {
		t.Fatalf("login failed: %d %s", loginRec.Code, loginRec.Body.String())
	}

	// merge: later cookies override earlier ones by name
	jar := map[string]*http.Cookie{}
	for _, ck := range append(cookies, cookiesFrom(loginRec)...) {
		jar[ck.Name] = ck
	}
	merged := make([]*http.Cookie, 0, len(jar))
	for _, ck := range jar {
		merged = append(merged, ck)
	}

	who := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	replay(who, merged)
	whoRec := httptest.NewRecorder()
	router.ServeHTTP(whoRec, who)
	if whoRec.Body.String() != "demo:tok" {
		t.Fatalf("expected signed-in user, got %q", whoRec.Body.String())
	}

	orders := httptest.NewRequest(http.MethodGet, "/orders", nil)
	replay(orders, merged)
	ordersRec := httptest.NewRecorder()
	router.ServeHTTP(ordersRec, orders)
	if ordersRec.Code != http.StatusOK {
		t.Fatalf("expected access to orders, got %d", ordersRec.Code)
	}
}

func TestRequireAuthRedirects(t *testing.T) {
	router := newTestRouter(t, newTestCookies(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?page=2", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Forders%3Fpage%3D2" {
		t.Fatalf("unexpected location %q", loc)
	}

	hx := httptest.NewRequest(http.MethodGet, "/orders", nil)
	hx.Header.Set("HX-Request", "true")
	hxRec := httptest.NewRecorder()
	router.ServeHTTP(hxRec, hx)
	if hxRec.Header().Get("HX-Redirect") != "/login?next=%2Forders" {
		t.Fatalf("expected HX-Redirect, got %q", hxRec.Header().Get("HX-Redirect"))
	}
}

func TestRequireAuthReturnsToHostingPage(t *testing.T) {
	router := newTestRouter(t, newTestCookies(t))
	hx := httptest.NewRequest(http.MethodGet, "/orders", nil)
	hx.Header.Set("HX-Request", "true")
	hx.Header.Set("HX-Current-URL", "http://example.com/cart?step=2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, hx)
	if got := rec.Header().Get("HX-Redirect"); got != "/login?next=%2Fcart%3Fstep%3D2" {
		t.Fatalf("unexpected HX-Redirect %q", got)
	}
}

func TestLocalePrefersQueryThenSession(t *testing.T) {
	bundle, err := i18n.Load("../../locales", "vi", []string{"vi", "en"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c := newTestCookies(t)
	r := chi.NewRouter()
	r.Use(c.Session, Locale(bundle))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Lang(r)))
	})

	first := httptest.NewRequest(http.MethodGet, "/?hl=en", nil)
	first.Header.Set("Accept-Language", "vi")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, first)
	if rec.Body.String() != "en" {
		t.Fatalf("expected en from query, got %q", rec.Body.String())
	}
	if rec.Header().Get("Content-Language") != "en" {
		t.Fatalf("missing Content-Language")
	}
	if !strings.Contains(strings.Join(rec.Header().Values("Vary"), ","), "Accept-Language") {
		t.Fatalf("expected Vary on Accept-Language")
	}

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.Header.Set("Accept-Language", "vi")
	replay(second, cookiesFrom(rec))
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, second)
	if rec2.Body.String() != "en" {
		t.Fatalf("expected session language to stick, got %q", rec2.Body.String())
	}
}

func TestLoginURLRejectsOffsiteTargets(t *testing.T) {
	if got := LoginURL("//evil.example"); got != "/login" {
		t.Fatalf("unexpected login url %q", got)
	}
	if got := LoginURL("https://evil.example"); got != "/login" {
		t.Fatalf("unexpected login url %q", got)
	}
}

func TestTokenExpiryUsesEarlierJWTExp(t *testing.T) {
	now := time.Now()
	exp := now.Add(2 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got := tokenExpiry(token, now); got.Unix() != exp.Unix() {
		t.Fatalf("expected jwt exp, got %v", got)
	}
	if got := tokenExpiry("opaque-token", now); !got.Equal(now.Add(authMaxAge)) {
		t.Fatalf("expected 7-day cap, got %v", got)
	}
}

func TestFlashRoundTrip(t *testing.T) {
	s := &SessionData{}
	s.AddFlash("success", "Đặt hàng thành công")
	got := s.PopFlash()
	if len(got) != 1 || got[0].Text != "Đặt hàng thành công" {
		t.Fatalf("unexpected flash %+v", got)
	}
	if s.PopFlash() != nil {
		t.Fatalf("flash must be drained")
	}
}
