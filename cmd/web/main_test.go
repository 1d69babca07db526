package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/config"
	"thiepcuoi.vn/web/internal/testutil"
)

func testConfig() config.Config {
	return config.Config{
		Environment: "test",
		DevMode:     true,
		API:         config.APIConfig{Offline: true, Timeout: 5 * time.Second},
		Session: config.SessionConfig{
			HashKey:  strings.Repeat("h", 32),
			BlockKey: strings.Repeat("b", 32),
		},
		Cart:    config.CartConfig{Backend: "memory", IdleTTL: time.Hour},
		Preview: config.PreviewConfig{IdleTTL: time.Hour},
		Paths: config.PathConfig{
			Templates: "../../templates",
			Locales:   "../../locales",
			Public:    "../../public",
		},
		Locale: config.LocaleConfig{Fallback: "vi", Supported: []string{"vi", "en"}},
	}
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t    *testing.T
	base *url.URL
	http *http.Client
}

func newTestServer(t *testing.T) *browser {
	t.Helper()
	a, err := newApp(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(a.routes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: base,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	*http.Response
	body []byte
}

func (r response) doc(t *testing.T) *goquery.Document {
	t.Helper()
	return testutil.ParseHTML(t, r.body)
}

func (b *browser) do(method, path string, form url.Values, headers map[string]string) response {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, b.base.String()+path, body)
	require.NoError(b.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := b.http.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return response{Response: resp, body: raw}
}

func (b *browser) get(path string) response { return b.do(http.MethodGet, path, nil, nil) }

// post submits a plain form with the current CSRF token.
func (b *browser) post(path string, form url.Values) response {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", b.csrf())
	return b.do(http.MethodPost, path, form, nil)
}

// hxPost submits like htmx does: token in the header, HX-Request set.
func (b *browser) hxPost(path string, form url.Values) response {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, path, form, map[string]string{
		"HX-Request":   "true",
		"X-CSRF-Token": b.csrf(),
	})
}

func (b *browser) csrf() string {
	for _, c := range b.http.Jar.Cookies(b.base) {
		if c.Name == "csrf_token" {
			return c.Value
		}
	}
	b.t.Fatalf("no csrf cookie yet")
	return ""
}

func (b *browser) login() {
	b.t.Helper()
	b.get("/login")
	res := b.post("/login", url.Values{"username": {"demo"}, "password": {"demo123"}, "next": {"/"}})
	require.Equal(b.t, http.StatusSeeOther, res.StatusCode)
	// sign-in rotates the CSRF token; the next page load reissues the cookie
	b.get("/")
}

func triggers(t *testing.T, res response) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	if raw := res.Header.Get("HX-Trigger"); raw != "" {
		require.NoError(t, json.Unmarshal([]byte(raw), &out))
	}
	return out
}

func TestHealthzOK(t *testing.T) {
	b := newTestServer(t)
	res := b.get("/healthz")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", strings.TrimSpace(string(res.body)))
}

func TestHomeRendersLocalizedNav(t *testing.T) {
	b := newTestServer(t)

	res := b.get("/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := res.doc(t)
	assert.Contains(t, doc.Find(".site-nav").Text(), "Giỏ hàng")
	assert.Equal(t, "0", strings.TrimSpace(doc.Find("#cart-count").Text()))
	assert.NotEmpty(t, doc.Find("body").AttrOr("hx-headers", ""))

	res = b.get("/?hl=en")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.doc(t).Find(".site-nav").Text(), "Cart")
	assert.Equal(t, "en", res.Header.Get("Content-Language"))
}

func TestCatalogFilterReturnsGridFragment(t *testing.T) {
	b := newTestServer(t)

	res := b.get("/templates")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 3, res.doc(t).Find("#catalog-grid [data-template-id]").Length())

	res = b.do(http.MethodGet, "/templates?category=3", nil, map[string]string{
		"HX-Request": "true",
		"HX-Target":  "catalog-grid",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "/templates?category=3", res.Header.Get("HX-Push-Url"))
	doc := res.doc(t)
	assert.Zero(t, doc.Find("header.site-header").Length(), "fragment must not carry the layout")
	tiles := doc.Find("[data-template-id]")
	require.Equal(t, 1, tiles.Length())
	assert.Equal(t, "3", tiles.AttrOr("data-template-id", ""))
}

func TestTemplateDetail(t *testing.T) {
	b := newTestServer(t)

	res := b.get("/templates/3-vuon-hong")
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := res.doc(t)
	assert.Equal(t, "3", doc.Find(".template-detail").AttrOr("data-template-id", ""))
	assert.Contains(t, doc.Find("h1").Text(), "Vườn Hồng")
	assert.Contains(t, doc.Find(`script[type="application/ld+json"]`).Text(), `"priceCurrency":"VND"`)

	res = b.get("/templates/999")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUnknownPageRendersNotFound(t *testing.T) {
	b := newTestServer(t)
	res := b.get("/no-such-page")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, res.doc(t).Text(), "Không tìm thấy trang")
}

func TestEditorRequiresLogin(t *testing.T) {
	b := newTestServer(t)

	res := b.get("/templates/3/customize")
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	loc := res.Header.Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/login"), "location %q", loc)
	assert.Contains(t, loc, url.QueryEscape("/templates/3/customize"))

	res = b.do(http.MethodGet, "/templates/3/customize", nil, map[string]string{"HX-Request": "true"})
	assert.NotEmpty(t, res.Header.Get("HX-Redirect"))
}

func TestPostWithoutCSRFIsRejected(t *testing.T) {
	b := newTestServer(t)
	b.get("/")
	res := b.do(http.MethodPost, "/cart/clear", url.Values{}, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestLoginWithWrongPasswordStaysOnForm(t *testing.T) {
	b := newTestServer(t)
	b.get("/login")
	res := b.post("/login", url.Values{"username": {"demo"}, "password": {"nope"}})
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, res.doc(t).Text(), "Tên đăng nhập hoặc mật khẩu không đúng")
}

func TestEditorPreviewAndCommitToCart(t *testing.T) {
	b := newTestServer(t)
	b.login()

	res := b.get("/templates/3-vuon-hong/customize")
	require.Equal(t, http.StatusOK, res.StatusCode)

	form := url.Values{"cardTemplateId": {"31"}, "groom_name": {"Minh"}}
	res = b.hxPost("/templates/3/customize/preview", form)
	require.Equal(t, http.StatusOK, res.StatusCode)
	pane := res.doc(t).Find(".card-preview")
	assert.Equal(t, "awaiting_input", pane.AttrOr("data-state", ""))
	assert.Zero(t, pane.Find("iframe").Length())

	form.Set("bride_name", "Lan")
	form.Set("wedding_date", "2026-12-20")
	form.Set("wedding_venue", "Đà Lạt")
	res = b.hxPost("/templates/3/customize/preview", form)
	require.Equal(t, http.StatusOK, res.StatusCode)
	pane = res.doc(t).Find(".card-preview")
	assert.Equal(t, "previewing", pane.AttrOr("data-state", ""))
	srcdoc := pane.Find("iframe").AttrOr("srcdoc", "")
	assert.Contains(t, srcdoc, "Minh")
	assert.Contains(t, srcdoc, "Lan")

	res = b.post("/templates/3/customize/cart", form)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/cart", res.Header.Get("Location"))

	res = b.get("/cart")
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := res.doc(t)
	lines := doc.Find("#cart [data-item-id]")
	require.Equal(t, 1, lines.Length())
	assert.Equal(t, "customized_card", lines.AttrOr("data-kind", ""))
	assert.Equal(t, "1", doc.Find("#cart").AttrOr("data-total-items", ""))
	assert.Contains(t, doc.Find("[data-cart-total]").Text(), "80.000")
	assert.Contains(t, doc.Find(".notice").Text(), "Vườn Hồng")
}

func TestEditorCommitWithoutDateKeepsForm(t *testing.T) {
	b := newTestServer(t)
	b.login()
	b.get("/templates/3/customize")

	form := url.Values{"cardTemplateId": {"31"}, "groom_name": {"Minh"}, "bride_name": {"Lan"}}
	res := b.post("/templates/3/customize/save", form)
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	doc := res.doc(t)
	assert.Contains(t, doc.Text(), "Vui lòng chọn ngày cưới")
	assert.Equal(t, "Minh", doc.Find(`input[name="groom_name"]`).AttrOr("value", ""))

	res = b.hxPost("/templates/3/customize/save", form)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "none", res.Header.Get("HX-Reswap"))
	assert.Contains(t, triggers(t, res), "toast")
}

// addInvitation creates an invitation through the basic form and lands it in the cart.
func addInvitation(t *testing.T, b *browser) {
	t.Helper()
	b.get("/templates/3/invitation")
	res := b.post("/templates/3/invitation", url.Values{
		"groomName":    {"Minh"},
		"brideName":    {"Lan"},
		"weddingDate":  {"2026-12-20"},
		"weddingVenue": {"Đà Lạt"},
		"action":       {"cart"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/cart", res.Header.Get("Location"))
}

func TestCartQuantityAndRemove(t *testing.T) {
	b := newTestServer(t)
	b.login()
	addInvitation(t, b)

	doc := b.get("/cart").doc(t)
	id := doc.Find("#cart [data-item-id]").AttrOr("data-item-id", "")
	require.NotEmpty(t, id)
	assert.Equal(t, "custom_invitation", doc.Find("#cart [data-item-id]").AttrOr("data-kind", ""))

	res := b.hxPost("/cart/items/"+id+"/quantity", url.Values{"quantity": {"3"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	frag := res.doc(t)
	assert.Equal(t, "3", frag.Find("#cart").AttrOr("data-total-items", ""))
	assert.Contains(t, frag.Find("[data-cart-total]").Text(), "240.000")
	var changed struct{ Count int }
	require.NoError(t, json.Unmarshal(triggers(t, res)["cart:changed"], &changed))
	assert.Equal(t, 3, changed.Count)

	res = b.hxPost("/cart/items/"+id+"/quantity", url.Values{"quantity": {"x"}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = b.hxPost("/cart/items/"+id+"/remove", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, res.doc(t).Find("[data-empty]").Length())
	assert.Contains(t, triggers(t, res), "toast")

	res = b.hxPost("/cart/items/"+id+"/quantity", url.Values{"quantity": {"0"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, triggers(t, res), "toast", "nothing was removed")
}

func TestCartSurvivesSignOut(t *testing.T) {
	b := newTestServer(t)
	b.login()
	addInvitation(t, b)

	b.post("/logout", nil)
	assert.Equal(t, "1", strings.TrimSpace(b.get("/cart").doc(t).Find("#cart-count").Text()))
}

func TestCheckoutValidatesAndPlacesOrder(t *testing.T) {
	b := newTestServer(t)
	b.login()

	res := b.get("/checkout")
	require.Equal(t, http.StatusSeeOther, res.StatusCode, "empty cart cannot check out")
	assert.Equal(t, "/cart", res.Header.Get("Location"))

	addInvitation(t, b)
	res = b.get("/checkout")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "0901234567", res.doc(t).Find(`input[name="phone"]`).AttrOr("value", ""))

	res = b.post("/checkout", url.Values{"shippingAddress": {""}, "phone": {"12"}})
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.GreaterOrEqual(t, res.doc(t).Find(".field-error").Length(), 2)

	res = b.post("/checkout", url.Values{
		"shippingAddress": {"12 Lê Lợi, Quận 1, TP.HCM"},
		"phone":           {"0901 234 567"},
		"notes":           {"Giao giờ hành chính"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	loc := res.Header.Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/orders/"), "location %q", loc)

	res = b.get(loc)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "0", strings.TrimSpace(res.doc(t).Find("#cart-count").Text()))

	res = b.get("/orders")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.doc(t).Text(), "Chờ xác nhận")
}
