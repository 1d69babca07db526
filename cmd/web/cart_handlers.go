package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"thiepcuoi.vn/web/internal/cart"
	"thiepcuoi.vn/web/internal/domain"
	"thiepcuoi.vn/web/internal/format"
	mw "thiepcuoi.vn/web/internal/middleware"
)

// CartLine is one row of the cart table.
type CartLine struct {
	ID           domain.ID
	Kind         cart.Kind
	KindKey      string
	TemplateName string
	Layout       string
	Names        string
	WeddingDate  string
	WeddingTime  string
	Venue        string
	ImageURL     string
	UnitPrice    domain.Money
	Quantity     int
	Subtotal     domain.Money
}

// CartView backs the cart page and the cart fragment.
type CartView struct {
	Lang       string
	CSRFToken  string
	Lines      []CartLine
	TotalItems int
	TotalPrice domain.Money
	Degraded   bool
	// ReadOnly hides the quantity and remove controls, e.g. on the checkout summary.
	ReadOnly bool
}

// Empty reports whether there is nothing to check out.
func (v CartView) Empty() bool { return len(v.Lines) == 0 }

func (a *app) cartView(r *http.Request, store *cart.Store) CartView {
	items := store.Items()
	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		kindKey := "cart.kind.invitation"
		if it.Type == cart.KindCustomizedCard {
			kindKey = "cart.kind.card"
		}
		lines = append(lines, CartLine{
			ID:           it.ID,
			Kind:         it.Type,
			KindKey:      kindKey,
			TemplateName: it.TemplateName,
			Layout:       it.CardTemplateName,
			Names:        format.WeddingNames(it.GroomName, it.BrideName),
			WeddingDate:  format.DateString(it.WeddingDate),
			WeddingTime:  format.TimeString(it.WeddingTime),
			Venue:        it.WeddingVenue,
			ImageURL:     it.GeneratedImageURL,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
			Subtotal:     it.Subtotal(),
		})
	}
	return CartView{
		Lang:       mw.Lang(r),
		CSRFToken:  mw.CSRFToken(r),
		Lines:      lines,
		TotalItems: store.TotalItems(),
		TotalPrice: store.TotalPrice(),
		Degraded:   store.Degraded(),
	}
}

// cartHandler renders the cart page.
func (a *app) cartHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.pageData(r, "cart.title")
	vm.Cart = a.cartView(r, a.cart(r))
	a.renderPage(w, r, "cart", vm)
}

// cartChanged answers a cart mutation: htmx gets the refreshed cart fragment plus a badge update event,
// plain forms go back to the cart page.
func (a *app) cartChanged(w http.ResponseWriter, r *http.Request, store *cart.Store) {
	if !mw.IsHTMX(r.Context()) {
		mw.Redirect(w, r, "/cart")
		return
	}
	view := a.cartView(r, store)
	addTrigger(w, "cart:changed", map[string]int{"count": view.TotalItems})
	a.renderTemplate(w, r, "frag_cart", view)
}

func (a *app) cartQuantityHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	qty, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("quantity")))
	if err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}
	store := a.cart(r)
	id := domain.ID(chi.URLParam(r, "id"))
	if qty <= 0 && store.Contains(id) {
		a.notify(w, r, "info", a.t(r, "cart.removed"))
	}
	store.UpdateQuantity(r.Context(), id, qty)
	a.cartChanged(w, r, store)
}

func (a *app) cartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	store := a.cart(r)
	id := domain.ID(chi.URLParam(r, "id"))
	if store.Contains(id) {
		a.notify(w, r, "info", a.t(r, "cart.removed"))
	}
	store.Remove(r.Context(), id)
	a.cartChanged(w, r, store)
}

func (a *app) cartClearHandler(w http.ResponseWriter, r *http.Request) {
	store := a.cart(r)
	store.Clear(r.Context())
	a.notify(w, r, "info", a.t(r, "cart.cleared"))
	a.cartChanged(w, r, store)
}
