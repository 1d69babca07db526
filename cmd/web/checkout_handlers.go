package main

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/api"
	"thiepcuoi.vn/web/internal/cart"
	"thiepcuoi.vn/web/internal/domain"
	mw "thiepcuoi.vn/web/internal/middleware"
	"thiepcuoi.vn/web/internal/observability"
	"thiepcuoi.vn/web/internal/validate"
)

// CheckoutForm is the shipping form.
type CheckoutForm struct {
	ShippingAddress string
	Phone           string
	Notes           string
}

// CheckoutView backs the checkout page.
type CheckoutView struct {
	Lang      string
	CSRFToken string
	Cart      CartView
	Form      CheckoutForm
	Errors    *validate.Errors
	Error     string
}

// orderFromCart builds the order payload. Every cart line, invitation or card, is sent by id.
func orderFromCart(store *cart.Store, form CheckoutForm) domain.Order {
	items := store.Items()
	lines := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.OrderItem{
			CustomInvitationID: it.ID,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			Subtotal:           it.Subtotal(),
		})
	}
	return domain.Order{
		ShippingAddress: strings.TrimSpace(form.ShippingAddress),
		Phone:           validate.NormalizePhone(form.Phone),
		Notes:           strings.TrimSpace(form.Notes),
		OrderItems:      lines,
		TotalAmount:     store.TotalPrice(),
	}
}

func (a *app) renderCheckout(w http.ResponseWriter, r *http.Request, status int, store *cart.Store, view CheckoutView) {
	view.Lang = mw.Lang(r)
	view.CSRFToken = mw.CSRFToken(r)
	view.Cart = a.cartView(r, store)
	view.Cart.ReadOnly = true
	vm := a.pageData(r, "checkout.title")
	vm.Checkout = view
	a.renderPageStatus(w, r, status, "checkout", vm)
}

// checkoutHandler shows the shipping form, prefilled with the profile phone when available.
func (a *app) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	store := a.cart(r)
	if store.Empty() {
		flash(r, "warning", a.t(r, "checkout.empty"))
		mw.Redirect(w, r, "/cart")
		return
	}
	var form CheckoutForm
	user, err := a.api.CurrentUser(r.Context())
	switch {
	case err == nil:
		form.Phone = user.Phone
	case isAuthError(err):
		a.handleAPIError(w, r, err, "checkout.failed")
		return
	default:
		observability.FromContext(r.Context()).Warn("profile prefill failed", zap.Error(err))
	}
	a.renderCheckout(w, r, http.StatusOK, store, CheckoutView{Form: form})
}

// checkoutSubmitHandler places the order and empties the cart on success.
func (a *app) checkoutSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	store := a.cart(r)
	if store.Empty() {
		flash(r, "warning", a.t(r, "checkout.empty"))
		mw.Redirect(w, r, "/cart")
		return
	}
	form := CheckoutForm{
		ShippingAddress: r.PostFormValue("shippingAddress"),
		Phone:           r.PostFormValue("phone"),
		Notes:           r.PostFormValue("notes"),
	}
	if errs := validate.Checkout(form.ShippingAddress, form.Phone); errs.Len() > 0 {
		a.renderCheckout(w, r, http.StatusUnprocessableEntity, store, CheckoutView{Form: form, Errors: errs})
		return
	}

	order, err := a.api.CreateOrder(r.Context(), orderFromCart(store, form))
	if err != nil {
		if isAuthError(err) {
			a.handleAPIError(w, r, err, "checkout.failed")
			return
		}
		observability.FromContext(r.Context()).Warn("order submission failed", zap.Error(err))
		a.renderCheckout(w, r, http.StatusUnprocessableEntity, store, CheckoutView{
			Form:  form,
			Error: api.Message(err, a.t(r, "checkout.failed")),
		})
		return
	}

	store.Clear(r.Context())
	observability.FromContext(r.Context()).Info("order placed",
		zap.String("orderId", order.ID.String()),
		zap.String("orderCode", order.OrderCode),
		zap.Int64("total", int64(order.TotalAmount)),
	)
	flash(r, "success", a.tf(r, "checkout.success", order.OrderCode))
	if order.ID.IsZero() {
		mw.Redirect(w, r, "/orders")
		return
	}
	mw.Redirect(w, r, "/orders/"+order.ID.String())
}
