package main

import (
	"net/http"

	"thiepcuoi.vn/web/internal/domain"
	mw "thiepcuoi.vn/web/internal/middleware"
)

// OrdersView backs the order history page.
type OrdersView struct {
	Lang   string
	Orders []domain.Order
}

// OrderView backs the order detail page.
type OrderView struct {
	Lang  string
	Order domain.Order
}

func (a *app) ordersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := a.api.Orders(r.Context())
	if err != nil {
		a.handleAPIError(w, r, err, "orders.load_failed")
		return
	}
	vm := a.pageData(r, "orders.title")
	vm.Orders = OrdersView{Lang: mw.Lang(r), Orders: orders}
	a.renderPage(w, r, "orders", vm)
}

func (a *app) orderDetailHandler(w http.ResponseWriter, r *http.Request) {
	order, err := a.api.Order(r.Context(), pathID(r))
	if err != nil {
		a.handleAPIError(w, r, err, "orders.load_failed")
		return
	}
	vm := a.pageData(r, "orders.detail_title")
	vm.Order = OrderView{Lang: mw.Lang(r), Order: order}
	a.renderPage(w, r, "order", vm)
}
