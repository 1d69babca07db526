package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/api"
	mw "thiepcuoi.vn/web/internal/middleware"
	"thiepcuoi.vn/web/internal/observability"
)

// errorView is the payload of the error page.
type errorView struct {
	Status  int
	Message string
}

// handleAPIError turns an API failure into a response. A rejected token signs the visitor
// out and sends them to the login page; other failures become a toast for htmx requests
// or the error page otherwise.
func (a *app) handleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackKey string) {
	logger := observability.FromContext(r.Context())
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		logger.Info("api rejected token, signing out", zap.Error(err))
		a.cookies.SignOut(w, r)
		flash(r, "warning", a.t(r, "auth.session_expired"))
		mw.Redirect(w, r, mw.LoginURL(currentURL(r)))
		return
	case errors.Is(err, api.ErrNotFound):
		if mw.IsHTMX(r.Context()) {
			a.notify(w, r, "danger", api.Message(err, a.t(r, "error.not_found")))
			noSwap(w)
			return
		}
		a.notFoundHandler(w, r)
		return
	}

	msg := api.Message(err, a.t(r, fallbackKey))
	logger.Warn("api call failed", zap.Error(err))
	if mw.IsHTMX(r.Context()) {
		a.notify(w, r, "danger", msg)
		noSwap(w)
		return
	}
	status := http.StatusBadGateway
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		status = apiErr.Status
	}
	vm := a.pageData(r, "error.title")
	vm.Error = errorView{Status: status, Message: msg}
	a.renderPageStatus(w, r, status, "error", vm)
}

func (a *app) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.pageData(r, "error.not_found_title")
	vm.Error = errorView{Status: http.StatusNotFound, Message: a.t(r, "error.not_found")}
	a.renderPageStatus(w, r, http.StatusNotFound, "error", vm)
}

// currentURL is the page the visitor is on; for htmx requests that is the hosting page, not the fragment endpoint.
func currentURL(r *http.Request) string {
	if cur := mw.HX(r.Context()).CurrentPath(); cur != "" {
		return cur
	}
	if r.Method == http.MethodGet {
		return r.URL.RequestURI()
	}
	return ""
}
