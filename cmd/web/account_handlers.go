package main

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/api"
	"thiepcuoi.vn/web/internal/domain"
	mw "thiepcuoi.vn/web/internal/middleware"
	"thiepcuoi.vn/web/internal/observability"
	"thiepcuoi.vn/web/internal/validate"
)

// AuthView backs the login and register forms.
type AuthView struct {
	Lang      string
	CSRFToken string
	Next      string
	Username  string
	Email     string
	FullName  string
	Phone     string
	Errors    *validate.Errors
	Error     string
}

// ProfileView backs the profile page.
type ProfileView struct {
	User    domain.User
	RoleKey string
}

var roleKeys = map[string]string{
	"ADMIN": "role.admin",
	"USER":  "role.user",
}

func (a *app) renderAuth(w http.ResponseWriter, r *http.Request, status int, page string, view AuthView) {
	view.Lang = mw.Lang(r)
	view.CSRFToken = mw.CSRFToken(r)
	vm := a.pageData(r, "auth."+page+"_title")
	vm.Auth = view
	a.renderPageStatus(w, r, status, page, vm)
}

func (a *app) loginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), "/")
	if mw.UserFromContext(r.Context()) != nil {
		mw.Redirect(w, r, next)
		return
	}
	a.renderAuth(w, r, http.StatusOK, "login", AuthView{Next: next})
}

func (a *app) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	creds := domain.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	view := AuthView{Next: safeNext(r.PostFormValue("next"), "/"), Username: creds.Username}
	if errs := validate.Login(creds); errs.Len() > 0 {
		view.Errors = errs
		a.renderAuth(w, r, http.StatusUnprocessableEntity, "login", view)
		return
	}

	resp, err := a.api.Login(r.Context(), creds)
	if err != nil {
		// a 401 here means bad credentials, not an expired session
		fallback := "auth.login_failed"
		if errors.Is(err, api.ErrUnauthorized) {
			fallback = "auth.invalid_credentials"
		}
		view.Error = api.Message(err, a.t(r, fallback))
		a.renderAuth(w, r, http.StatusUnauthorized, "login", view)
		return
	}
	if err := a.cookies.SignIn(w, r, resp); err != nil {
		observability.FromContext(r.Context()).Error("sign in cookie failed", zap.Error(err))
		view.Error = a.t(r, "auth.login_failed")
		a.renderAuth(w, r, http.StatusInternalServerError, "login", view)
		return
	}
	name := resp.User.FullName
	if name == "" {
		name = resp.User.Username
	}
	flash(r, "success", a.tf(r, "auth.welcome", name))
	mw.Redirect(w, r, view.Next)
}

func (a *app) registerPage(w http.ResponseWriter, r *http.Request) {
	if mw.UserFromContext(r.Context()) != nil {
		mw.Redirect(w, r, "/")
		return
	}
	a.renderAuth(w, r, http.StatusOK, "register", AuthView{})
}

// registerSubmit creates the account and sends the visitor to the login page.
func (a *app) registerSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	reg := domain.Registration{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		FullName: strings.TrimSpace(r.PostFormValue("fullName")),
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
	}
	view := AuthView{Username: reg.Username, Email: reg.Email, FullName: reg.FullName, Phone: reg.Phone}
	if errs := validate.Registration(reg, r.PostFormValue("confirmPassword")); errs.Len() > 0 {
		view.Errors = errs
		a.renderAuth(w, r, http.StatusUnprocessableEntity, "register", view)
		return
	}
	if reg.Phone != "" {
		reg.Phone = validate.NormalizePhone(reg.Phone)
	}

	if _, err := a.api.Register(r.Context(), reg); err != nil {
		view.Error = api.Message(err, a.t(r, "auth.register_failed"))
		a.renderAuth(w, r, http.StatusUnprocessableEntity, "register", view)
		return
	}
	flash(r, "success", a.t(r, "auth.registered"))
	mw.Redirect(w, r, "/login")
}

func (a *app) logoutHandler(w http.ResponseWriter, r *http.Request) {
	a.cookies.SignOut(w, r)
	flash(r, "info", a.t(r, "auth.signed_out"))
	mw.Redirect(w, r, "/")
}

func (a *app) profileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := a.api.CurrentUser(r.Context())
	if err != nil {
		a.handleAPIError(w, r, err, "profile.load_failed")
		return
	}
	roleKey, ok := roleKeys[strings.ToUpper(user.Role)]
	if !ok {
		roleKey = "role.user"
	}
	vm := a.pageData(r, "profile.title")
	vm.Profile = ProfileView{User: user, RoleKey: roleKey}
	a.renderPage(w, r, "profile", vm)
}
