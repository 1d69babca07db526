package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/api"
	"thiepcuoi.vn/web/internal/cart"
	"thiepcuoi.vn/web/internal/config"
	"thiepcuoi.vn/web/internal/domain"
	"thiepcuoi.vn/web/internal/i18n"
	"thiepcuoi.vn/web/internal/kvstore"
	mw "thiepcuoi.vn/web/internal/middleware"
	"thiepcuoi.vn/web/internal/observability"
	"thiepcuoi.vn/web/internal/preview"
)

const requestTimeout = 30 * time.Second

// app owns the long-lived dependencies shared by every handler.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	api      *api.Client
	kv       kvstore.Store
	carts    *cart.Manager
	previews *preview.Registry
	bundle   *i18n.Bundle
	cookies  *mw.Cookies
	views    *views
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	bundle, err := i18n.Load(cfg.Paths.Locales, cfg.Locale.Fallback, cfg.Locale.Supported)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	views, err := newViews(cfg.Paths.Templates, cfg.DevMode, bundle)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger.Named("api")),
	)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	cookies, err := mw.NewCookies(mw.Options{
		HashKey:  []byte(cfg.Session.HashKey),
		BlockKey: []byte(cfg.Session.BlockKey),
		Secure:   cfg.Session.CookieSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("init cookies: %w", err)
	}

	kv, err := kvstore.Open(ctx, kvstore.Options{
		Backend:    cfg.Cart.Backend,
		Path:       cfg.Cart.Path,
		DSN:        cfg.Cart.DSN,
		ProjectID:  cfg.Cart.ProjectID,
		Collection: cfg.Cart.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("open cart storage: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		api:      client,
		kv:       kv,
		carts:    cart.NewManager(kv, logger.Named("cart"), cart.WithIdleTTL(cfg.Cart.IdleTTL)),
		previews: preview.NewRegistry(client, logger.Named("preview"), cfg.Preview.IdleTTL),
		bundle:   bundle,
		cookies:  cookies,
		views:    views,
	}, nil
}

// Close releases the cart storage backend.
func (a *app) Close() error {
	if a.kv == nil {
		return nil
	}
	return a.kv.Close()
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLoggerMiddleware(a.logger))
	r.Use(observability.TraceMiddleware(a.cfg.Cart.ProjectID))
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.RecoveryMiddleware(a.logger))
	r.Use(chimw.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(a.cfg.Paths.Public, "assets"), a.cfg.DevMode))

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(a.cookies.Session)
		r.Use(mw.Locale(a.bundle))
		r.Use(a.cookies.Auth)
		r.Use(a.cookies.CSRF)
		r.Use(chimw.Timeout(requestTimeout))

		r.Get("/", a.homeHandler)
		r.Get("/templates", a.templatesHandler)
		r.Get("/templates/{id}", a.templateDetailHandler)

		r.Get("/login", a.loginPage)
		r.Post("/login", a.loginSubmit)
		r.Get("/register", a.registerPage)
		r.Post("/register", a.registerSubmit)
		r.Post("/logout", a.logoutHandler)

		r.Get("/cart", a.cartHandler)
		r.Post("/cart/items/{id}/quantity", a.cartQuantityHandler)
		r.Post("/cart/items/{id}/remove", a.cartRemoveHandler)
		r.Post("/cart/clear", a.cartClearHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)

			r.Get("/templates/{id}/customize", a.editorHandler)
			r.Post("/templates/{id}/customize/preview", a.editorPreviewHandler)
			r.Post("/templates/{id}/customize/save", a.editorCommitHandler(preview.CommitSave))
			r.Post("/templates/{id}/customize/cart", a.editorCommitHandler(preview.CommitAddToCart))

			r.Get("/templates/{id}/invitation", a.invitationNewHandler)
			r.Post("/templates/{id}/invitation", a.invitationCreateHandler)
			r.Get("/invitations/{id}/edit", a.invitationEditHandler)
			r.Post("/invitations/{id}", a.invitationUpdateHandler)

			r.Get("/my-invitations", a.myInvitationsHandler)
			r.Post("/my-invitations/{id}/cart", a.invitationToCartHandler)
			r.Post("/my-invitations/{id}/delete", a.invitationDeleteHandler)

			r.Get("/my-customized-cards", a.myCardsHandler)
			r.Get("/my-customized-cards/{id}/download", a.cardDownloadHandler)
			r.Post("/my-customized-cards/{id}/cart", a.cardToCartHandler)
			r.Post("/my-customized-cards/{id}/delete", a.cardDeleteHandler)

			r.Get("/checkout", a.checkoutHandler)
			r.Post("/checkout", a.checkoutSubmitHandler)

			r.Get("/orders", a.ordersHandler)
			r.Get("/orders/{id}", a.orderDetailHandler)

			r.Get("/profile", a.profileHandler)
		})

		r.NotFound(a.notFoundHandler)
	})
	return r
}

// cart returns the cart bound to the visitor's session.
func (a *app) cart(r *http.Request) *cart.Store {
	cartID := ""
	if s := mw.GetSession(r); s != nil {
		cartID = s.CartID
	}
	return a.carts.For(r.Context(), cartID)
}

// editor returns the preview coordinator for the visitor's editing session of templateID.
func (a *app) editor(r *http.Request, templateID domain.ID) *preview.Coordinator {
	sessionID := ""
	if s := mw.GetSession(r); s != nil {
		sessionID = s.ID
	}
	return a.previews.Get(sessionID, templateID)
}
