package main

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/cart"
	"thiepcuoi.vn/web/internal/domain"
	"thiepcuoi.vn/web/internal/format"
	mw "thiepcuoi.vn/web/internal/middleware"
	"thiepcuoi.vn/web/internal/observability"
	"thiepcuoi.vn/web/internal/render"
)

// SavedCard is a row of the saved cards list.
type SavedCard struct {
	Card        domain.CustomizedCard
	Names       string
	WeddingDate string
	Doc         string
	InCart      bool
}

// SavedInvitation is a row of the invitations list.
type SavedInvitation struct {
	Invitation  domain.CustomInvitation
	Names       string
	WeddingDate string
	InCart      bool
}

// LibraryView backs both "my" lists.
type LibraryView struct {
	Lang        string
	CSRFToken   string
	Cards       []SavedCard
	Invitations []SavedInvitation
}

func cardEntry(c domain.CustomizedCard, price domain.Money) cart.CustomizedCard {
	return cart.CustomizedCard{
		ID:                c.ID,
		TemplateID:        c.TemplateID,
		TemplateName:      c.TemplateName,
		CardTemplateName:  c.CardTemplateName,
		GroomName:         c.GroomName,
		BrideName:         c.BrideName,
		WeddingDate:       c.WeddingDate,
		WeddingTime:       c.WeddingTime,
		WeddingVenue:      c.WeddingVenue,
		CustomMessage:     c.CustomMessage,
		GeneratedImageURL: c.GeneratedImageURL,
		RenderedHTML:      c.RenderedHTML,
		UnitPrice:         price,
	}
}

func (a *app) myCardsHandler(w http.ResponseWriter, r *http.Request) {
	cards, err := a.api.SavedCards(r.Context())
	if err != nil {
		a.handleAPIError(w, r, err, "library.load_failed")
		return
	}
	store := a.cart(r)
	logger := observability.FromContext(r.Context())
	view := LibraryView{Lang: mw.Lang(r), CSRFToken: mw.CSRFToken(r)}
	for _, c := range cards {
		doc, err := render.Document(render.Sanitize(c.RenderedHTML), c.RenderedCSS)
		if err != nil {
			logger.Warn("saved card document failed", zap.String("cardId", c.ID.String()), zap.Error(err))
		}
		view.Cards = append(view.Cards, SavedCard{
			Card:        c,
			Names:       format.WeddingNames(c.GroomName, c.BrideName),
			WeddingDate: format.DateString(c.WeddingDate),
			Doc:         doc,
			InCart:      store.Contains(c.ID),
		})
	}
	vm := a.pageData(r, "library.cards_title")
	vm.Cards = view
	a.renderPage(w, r, "my_cards", vm)
}

// cardDownloadHandler serves the saved card as a standalone HTML file.
func (a *app) cardDownloadHandler(w http.ResponseWriter, r *http.Request) {
	c, err := a.api.CustomizedCard(r.Context(), pathID(r))
	if err != nil {
		a.handleAPIError(w, r, err, "library.load_failed")
		return
	}
	doc, err := render.Document(render.Sanitize(c.RenderedHTML), c.RenderedCSS)
	if err != nil {
		observability.FromContext(r.Context()).Error("card document failed", zap.Error(err))
		http.Error(w, "document error", http.StatusInternalServerError)
		return
	}
	name := format.Slug(format.WeddingNames(c.GroomName, c.BrideName))
	if name == "" {
		name = "thiep-cuoi-" + c.ID.String()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.html"`)
	_, _ = w.Write([]byte(doc))
}

func (a *app) cardToCartHandler(w http.ResponseWriter, r *http.Request) {
	c, err := a.api.CustomizedCard(r.Context(), pathID(r))
	if err != nil {
		a.handleAPIError(w, r, err, "library.load_failed")
		return
	}
	price, err := a.templatePrice(r, c.TemplatePrice, c.TemplateID)
	if err != nil {
		a.handleAPIError(w, r, err, "cart.price_failed")
		return
	}
	a.addToCart(w, r, cardEntry(c, price), c.TemplateName)
}

func (a *app) cardDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := a.api.DeleteCustomizedCard(r.Context(), id); err != nil {
		a.handleAPIError(w, r, err, "library.delete_failed")
		return
	}
	a.cart(r).Remove(r.Context(), id)
	flash(r, "info", a.t(r, "library.deleted"))
	mw.Redirect(w, r, "/my-customized-cards")
}

func (a *app) myInvitationsHandler(w http.ResponseWriter, r *http.Request) {
	invs, err := a.api.Invitations(r.Context())
	if err != nil {
		a.handleAPIError(w, r, err, "library.load_failed")
		return
	}
	store := a.cart(r)
	view := LibraryView{Lang: mw.Lang(r), CSRFToken: mw.CSRFToken(r)}
	for _, inv := range invs {
		view.Invitations = append(view.Invitations, SavedInvitation{
			Invitation:  inv,
			Names:       format.WeddingNames(inv.GroomName, inv.BrideName),
			WeddingDate: format.DateString(inv.WeddingDate),
			InCart:      store.Contains(inv.ID),
		})
	}
	vm := a.pageData(r, "library.invitations_title")
	vm.Invites = view
	a.renderPage(w, r, "my_invitations", vm)
}

func (a *app) invitationToCartHandler(w http.ResponseWriter, r *http.Request) {
	inv, err := a.api.Invitation(r.Context(), pathID(r))
	if err != nil {
		a.handleAPIError(w, r, err, "library.load_failed")
		return
	}
	price, err := a.templatePrice(r, inv.TemplatePrice, inv.TemplateID)
	if err != nil {
		a.handleAPIError(w, r, err, "cart.price_failed")
		return
	}
	a.addToCart(w, r, invitationEntry(inv, price), inv.TemplateName)
}

func (a *app) invitationDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := a.api.DeleteInvitation(r.Context(), id); err != nil {
		a.handleAPIError(w, r, err, "library.delete_failed")
		return
	}
	a.cart(r).Remove(r.Context(), id)
	flash(r, "info", a.t(r, "library.deleted"))
	mw.Redirect(w, r, "/my-invitations")
}

// addToCart adds entry and reports the outcome. htmx callers stay on the list and get a toast.
func (a *app) addToCart(w http.ResponseWriter, r *http.Request, entry cart.Entry, name string) {
	store := a.cart(r)
	outcome, err := store.Add(r.Context(), entry, 1)
	if err != nil {
		a.notify(w, r, "danger", a.t(r, "cart.add_failed"))
		if mw.IsHTMX(r.Context()) {
			noSwap(w)
			return
		}
		mw.Redirect(w, r, "/cart")
		return
	}
	msg := a.cartOutcomeMessage(r, outcome, strings.TrimSpace(name))
	if mw.IsHTMX(r.Context()) {
		a.notify(w, r, "success", msg)
		addTrigger(w, "cart:changed", map[string]int{"count": store.TotalItems()})
		noSwap(w)
		return
	}
	flash(r, "success", msg)
	mw.Redirect(w, r, "/cart")
}
