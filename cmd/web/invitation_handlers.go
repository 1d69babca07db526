package main

import (
	"errors"
	"net/http"
	"strings"

	"thiepcuoi.vn/web/internal/api"
	"thiepcuoi.vn/web/internal/cart"
	"thiepcuoi.vn/web/internal/domain"
	"thiepcuoi.vn/web/internal/format"
	mw "thiepcuoi.vn/web/internal/middleware"
	"thiepcuoi.vn/web/internal/validate"
)

// InvitationView backs the basic invitation form, used for both create and edit.
type InvitationView struct {
	Lang      string
	CSRFToken string
	Template  domain.Template
	Form      domain.CustomInvitation
	Errors    *validate.Errors
	Error     string
	Action    string
	Editing   bool
}

// invitationFromForm reads the form. Dates stay in the YYYY-MM-DD form of the date input.
func invitationFromForm(r *http.Request) domain.CustomInvitation {
	return domain.CustomInvitation{
		GroomName:     strings.TrimSpace(r.PostFormValue("groomName")),
		BrideName:     strings.TrimSpace(r.PostFormValue("brideName")),
		WeddingDate:   strings.TrimSpace(r.PostFormValue("weddingDate")),
		WeddingTime:   strings.TrimSpace(r.PostFormValue("weddingTime")),
		WeddingVenue:  strings.TrimSpace(r.PostFormValue("weddingVenue")),
		CustomMessage: strings.TrimSpace(r.PostFormValue("customMessage")),
	}
}

func invitationEntry(inv domain.CustomInvitation, price domain.Money) cart.CustomInvitation {
	return cart.CustomInvitation{
		ID:                inv.ID,
		TemplateID:        inv.TemplateID,
		TemplateName:      inv.TemplateName,
		GroomName:         inv.GroomName,
		BrideName:         inv.BrideName,
		WeddingDate:       inv.WeddingDate,
		WeddingTime:       inv.WeddingTime,
		WeddingVenue:      inv.WeddingVenue,
		CustomMessage:     inv.CustomMessage,
		GeneratedImageURL: inv.GeneratedImageURL,
		UnitPrice:         price,
	}
}

func (a *app) renderInvitationForm(w http.ResponseWriter, r *http.Request, status int, view InvitationView) {
	view.Lang = mw.Lang(r)
	view.CSRFToken = mw.CSRFToken(r)
	titleKey := "invitation.new_title"
	if view.Editing {
		titleKey = "invitation.edit_title"
	}
	vm := a.pageData(r, titleKey)
	vm.Invitation = view
	a.renderPageStatus(w, r, status, "invitation", vm)
}

func (a *app) invitationNewHandler(w http.ResponseWriter, r *http.Request) {
	tpl, err := a.api.Template(r.Context(), pathID(r))
	if err != nil {
		a.handleAPIError(w, r, err, "catalog.load_failed")
		return
	}
	a.renderInvitationForm(w, r, http.StatusOK, InvitationView{
		Template: tpl,
		Form:     domain.CustomInvitation{TemplateID: tpl.ID},
		Action:   "/templates/" + tpl.ID.String() + "/invitation",
	})
}

// invitationCreateHandler saves the invitation, then adds it to the cart unless only a save was asked for.
func (a *app) invitationCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	tpl, err := a.api.Template(r.Context(), pathID(r))
	if err != nil {
		a.handleAPIError(w, r, err, "catalog.load_failed")
		return
	}
	inv := invitationFromForm(r)
	inv.TemplateID = tpl.ID
	view := InvitationView{Template: tpl, Form: inv, Action: "/templates/" + tpl.ID.String() + "/invitation"}

	if errs := validate.Invitation(inv); errs.Len() > 0 {
		view.Errors = errs
		a.renderInvitationForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}

	saved, err := a.api.CreateInvitation(r.Context(), inv)
	if err != nil {
		if isAuthError(err) {
			a.handleAPIError(w, r, err, "invitation.save_failed")
			return
		}
		view.Error = api.Message(err, a.t(r, "invitation.save_failed"))
		a.renderInvitationForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}
	if saved.TemplateName == "" {
		saved.TemplateName = tpl.Name
	}

	if r.PostFormValue("action") == "save" {
		flash(r, "success", a.t(r, "invitation.saved"))
		mw.Redirect(w, r, "/my-invitations")
		return
	}
	outcome, err := a.cart(r).Add(r.Context(), invitationEntry(saved, tpl.Price), 1)
	if err != nil {
		view.Error = a.t(r, "cart.add_failed")
		a.renderInvitationForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}
	flash(r, "success", a.cartOutcomeMessage(r, outcome, tpl.Name))
	mw.Redirect(w, r, "/cart")
}

func (a *app) invitationEditHandler(w http.ResponseWriter, r *http.Request) {
	inv, err := a.api.Invitation(r.Context(), pathID(r))
	if err != nil {
		a.handleAPIError(w, r, err, "invitation.load_failed")
		return
	}
	tpl, err := a.api.Template(r.Context(), inv.TemplateID)
	if err != nil {
		a.handleAPIError(w, r, err, "catalog.load_failed")
		return
	}
	inv.WeddingDate = isoDate(inv.WeddingDate)
	a.renderInvitationForm(w, r, http.StatusOK, InvitationView{
		Template: tpl,
		Form:     inv,
		Action:   "/invitations/" + inv.ID.String(),
		Editing:  true,
	})
}

func (a *app) invitationUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := pathID(r)
	current, err := a.api.Invitation(r.Context(), id)
	if err != nil {
		a.handleAPIError(w, r, err, "invitation.load_failed")
		return
	}
	inv := invitationFromForm(r)
	inv.ID = id
	inv.TemplateID = current.TemplateID
	inv.TemplateName = current.TemplateName
	view := InvitationView{
		Template: domain.Template{ID: current.TemplateID, Name: current.TemplateName},
		Form:     inv,
		Action:   "/invitations/" + id.String(),
		Editing:  true,
	}

	if errs := validate.Invitation(inv); errs.Len() > 0 {
		view.Errors = errs
		a.renderInvitationForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}
	if _, err := a.api.UpdateInvitation(r.Context(), id, inv); err != nil {
		if isAuthError(err) {
			a.handleAPIError(w, r, err, "invitation.save_failed")
			return
		}
		view.Error = api.Message(err, a.t(r, "invitation.save_failed"))
		a.renderInvitationForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}
	flash(r, "success", a.t(r, "invitation.updated"))
	mw.Redirect(w, r, "/my-invitations")
}

// isoDate converts a DD/MM/YYYY date back into the YYYY-MM-DD form expected by date inputs.
func isoDate(raw string) string {
	display := format.DateString(raw)
	parts := strings.Split(display, "/")
	if len(parts) != 3 {
		return raw
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

func isAuthError(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}
