package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/api"
	"thiepcuoi.vn/web/internal/cart"
	"thiepcuoi.vn/web/internal/domain"
	mw "thiepcuoi.vn/web/internal/middleware"
	"thiepcuoi.vn/web/internal/observability"
	"thiepcuoi.vn/web/internal/preview"
	"thiepcuoi.vn/web/internal/render"
)

// EditorForm holds the raw editor inputs so a re-rendered form keeps what the user typed.
type EditorForm struct {
	CardTemplateID domain.ID
	GroomName      string
	BrideName      string
	WeddingDate    string
	WeddingTime    string
	WeddingVenue   string
	CustomMessage  string
}

// PreviewView backs the preview pane fragment.
type PreviewView struct {
	Lang  string
	State string
	// Doc is the standalone card document shown in a sandboxed iframe.
	Doc  string
	Name string
}

// EditorView backs the HTML card editor page.
type EditorView struct {
	Lang          string
	CSRFToken     string
	Template      domain.Template
	CardTemplates []domain.CardTemplate
	Form          EditorForm
	Preview       PreviewView
	PreviewURL    string
	SaveURL       string
	CartURL       string
	Error         string
}

func editorForm(f preview.Fields, cardTemplateID domain.ID) EditorForm {
	return EditorForm{
		CardTemplateID: cardTemplateID,
		GroomName:      f.GroomName,
		BrideName:      f.BrideName,
		WeddingDate:    preview.FormDate(f.WeddingDate),
		WeddingTime:    preview.FormTime(f.WeddingTime),
		WeddingVenue:   f.WeddingVenue,
		CustomMessage:  f.CustomMessage,
	}
}

func (a *app) previewView(r *http.Request, state preview.State, card *domain.CustomizedCard) PreviewView {
	view := PreviewView{Lang: mw.Lang(r), State: state.String()}
	if card == nil {
		return view
	}
	doc, err := render.Document(render.Sanitize(card.RenderedHTML), card.RenderedCSS)
	if err != nil {
		observability.FromContext(r.Context()).Warn("preview document failed", zap.Error(err))
		return view
	}
	view.Doc = doc
	view.Name = card.CardTemplateName
	return view
}

// selectedCardTemplate picks the requested card template when it belongs to the template, else the first one.
func selectedCardTemplate(cards []domain.CardTemplate, requested domain.ID) domain.ID {
	for _, ct := range cards {
		if ct.ID == requested {
			return ct.ID
		}
	}
	if len(cards) > 0 {
		return cards[0].ID
	}
	return ""
}

func (a *app) editorView(r *http.Request, data api.EditorData, form EditorForm, coord *preview.Coordinator) EditorView {
	base := "/templates/" + data.Template.ID.String() + "/customize"
	return EditorView{
		Lang:          mw.Lang(r),
		CSRFToken:     mw.CSRFToken(r),
		Template:      data.Template,
		CardTemplates: data.CardTemplates,
		Form:          form,
		Preview:       a.previewView(r, coord.State(), coord.Current()),
		PreviewURL:    base + "/preview",
		SaveURL:       base + "/save",
		CartURL:       base + "/cart",
	}
}

// editorHandler opens a fresh editing session for the template's card layouts.
func (a *app) editorHandler(w http.ResponseWriter, r *http.Request) {
	templateID := pathID(r)
	data, err := a.api.LoadEditor(r.Context(), templateID)
	if err != nil {
		a.handleAPIError(w, r, err, "editor.load_failed")
		return
	}
	selected := selectedCardTemplate(data.CardTemplates, domain.ID(r.URL.Query().Get("card")))
	coord := a.editor(r, data.Template.ID)
	coord.Reset(selected)

	vm := a.pageData(r, "editor.title")
	vm.Editor = a.editorView(r, data, EditorForm{CardTemplateID: selected}, coord)
	a.renderPage(w, r, "editor", vm)
}

// syncCardTemplate switches the coordinator when the form carries a different card template.
func syncCardTemplate(coord *preview.Coordinator, r *http.Request) {
	id := domain.ID(r.PostFormValue("cardTemplateId"))
	if !id.IsZero() && id != coord.CardTemplateID() {
		coord.SelectTemplate(id)
	}
}

// editorPreviewHandler re-renders the preview pane. Stale and failed renders leave the pane untouched.
func (a *app) editorPreviewHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	coord := a.editor(r, pathID(r))
	syncCardTemplate(coord, r)

	res := coord.Update(r.Context(), preview.FieldsFromForm(r.PostForm))
	switch {
	case res.Stale:
		noSwap(w)
		return
	case res.Err != nil:
		if errors.Is(res.Err, api.ErrUnauthorized) {
			a.handleAPIError(w, r, res.Err, "editor.preview_failed")
			return
		}
		noSwap(w)
		return
	}
	a.renderTemplate(w, r, "frag_editor_preview", a.previewView(r, res.State, res.Card))
}

// editorCommitHandler saves the card, then either opens the saved cards list or adds the card to the cart.
func (a *app) editorCommitHandler(mode preview.CommitMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		templateID := pathID(r)
		coord := a.editor(r, templateID)
		syncCardTemplate(coord, r)
		fields := preview.FieldsFromForm(r.PostForm)

		res, err := coord.Commit(r.Context(), fields, mode)
		if err != nil {
			a.editorCommitFailed(w, r, templateID, fields, coord, err)
			return
		}

		if mode == preview.CommitSave {
			flash(r, "success", a.t(r, "editor.saved"))
			mw.Redirect(w, r, "/my-customized-cards")
			return
		}

		price, err := a.templatePrice(r, res.Card.TemplatePrice, res.Card.TemplateID)
		if err != nil {
			a.handleAPIError(w, r, err, "cart.price_failed")
			return
		}
		outcome, err := a.cart(r).Add(r.Context(), res.CartEntry(price), 1)
		if err != nil {
			a.editorCommitFailed(w, r, templateID, fields, coord, err)
			return
		}
		flash(r, "success", a.cartOutcomeMessage(r, outcome, res.Card.TemplateName))
		mw.Redirect(w, r, "/cart")
	}
}

func (a *app) editorCommitFailed(w http.ResponseWriter, r *http.Request, templateID domain.ID, fields preview.Fields, coord *preview.Coordinator, err error) {
	var msg string
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		a.handleAPIError(w, r, err, "editor.save_failed")
		return
	case errors.Is(err, preview.ErrNoTemplate):
		msg = a.t(r, "editor.no_template")
	case errors.Is(err, preview.ErrNoWeddingDate):
		msg = a.t(r, "editor.date_required")
	case errors.Is(err, preview.ErrBusy):
		msg = a.t(r, "editor.busy")
	default:
		msg = api.Message(err, a.t(r, "editor.save_failed"))
	}

	if mw.IsHTMX(r.Context()) {
		a.notify(w, r, "danger", msg)
		noSwap(w)
		return
	}
	data, loadErr := a.api.LoadEditor(r.Context(), templateID)
	if loadErr != nil {
		a.handleAPIError(w, r, loadErr, "editor.load_failed")
		return
	}
	view := a.editorView(r, data, editorForm(fields, coord.CardTemplateID()), coord)
	view.Error = msg
	vm := a.pageData(r, "editor.title")
	vm.Editor = view
	a.renderPageStatus(w, r, http.StatusUnprocessableEntity, "editor", vm)
}

// cartOutcomeMessage reports whether Add created a line or bumped an existing one.
func (a *app) cartOutcomeMessage(r *http.Request, outcome cart.Outcome, name string) string {
	if outcome == cart.OutcomeQuantityUpdated {
		return a.tf(r, "cart.quantity_updated", name)
	}
	return a.tf(r, "cart.added", name)
}
