package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"thiepcuoi.vn/web/internal/domain"
)

// ErrSaveUnavailable is returned when a save render has nowhere to persist the card.
var ErrSaveUnavailable = errors.New("render: card storage unavailable")

// CardTemplates resolves card templates by id.
type CardTemplates interface {
	CardTemplate(ctx context.Context, id domain.ID) (domain.CardTemplate, error)
}

// CardSaver persists a rendered card and returns it with its new id.
type CardSaver interface {
	SaveCard(ctx context.Context, card domain.CustomizedCard) (domain.CustomizedCard, error)
}

// LocalRenderer renders cards in process. Preview renders never reach the saver.
type LocalRenderer struct {
	engine    *Engine
	templates CardTemplates
	saver     CardSaver
}

// NewLocalRenderer builds a renderer over a template source and an optional saver.
func NewLocalRenderer(templates CardTemplates, saver CardSaver) *LocalRenderer {
	return &LocalRenderer{engine: NewEngine(), templates: templates, saver: saver}
}

// Render validates data against the card template, fills it, and saves when req.SaveCard is set.
func (l *LocalRenderer) Render(ctx context.Context, req domain.RenderRequest) (domain.CustomizedCard, error) {
	if l == nil || l.templates == nil {
		return domain.CustomizedCard{}, errors.New("render: no template source")
	}
	tpl, err := l.templates.CardTemplate(ctx, req.CardTemplateID)
	if err != nil {
		return domain.CustomizedCard{}, fmt.Errorf("render: load card template %s: %w", req.CardTemplateID, err)
	}
	data := req.CustomData
	if data == nil {
		data = map[string]string{}
	}
	if err := l.engine.Validate(tpl.TemplateVariables, data); err != nil {
		return domain.CustomizedCard{}, err
	}
	rawData, err := json.Marshal(data)
	if err != nil {
		return domain.CustomizedCard{}, err
	}
	htmlOut, cssOut := l.engine.Render(tpl, data)
	card := domain.CustomizedCard{
		CardTemplateID:   tpl.ID,
		TemplateID:       tpl.TemplateID,
		TemplateName:     tpl.TemplateName,
		CardTemplateName: tpl.CardTemplateName,
		CustomData:       string(rawData),
		RenderedHTML:     htmlOut,
		RenderedCSS:      cssOut,
		GroomName:        data[domain.FieldGroomName],
		BrideName:        data[domain.FieldBrideName],
		WeddingDate:      data[domain.FieldWeddingDate],
		WeddingTime:      data[domain.FieldWeddingTime],
		WeddingVenue:     data[domain.FieldWeddingVenue],
		CustomMessage:    data[domain.FieldCustomMessage],
	}
	if !req.SaveCard {
		return card, nil
	}
	if l.saver == nil {
		return domain.CustomizedCard{}, ErrSaveUnavailable
	}
	card.IsSaved = true
	return l.saver.SaveCard(ctx, card)
}
