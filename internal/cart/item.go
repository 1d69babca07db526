package cart

import (
	"strings"

	"thiepcuoi.vn/web/internal/domain"
)

// Kind tags how an item was produced.
type Kind string

const (
	KindCustomInvitation Kind = "custom_invitation"
	KindCustomizedCard   Kind = "customized_card"
)

// Item is one cart line. The JSON form matches the legacy browser cartItems array.
type Item struct {
	ID                domain.ID    `json:"id"`
	TemplateID        domain.ID    `json:"templateId"`
	TemplateName      string       `json:"templateName"`
	CardTemplateName  string       `json:"cardTemplateName,omitempty"`
	GroomName         string       `json:"groomName"`
	BrideName         string       `json:"brideName"`
	WeddingDate       string       `json:"weddingDate"`
	WeddingTime       string       `json:"weddingTime"`
	WeddingVenue      string       `json:"weddingVenue"`
	CustomMessage     string       `json:"customMessage"`
	GeneratedImageURL string       `json:"generatedImageUrl,omitempty"`
	RenderedHTML      string       `json:"renderedHtml,omitempty"`
	UnitPrice         domain.Money `json:"unitPrice"`
	Quantity          int          `json:"quantity"`
	Type              Kind         `json:"type"`
}

// Subtotal is UnitPrice * Quantity.
func (it Item) Subtotal() domain.Money {
	return it.UnitPrice * domain.Money(it.Quantity)
}

// Entry is the input to Store.Add. Only CustomInvitation and CustomizedCard implement it.
type Entry interface {
	EntryID() domain.ID
	item() Item
}

// CustomInvitation is a basic invitation saved through the custom invitation API.
type CustomInvitation struct {
	ID                domain.ID
	TemplateID        domain.ID
	TemplateName      string
	GroomName         string
	BrideName         string
	WeddingDate       string
	WeddingTime       string
	WeddingVenue      string
	CustomMessage     string
	GeneratedImageURL string
	UnitPrice         domain.Money
}

func (c CustomInvitation) EntryID() domain.ID { return c.ID }

func (c CustomInvitation) item() Item {
	return Item{
		ID:                c.ID,
		TemplateID:        c.TemplateID,
		TemplateName:      c.TemplateName,
		GroomName:         c.GroomName,
		BrideName:         c.BrideName,
		WeddingDate:       c.WeddingDate,
		WeddingTime:       c.WeddingTime,
		WeddingVenue:      c.WeddingVenue,
		CustomMessage:     c.CustomMessage,
		GeneratedImageURL: c.GeneratedImageURL,
		UnitPrice:         c.UnitPrice,
		Type:              KindCustomInvitation,
	}
}

// CustomizedCard is an HTML card rendered from a card template and saved.
type CustomizedCard struct {
	ID                domain.ID
	TemplateID        domain.ID
	TemplateName      string
	CardTemplateName  string
	GroomName         string
	BrideName         string
	WeddingDate       string
	WeddingTime       string
	WeddingVenue      string
	CustomMessage     string
	GeneratedImageURL string
	RenderedHTML      string
	UnitPrice         domain.Money
}

func (c CustomizedCard) EntryID() domain.ID { return c.ID }

func (c CustomizedCard) item() Item {
	return Item{
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
		UnitPrice:         c.UnitPrice,
		Type:              KindCustomizedCard,
	}
}

// normalizeKind repairs items persisted before the type tag was written.
func normalizeKind(it Item) Item {
	switch it.Type {
	case KindCustomInvitation, KindCustomizedCard:
		return it
	}
	if strings.TrimSpace(it.RenderedHTML) != "" {
		it.Type = KindCustomizedCard
	} else {
		it.Type = KindCustomInvitation
	}
	return it
}
