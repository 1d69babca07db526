package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Custom data keys shared by the editor, the renderer and the API.
const (
	FieldGroomName     = "groom_name"
	FieldBrideName     = "bride_name"
	FieldWeddingDate   = "wedding_date"
	FieldWeddingTime   = "wedding_time"
	FieldWeddingVenue  = "wedding_venue"
	FieldCustomMessage = "custom_message"
)

// CustomDataKeys lists the fixed custom data keys in display order.
var CustomDataKeys = []string{
	FieldGroomName,
	FieldBrideName,
	FieldWeddingDate,
	FieldWeddingTime,
	FieldWeddingVenue,
	FieldCustomMessage,
}

// ID identifies backend records. The API emits numeric ids; the web tier treats them as opaque strings.
type ID string

// UnmarshalJSON accepts JSON numbers, strings and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("domain: invalid id %s: %w", string(b), err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as JSON numbers so the backend can bind them to Long fields.
func (id ID) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// Money is an amount in whole VND.
type Money int64

// UnmarshalJSON accepts decimal JSON numbers (BigDecimal on the backend) and numeric strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("domain: invalid amount %q: %w", raw, err)
	}
	*m = Money(math.Round(f))
	return nil
}

// Category groups templates.
type Category struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Template is a purchasable invitation design.
type Template struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	CategoryID   ID     `json:"categoryId,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	PreviewURL   string `json:"previewUrl,omitempty"`
	Price        Money  `json:"price"`
	IsActive     bool   `json:"isActive"`
}

// CardTemplate is an HTML/CSS layout attached to a base template.
type CardTemplate struct {
	ID                ID     `json:"id"`
	TemplateID        ID     `json:"templateId"`
	TemplateName      string `json:"templateName,omitempty"`
	CardTemplateName  string `json:"cardTemplateName"`
	HTMLContent       string `json:"htmlContent"`
	CSSContent        string `json:"cssContent,omitempty"`
	TemplateVariables string `json:"templateVariables,omitempty"`
	PreviewImageURL   string `json:"previewImageUrl,omitempty"`
	ThumbnailURL      string `json:"thumbnailUrl,omitempty"`
	Version           string `json:"version,omitempty"`
	IsActive          bool   `json:"isActive"`
}

// RenderRequest asks the backend to merge custom data into a card template.
// SaveCard=false is a preview and must not persist anything.
type RenderRequest struct {
	CardTemplateID ID                `json:"cardTemplateId"`
	CustomData     map[string]string `json:"customData"`
	SaveCard       bool              `json:"saveCard"`
}

// CustomizedCard is the render result. ID is empty for previews.
type CustomizedCard struct {
	ID                ID     `json:"id"`
	CardTemplateID    ID     `json:"cardTemplateId"`
	TemplateID        ID     `json:"templateId"`
	TemplateName      string `json:"templateName,omitempty"`
	CardTemplateName  string `json:"cardTemplateName,omitempty"`
	CustomData        string `json:"customData,omitempty"`
	RenderedHTML      string `json:"renderedHtml"`
	RenderedCSS       string `json:"renderedCss"`
	GeneratedImageURL string `json:"generatedImageUrl,omitempty"`
	GeneratedPDFURL   string `json:"generatedPdfUrl,omitempty"`
	PreviewURL        string `json:"previewUrl,omitempty"`
	IsSaved           bool   `json:"isSaved"`
	GroomName         string `json:"groomName,omitempty"`
	BrideName         string `json:"brideName,omitempty"`
	WeddingDate       string `json:"weddingDate,omitempty"`
	WeddingTime       string `json:"weddingTime,omitempty"`
	WeddingVenue      string `json:"weddingVenue,omitempty"`
	CustomMessage     string `json:"customMessage,omitempty"`
	TemplatePrice     Money  `json:"templatePrice,omitempty"`
}

// CustomInvitation is a basic (non-HTML) invitation.
type CustomInvitation struct {
	ID                ID     `json:"id,omitempty"`
	TemplateID        ID     `json:"templateId"`
	TemplateName      string `json:"templateName,omitempty"`
	GroomName         string `json:"groomName"`
	BrideName         string `json:"brideName"`
	WeddingDate       string `json:"weddingDate"`
	WeddingTime       string `json:"weddingTime,omitempty"`
	WeddingVenue      string `json:"weddingVenue,omitempty"`
	CustomMessage     string `json:"customMessage,omitempty"`
	GeneratedImageURL string `json:"generatedImageUrl,omitempty"`
	IsSaved           bool   `json:"isSaved,omitempty"`
	TemplatePrice     Money  `json:"templatePrice,omitempty"`
}

// Order statuses reported by the backend.
const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderPrinting  = "PRINTING"
	OrderShipping  = "SHIPPING"
	OrderCompleted = "COMPLETED"
	OrderCancelled = "CANCELLED"
)

// OrderItem is a single order line.
type OrderItem struct {
	CustomInvitationID ID     `json:"customInvitationId"`
	Quantity           int    `json:"quantity"`
	UnitPrice          Money  `json:"unitPrice"`
	Subtotal           Money  `json:"subtotal"`
	GroomName          string `json:"groomName,omitempty"`
	BrideName          string `json:"brideName,omitempty"`
	TemplateName       string `json:"templateName,omitempty"`
}

// Order is a checkout submission and its server-side record.
type Order struct {
	ID              ID          `json:"id,omitempty"`
	OrderCode       string      `json:"orderCode,omitempty"`
	ShippingAddress string      `json:"shippingAddress"`
	Phone           string      `json:"phone"`
	Notes           string      `json:"notes,omitempty"`
	OrderItems      []OrderItem `json:"orderItems"`
	TotalAmount     Money       `json:"totalAmount"`
	Status          string      `json:"status,omitempty"`
	CreatedAt       string      `json:"createdAt,omitempty"`
}

// User is the authenticated account profile.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// AuthResponse carries the bearer token issued at login.
type AuthResponse struct {
	Token string `json:"token"`
	Type  string `json:"type,omitempty"`
	User  User   `json:"user"`
}
