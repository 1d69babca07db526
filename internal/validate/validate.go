package validate

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"thiepcuoi.vn/web/internal/domain"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)
)

// Message keys resolved through the locale bundle.
const (
	KeyRequired        = "validation.required"
	KeyEmail           = "validation.email"
	KeyPhone           = "validation.phone"
	KeyPasswordLength  = "validation.password_length"
	KeyPasswordConfirm = "validation.password_confirm"
)

// Errors collects per-field message keys. A nil *Errors has no errors.
type Errors struct {
	fields map[string]string
}

// Add records key for field unless the field already has an error.
func (e *Errors) Add(field, key string) {
	if e.fields == nil {
		e.fields = make(map[string]string)
	}
	if _, exists := e.fields[field]; !exists {
		e.fields[field] = key
	}
}

// Get returns the message key recorded for field.
func (e *Errors) Get(field string) string {
	if e == nil {
		return ""
	}
	return e.fields[field]
}

// Has reports whether field failed validation.
func (e *Errors) Has(field string) bool { return e.Get(field) != "" }

// Fields lists failed fields in sorted order.
func (e *Errors) Fields() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.fields))
	for f := range e.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of failed fields.
func (e *Errors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.fields)
}

func (e *Errors) Error() string {
	return "validation failed: " + strings.Join(e.Fields(), ", ")
}

// Err returns e as an error, or nil when nothing failed.
func (e *Errors) Err() error {
	if e.Len() == 0 {
		return nil
	}
	return e
}

// Blank reports whether s is empty after trimming.
func Blank(s string) bool { return strings.TrimSpace(s) == "" }

// Email reports whether s looks like an email address.
func Email(s string) bool { return emailPattern.MatchString(strings.TrimSpace(s)) }

// NormalizePhone strips whitespace from a phone number.
func NormalizePhone(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Phone reports whether s is a 10 or 11 digit Vietnamese phone number, ignoring whitespace.
func Phone(s string) bool { return phonePattern.MatchString(NormalizePhone(s)) }

// Password reports whether s is long enough.
func Password(s string) bool { return utf8.RuneCountInString(s) >= MinPasswordLength }

// Login checks the sign-in form.
func Login(creds domain.Credentials) *Errors {
	errs := &Errors{}
	if Blank(creds.Username) {
		errs.Add("username", KeyRequired)
	}
	if creds.Password == "" {
		errs.Add("password", KeyRequired)
	}
	return errs
}

// Registration checks the sign-up form. confirm is the repeated password.
func Registration(reg domain.Registration, confirm string) *Errors {
	errs := &Errors{}
	if Blank(reg.Username) {
		errs.Add("username", KeyRequired)
	}
	switch {
	case Blank(reg.Email):
		errs.Add("email", KeyRequired)
	case !Email(reg.Email):
		errs.Add("email", KeyEmail)
	}
	switch {
	case reg.Password == "":
		errs.Add("password", KeyRequired)
	case !Password(reg.Password):
		errs.Add("password", KeyPasswordLength)
	}
	if confirm != reg.Password {
		errs.Add("confirmPassword", KeyPasswordConfirm)
	}
	if !Blank(reg.Phone) && !Phone(reg.Phone) {
		errs.Add("phone", KeyPhone)
	}
	return errs
}

// Checkout checks the shipping form.
func Checkout(address, phone string) *Errors {
	errs := &Errors{}
	if Blank(address) {
		errs.Add("shippingAddress", KeyRequired)
	}
	switch {
	case Blank(phone):
		errs.Add("phone", KeyRequired)
	case !Phone(phone):
		errs.Add("phone", KeyPhone)
	}
	return errs
}

// Invitation checks the basic invitation form.
func Invitation(inv domain.CustomInvitation) *Errors {
	errs := &Errors{}
	if Blank(inv.GroomName) {
		errs.Add("groomName", KeyRequired)
	}
	if Blank(inv.BrideName) {
		errs.Add("brideName", KeyRequired)
	}
	if Blank(inv.WeddingDate) {
		errs.Add("weddingDate", KeyRequired)
	}
	return errs
}
