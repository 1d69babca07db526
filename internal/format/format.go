package format

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Layouts used across the site.
const (
	DateLayout     = "02/01/2006"
	TimeLayout     = "15:04"
	DateTimeLayout = "02/01/2006 15:04"
)

var (
	printersMu sync.Mutex
	printers   = map[string]*message.Printer{}
)

func printer(lang string) *message.Printer {
	tag := language.Vietnamese
	if strings.EqualFold(lang, "en") {
		tag = language.English
	}
	key := tag.String()
	printersMu.Lock()
	defer printersMu.Unlock()
	p, ok := printers[key]
	if !ok {
		p = message.NewPrinter(tag)
		printers[key] = p
	}
	return p
}

// FmtVND formats whole dong with locale digit grouping.
// Example: FmtVND(150000, "vi") => "150.000 ₫"
func FmtVND(amount int64, lang string) string {
	return printer(lang).Sprintf("%d", amount) + " ₫"
}

// FmtDate formats t as DD/MM/YYYY. Zero times format as "".
func FmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FmtDateTime formats t as DD/MM/YYYY HH:mm.
func FmtDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}

var dateInputs = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", DateLayout}

// DateString reformats an API date (ISO or DD/MM/YYYY) for display. Unparseable input is returned trimmed.
func DateString(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if t, ok := parseAPITime(raw); ok {
		return FmtDate(t)
	}
	return raw
}

// DateTimeString is DateString with the time of day, for timestamps such as order creation.
func DateTimeString(raw string) string {
	raw = strings.TrimSpace(raw)
	if t, ok := parseAPITime(raw); ok {
		return FmtDateTime(t)
	}
	return raw
}

func parseAPITime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateInputs {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimeString reformats "HH:mm:ss" or "HH:mm" as HH:mm.
func TimeString(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05", TimeLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(TimeLayout)
		}
	}
	return raw
}

// WeddingNames joins the couple's names, tolerating either being blank.
func WeddingNames(groom, bride string) string {
	groom, bride = strings.TrimSpace(groom), strings.TrimSpace(bride)
	switch {
	case groom == "":
		return bride
	case bride == "":
		return groom
	}
	return groom + " & " + bride
}

// Truncate shortens text to max runes, appending "...".
func Truncate(text string, max int) string {
	r := []rune(text)
	if max <= 0 || len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}

// Slug lowercases s, strips Vietnamese diacritics and joins words with hyphens.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r == 'đ':
			r = 'd'
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case unicode.IsSpace(r) || r == '-':
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
			continue
		default:
			continue
		}
		b.WriteRune(r)
		dash = false
	}
	return strings.TrimSuffix(b.String(), "-")
}

// OrderStatus describes how an order status is shown.
type OrderStatus struct {
	Key  string
	Tone string
}

var orderStatuses = map[string]OrderStatus{
	"PENDING":   {Key: "order.status.pending", Tone: "warning"},
	"CONFIRMED": {Key: "order.status.confirmed", Tone: "info"},
	"PRINTING":  {Key: "order.status.printing", Tone: "primary"},
	"SHIPPING":  {Key: "order.status.shipping", Tone: "primary"},
	"COMPLETED": {Key: "order.status.completed", Tone: "success"},
	"CANCELLED": {Key: "order.status.cancelled", Tone: "danger"},
}

// StatusOf returns the label key and tone for an order status. Unknown statuses keep their raw value as Key.
func StatusOf(status string) OrderStatus {
	if s, ok := orderStatuses[strings.ToUpper(strings.TrimSpace(status))]; ok {
		return s
	}
	return OrderStatus{Key: status, Tone: "secondary"}
}
