package preview

import (
	"net/url"
	"strings"
	"time"

	"thiepcuoi.vn/web/internal/domain"
)

// Wire formats for custom data.
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"

	// form input layouts (HTML date and time controls)
	formDateLayout = "2006-01-02"
	formTimeLayout = "15:04"
)

// Fields are the editor inputs. Zero dates and times mean unset.
type Fields struct {
	GroomName     string
	BrideName     string
	WeddingDate   time.Time
	WeddingTime   time.Time
	WeddingVenue  string
	CustomMessage string
}

// HasNames reports whether both names are filled in.
func (f Fields) HasNames() bool {
	return strings.TrimSpace(f.GroomName) != "" && strings.TrimSpace(f.BrideName) != ""
}

// CustomData converts fields into the render payload. Every key is present; unset values are "".
func CustomData(f Fields) map[string]string {
	data := map[string]string{
		domain.FieldGroomName:     strings.TrimSpace(f.GroomName),
		domain.FieldBrideName:     strings.TrimSpace(f.BrideName),
		domain.FieldWeddingDate:   "",
		domain.FieldWeddingTime:   "",
		domain.FieldWeddingVenue:  strings.TrimSpace(f.WeddingVenue),
		domain.FieldCustomMessage: strings.TrimSpace(f.CustomMessage),
	}
	if !f.WeddingDate.IsZero() {
		data[domain.FieldWeddingDate] = f.WeddingDate.Format(DateLayout)
	}
	if !f.WeddingTime.IsZero() {
		data[domain.FieldWeddingTime] = f.WeddingTime.Format(TimeLayout)
	}
	return data
}

// FieldsFromForm reads editor inputs. Dates accept YYYY-MM-DD or DD/MM/YYYY; unparsable values count as unset.
func FieldsFromForm(v url.Values) Fields {
	return Fields{
		GroomName:     strings.TrimSpace(v.Get("groom_name")),
		BrideName:     strings.TrimSpace(v.Get("bride_name")),
		WeddingDate:   parseDate(v.Get("wedding_date")),
		WeddingTime:   parseClock(v.Get("wedding_time")),
		WeddingVenue:  strings.TrimSpace(v.Get("wedding_venue")),
		CustomMessage: strings.TrimSpace(v.Get("custom_message")),
	}
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{formDateLayout, DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseClock(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{formTimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormDate formats a date for an HTML date input.
func FormDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(formDateLayout)
}

// FormTime formats a time for an HTML time input.
func FormTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(formTimeLayout)
}
