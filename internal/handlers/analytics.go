package handlers

// Analytics switches on the GA4 snippet in the layout.
type Analytics struct {
	GA4MeasurementID string
	Debug            bool
}

// Enabled reports whether the tag should be emitted.
func (a Analytics) Enabled() bool { return a.GA4MeasurementID != "" }
