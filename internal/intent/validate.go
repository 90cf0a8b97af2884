package intent

import "unicode/utf8"

// Limits bounds what the validator accepts without warning.
type Limits struct {
	MaxX          int
	MaxY          int
	MaxTextLength int
}

// DefaultLimits is a nominal 3000x2000 screen and 1000-character typing cap.
func DefaultLimits() Limits {
	return Limits{MaxX: 3000, MaxY: 2000, MaxTextLength: 1000}
}

// Validator checks classified records for missing or suspicious slots.
type Validator struct {
	catalog *Catalog
	limits  Limits
}

// NewValidator returns a Validator drawing suggestions from c.
func NewValidator(c *Catalog, l Limits) *Validator {
	if c == nil {
		c = DefaultCatalog()
	}
	return &Validator{catalog: c, limits: l}
}

// Validate never mutates rec. An invalid result is advisory.
func (v *Validator) Validate(rec Record) ValidationResult {
	res := ValidationResult{IsValid: true, Warnings: []string{}}

	switch rec.Kind {
	case KindClick:
		x, okX := rec.Slots.Int(SlotX)
		y, okY := rec.Slots.Int(SlotY)
		if !okX || !okY {
			res.IsValid = false
			res.Warnings = append(res.Warnings, "Missing coordinates for click action")
		} else if x < 0 || x > v.limits.MaxX || y < 0 || y > v.limits.MaxY {
			res.Warnings = append(res.Warnings, "Coordinates may be outside screen bounds")
		}
	case KindTypeText:
		text, _ := rec.Slots.String(SlotText)
		if text == "" {
			res.IsValid = false
			res.Warnings = append(res.Warnings, "No text specified for typing")
		} else if utf8.RuneCountInString(text) > v.limits.MaxTextLength {
			res.Warnings = append(res.Warnings, "Text is very long, consider breaking it up")
		}
	case KindSearchWeb:
		if q, _ := rec.Slots.String(SlotQuery); q == "" {
			res.IsValid = false
			res.Warnings = append(res.Warnings, "No search query specified")
		}
	}

	res.Suggestions = v.catalog.SuggestedActions(rec.Kind)
	return res
}
