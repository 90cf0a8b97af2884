package intent

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	v := NewValidator(nil, DefaultLimits())

	tests := []struct {
		name      string
		rec       Record
		valid     bool
		warning   string
		suggested int
	}{
		{
			name:      "click out of bounds stays valid",
			rec:       Record{Kind: KindClick, Slots: Slots{SlotX: 5000, SlotY: 100}},
			valid:     true,
			warning:   "Coordinates may be outside screen bounds",
			suggested: 3,
		},
		{
			name:      "click in bounds",
			rec:       Record{Kind: KindClick, Slots: Slots{SlotX: 3000, SlotY: 2000}},
			valid:     true,
			suggested: 3,
		},
		{
			name:      "click negative",
			rec:       Record{Kind: KindClick, Slots: Slots{SlotX: -1, SlotY: 10}},
			valid:     true,
			warning:   "Coordinates may be outside screen bounds",
			suggested: 3,
		},
		{
			name:      "click missing y",
			rec:       Record{Kind: KindClick, Slots: Slots{SlotX: 10}},
			valid:     false,
			warning:   "Missing coordinates for click action",
			suggested: 3,
		},
		{
			name:      "type empty",
			rec:       Record{Kind: KindTypeText, Slots: Slots{SlotText: ""}},
			valid:     false,
			warning:   "No text specified for typing",
			suggested: 3,
		},
		{
			name:      "type absent",
			rec:       Record{Kind: KindTypeText},
			valid:     false,
			warning:   "No text specified for typing",
			suggested: 3,
		},
		{
			name:      "type long",
			rec:       Record{Kind: KindTypeText, Slots: Slots{SlotText: strings.Repeat("a", 1001)}},
			valid:     true,
			warning:   "Text is very long, consider breaking it up",
			suggested: 3,
		},
		{
			name:    "search without query",
			rec:     Record{Kind: KindSearchWeb},
			valid:   false,
			warning: "No search query specified",
		},
		{
			name:  "search with query",
			rec:   Record{Kind: KindSearchWeb, Slots: Slots{SlotQuery: "go"}},
			valid: true,
		},
		{
			name:  "unknown is valid",
			rec:   Record{Kind: KindUnknown},
			valid: true,
		},
		{
			name:      "help has suggestions",
			rec:       Record{Kind: KindHelpRequest},
			valid:     true,
			suggested: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.rec)
			if res.IsValid != tt.valid {
				t.Errorf("is_valid = %v, want %v", res.IsValid, tt.valid)
			}
			if tt.warning == "" && len(res.Warnings) != 0 {
				t.Errorf("unexpected warnings %v", res.Warnings)
			}
			if tt.warning != "" && (len(res.Warnings) != 1 || res.Warnings[0] != tt.warning) {
				t.Errorf("warnings = %v, want [%q]", res.Warnings, tt.warning)
			}
			if len(res.Suggestions) != tt.suggested {
				t.Errorf("suggestions = %v, want %d entries", res.Suggestions, tt.suggested)
			}
		})
	}
}

func TestValidate_CustomLimits(t *testing.T) {
	v := NewValidator(nil, Limits{MaxX: 800, MaxY: 600, MaxTextLength: 5})
	res := v.Validate(Record{Kind: KindClick, Slots: Slots{SlotX: 900, SlotY: 10}})
	if !res.IsValid || len(res.Warnings) != 1 {
		t.Errorf("got %+v, want valid with bounds warning", res)
	}
	res = v.Validate(Record{Kind: KindTypeText, Slots: Slots{SlotText: "abcdef"}})
	if !res.IsValid || len(res.Warnings) != 1 {
		t.Errorf("got %+v, want valid with length warning", res)
	}
}

func TestValidate_DoesNotMutateRecord(t *testing.T) {
	v := NewValidator(nil, DefaultLimits())
	rec := NewRouter(nil).Classify("click 500 400")
	before := len(rec.Slots)
	v.Validate(rec)
	if len(rec.Slots) != before {
		t.Error("validate changed the record")
	}
}
