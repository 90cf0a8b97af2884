package intent

import (
	"time"
)

// Tier names the cascade stage that produced a Record.
type Tier string

const (
	TierExact    Tier = "exact"
	TierPattern  Tier = "pattern"
	TierKeyword  Tier = "keyword"
	TierFallback Tier = "fallback"
)

// Slot names.
const (
	SlotText      = "text"
	SlotX         = "x"
	SlotY         = "y"
	SlotQuery     = "query"
	SlotAppName   = "app_name"
	SlotOperation = "operation"
	SlotTarget    = "target"
)

// Slots holds intent-specific parameters. Values are either string or int;
// use the typed accessors rather than indexing.
type Slots map[string]any

// String returns the named string slot and whether it is present.
func (s Slots) String(name string) (string, bool) {
	v, ok := s[name].(string)
	return v, ok
}

// Int returns the named integer slot and whether it is present.
func (s Slots) Int(name string) (int, bool) {
	v, ok := s[name].(int)
	return v, ok
}

// Record is the result of classifying one utterance. For pattern-tier
// records MatchScore holds the winning match ratio; Confidence stays at the
// flat tier weight.
type Record struct {
	Kind       Kind                `json:"kind"`
	Subtype    string              `json:"subtype,omitempty"`
	Confidence float64             `json:"confidence"`
	Tier       Tier                `json:"tier"`
	MatchScore float64             `json:"match_score,omitempty"`
	Entities   map[string][]string `json:"entities,omitempty"`
	Slots      Slots               `json:"slots,omitempty"`
	RawText    string              `json:"raw_text"`
	CreatedAt  time.Time           `json:"created_at"`
}

// ValidationResult is advisory feedback about a Record.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}
