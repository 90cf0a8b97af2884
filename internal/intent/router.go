package intent

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Router classifies utterances against an immutable Catalog.
type Router struct {
	catalog *Catalog
	now     func() time.Time
}

// NewRouter returns a Router bound to c. A nil catalog selects DefaultCatalog.
func NewRouter(c *Catalog) *Router {
	if c == nil {
		c = DefaultCatalog()
	}
	return &Router{catalog: c, now: time.Now}
}

// Normalize lower-cases and trims text the way Classify does.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Classify runs the exact, pattern and keyword tiers in order and returns the
// first match. It never fails: unmatched input yields KindUnknown with
// confidence 0 and whatever entities the entity patterns find.
func (r *Router) Classify(text string) Record {
	text = Normalize(text)
	rec := Record{
		Kind:      KindUnknown,
		Tier:      TierFallback,
		RawText:   text,
		CreatedAt: r.now(),
	}

	if p, ok := r.matchExact(text); ok {
		rec.Kind = p.kind
		rec.Subtype = p.subtype
		rec.Tier = TierExact
		rec.Confidence = ExactConfidence
		return rec
	}

	if kind, groups, ratio, ok := r.matchPattern(text); ok {
		rec.Kind = kind
		rec.Tier = TierPattern
		rec.Confidence = PatternConfidence
		rec.MatchScore = ratio
		rec.Slots = extractSlots(kind, groups)
		return rec
	}

	if kind, ok := r.matchKeywords(text); ok {
		rec.Kind = kind
		rec.Tier = TierKeyword
		rec.Confidence = KeywordConfidence
		return rec
	}

	rec.Entities = r.entities(text)
	return rec
}

func (r *Router) matchExact(text string) (phrase, bool) {
	for _, p := range r.catalog.exact {
		if p.text == text {
			return p, true
		}
	}
	return phrase{}, false
}

// matchPattern evaluates every pattern and keeps the one covering the largest
// share of the text. Only a strictly larger share replaces the current best,
// so ties go to the earliest pattern in catalog order.
func (r *Router) matchPattern(text string) (Kind, []string, float64, bool) {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return "", nil, 0, false
	}

	var (
		bestKind   Kind
		bestGroups []string
		bestRatio  float64
		found      bool
	)
	for _, p := range r.catalog.patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		ratio := float64(utf8.RuneCountInString(m[0])) / float64(total)
		if ratio > bestRatio {
			bestKind, bestGroups, bestRatio, found = p.kind, m[1:], ratio, true
		}
	}
	return bestKind, bestGroups, bestRatio, found
}

func (r *Router) matchKeywords(text string) (Kind, bool) {
	var (
		bestKind  Kind
		bestScore float64
	)
	for _, ks := range r.catalog.keywords {
		hits := 0
		for _, kw := range ks.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(len(ks.keywords))
		if score > bestScore {
			bestKind, bestScore = ks.kind, score
		}
	}
	if bestKind == "" || bestScore <= KeywordThreshold {
		return "", false
	}
	return bestKind, true
}

// extractSlots applies the per-kind slot rule to a winning pattern's groups.
// Kinds without a rule get no slots.
func extractSlots(kind Kind, groups []string) Slots {
	slots := Slots{}
	switch kind {
	case KindTypeText:
		if len(groups) > 0 {
			slots[SlotText] = strings.TrimSpace(groups[0])
		}
	case KindClick, KindMoveMouse:
		if len(groups) >= 2 {
			x, errX := strconv.Atoi(groups[0])
			y, errY := strconv.Atoi(groups[1])
			if errX == nil && errY == nil {
				slots[SlotX] = x
				slots[SlotY] = y
			}
		}
	case KindSearchWeb:
		if len(groups) > 0 {
			slots[SlotQuery] = strings.TrimSpace(groups[len(groups)-1])
		}
	case KindOpenApp:
		if len(groups) > 0 {
			slots[SlotAppName] = strings.TrimSpace(groups[0])
		}
	case KindFileOperation:
		if len(groups) > 0 {
			slots[SlotOperation] = strings.TrimSpace(groups[0])
			if len(groups) > 1 {
				slots[SlotTarget] = strings.TrimSpace(groups[1])
			}
		}
	}
	if len(slots) == 0 {
		return nil
	}
	return slots
}

// ExtractEntities normalizes text and returns, per entity kind with at least
// one hit, every non-overlapping match in order.
func (r *Router) ExtractEntities(text string) map[string][]string {
	return r.entities(Normalize(text))
}

func (r *Router) entities(text string) map[string][]string {
	out := map[string][]string{}
	for _, e := range r.catalog.entities {
		if matches := e.re.FindAllString(text, -1); len(matches) > 0 {
			out[e.name] = matches
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Describe returns the human-readable description of kind.
func (r *Router) Describe(kind Kind) string {
	if d, ok := r.catalog.descriptions[kind]; ok {
		return d
	}
	return "Unknown intent"
}

// SuggestedActions returns follow-up suggestions for kind, or an empty slice.
func (r *Router) SuggestedActions(kind Kind) []string {
	return r.catalog.SuggestedActions(kind)
}

// SuggestedActions returns a copy of the suggestion list for kind.
func (c *Catalog) SuggestedActions(kind Kind) []string {
	s := c.suggestions[kind]
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Kinds lists every kind that has a pattern or keyword entry, in catalog order.
func (r *Router) Kinds() []Kind {
	seen := map[Kind]bool{}
	var kinds []Kind
	add := func(k Kind) {
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	for _, p := range r.catalog.patterns {
		add(p.kind)
	}
	for _, ks := range r.catalog.keywords {
		add(ks.kind)
	}
	return kinds
}
