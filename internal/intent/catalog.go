// Package intent classifies free-form utterances into assistant intents.
package intent

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Kind is the classified purpose of an utterance.
type Kind string

const (
	KindScreenRead        Kind = "screen_read"
	KindWebcamAnalyze     Kind = "webcam_analyze"
	KindTypeText          Kind = "type_text"
	KindClick             Kind = "click"
	KindMoveMouse         Kind = "move_mouse"
	KindSearchWeb         Kind = "search_web"
	KindOpenApp           Kind = "open_app"
	KindFileOperation     Kind = "file_operation"
	KindSystemControl     Kind = "system_control"
	KindMemoryQuery       Kind = "memory_query"
	KindPreferenceSetting Kind = "preference_setting"
	KindHelpRequest       Kind = "help_request"
	KindGeneralChat       Kind = "general_chat"
	KindUnknown           Kind = "unknown"
)

// Tier confidences and the keyword cut-off.
const (
	ExactConfidence   = 1.0
	PatternConfidence = 0.8
	KeywordConfidence = 0.6
	KeywordThreshold  = 0.3
)

// PhraseSpec maps one literal utterance to a kind.
type PhraseSpec struct {
	Text    string `yaml:"text"`
	Kind    Kind   `yaml:"kind"`
	Subtype string `yaml:"subtype,omitempty"`
}

// PatternSpec is the ordered regular expression list for one kind.
type PatternSpec struct {
	Kind     Kind     `yaml:"kind"`
	Patterns []string `yaml:"patterns"`
}

// KeywordSpec is the keyword set for one kind.
type KeywordSpec struct {
	Kind     Kind     `yaml:"kind"`
	Keywords []string `yaml:"keywords"`
}

// EntitySpec names one entity pattern.
type EntitySpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// Spec is the uncompiled, serializable form of a Catalog. Slices are ordered;
// pattern ties resolve to the earliest entry.
type Spec struct {
	Exact        []PhraseSpec      `yaml:"exact"`
	Patterns     []PatternSpec     `yaml:"patterns"`
	Keywords     []KeywordSpec     `yaml:"keywords"`
	Entities     []EntitySpec      `yaml:"entities"`
	Descriptions map[Kind]string   `yaml:"descriptions"`
	Suggestions  map[Kind][]string `yaml:"suggestions"`
}

// DefaultSpec returns the built-in catalog definition.
func DefaultSpec() Spec {
	return Spec{
		Exact: []PhraseSpec{
			{Text: "what's on my screen", Kind: KindScreenRead},
			{Text: "read screen", Kind: KindScreenRead},
			{Text: "take screenshot", Kind: KindScreenRead},
			{Text: "what do you see", Kind: KindWebcamAnalyze},
			{Text: "camera view", Kind: KindWebcamAnalyze},
			{Text: "help", Kind: KindHelpRequest},
			{Text: "what can you do", Kind: KindHelpRequest},
			{Text: "goodbye", Kind: KindGeneralChat, Subtype: "farewell"},
			{Text: "thank you", Kind: KindGeneralChat, Subtype: "gratitude"},
		},
		Patterns: []PatternSpec{
			{Kind: KindScreenRead, Patterns: []string{
				`(what|show|tell).*(on|in).*(screen|display)`,
				`(read|scan).*(screen|display)`,
				`(what).*(see|visible)`,
				`(screen|display).*(content|text|information)`,
			}},
			{Kind: KindWebcamAnalyze, Patterns: []string{
				`(what|show|tell).*(see|visible).*(camera|webcam)`,
				`(analyze|check).*(camera|webcam|video)`,
				`(who|what).*(front|back).*(camera)`,
				`(camera|webcam).*(scene|view)`,
			}},
			{Kind: KindTypeText, Patterns: []string{
				`type\s*[:.]?\s*(.+)`,
				`write\s*[:.]?\s*(.+)`,
				`enter\s*[:.]?\s*(.+)`,
				`input\s*[:.]?\s*(.+)`,
			}},
			{Kind: KindClick, Patterns: []string{
				`click\s+(?:at\s+)?(\d+)\s*[,.]?\s*(\d+)`,
				`click\s+(?:position\s+)?(\d+)\s*[,.]?\s*(\d+)`,
				`click\s+(?:coordinates\s+)?(\d+)\s*[,.]?\s*(\d+)`,
			}},
			{Kind: KindMoveMouse, Patterns: []string{
				`move\s+(?:mouse\s+)?(?:to\s+)?(\d+)\s*[,.]?\s*(\d+)`,
				`position\s+(?:mouse\s+)?(?:at\s+)?(\d+)\s*[,.]?\s*(\d+)`,
				`go\s+(?:to\s+)?(\d+)\s*[,.]?\s*(\d+)`,
			}},
			{Kind: KindSearchWeb, Patterns: []string{
				`(search|find|look\s+up).*(?:for\s+)?(.+)`,
				`(google|bing|search\s+engine).*(.+)`,
				`(web\s+search|internet\s+search).*(.+)`,
			}},
			{Kind: KindOpenApp, Patterns: []string{
				`open\s+(.+)`,
				`launch\s+(.+)`,
				`start\s+(.+)`,
				`run\s+(.+)`,
			}},
			{Kind: KindFileOperation, Patterns: []string{
				`(create|make|new)\s+(file|document|folder).*(.+)`,
				`(save|store)\s+(.+)`,
				`(delete|remove)\s+(.+)`,
				`(copy|duplicate)\s+(.+)`,
			}},
			{Kind: KindSystemControl, Patterns: []string{
				`(shutdown|turn\s+off|power\s+down)`,
				`(restart|reboot)`,
				`(sleep|suspend)`,
				`(volume|sound|mute|unmute)`,
				`(brightness|screen\s+brightness)`,
			}},
			{Kind: KindMemoryQuery, Patterns: []string{
				`(remember|recall|what\s+did).*(we\s+talk|conversation)`,
				`(history|past|previous).*(conversation|talk)`,
				`(memory|memories).*(search|find)`,
			}},
			{Kind: KindPreferenceSetting, Patterns: []string{
				`(set|change|update).*(preference|setting)`,
				`(voice|speech|tts).*(rate|speed|volume)`,
				`(camera|webcam).*(resolution|quality)`,
			}},
			{Kind: KindHelpRequest, Patterns: []string{
				`(help|assist|support)`,
				`(what\s+can\s+you\s+do|capabilities|features)`,
				`(how\s+to|instructions|guide)`,
			}},
			{Kind: KindGeneralChat, Patterns: []string{
				`(hello|hi|hey|greetings)`,
				`(how\s+are\s+you|how\s+you\s+doing)`,
				`(thank\s+you|thanks|appreciate)`,
				`(goodbye|bye|see\s+you|later)`,
			}},
		},
		Keywords: []KeywordSpec{
			{Kind: KindScreenRead, Keywords: []string{"screen", "display", "read", "what", "see", "visible"}},
			{Kind: KindWebcamAnalyze, Keywords: []string{"camera", "webcam", "video", "photo", "picture"}},
			{Kind: KindTypeText, Keywords: []string{"type", "write", "enter", "input", "text"}},
			{Kind: KindClick, Keywords: []string{"click", "tap", "press", "select"}},
			{Kind: KindMoveMouse, Keywords: []string{"move", "position", "go", "mouse", "cursor"}},
			{Kind: KindSearchWeb, Keywords: []string{"search", "find", "google", "look", "web"}},
			{Kind: KindOpenApp, Keywords: []string{"open", "launch", "start", "run", "app", "program"}},
			{Kind: KindFileOperation, Keywords: []string{"file", "document", "folder", "save", "delete", "copy"}},
			{Kind: KindSystemControl, Keywords: []string{"shutdown", "restart", "volume", "brightness", "system"}},
			{Kind: KindMemoryQuery, Keywords: []string{"remember", "recall", "history", "memory", "past"}},
			{Kind: KindPreferenceSetting, Keywords: []string{"preference", "setting", "configure", "voice", "camera"}},
			{Kind: KindHelpRequest, Keywords: []string{"help", "assist", "support", "how", "what"}},
			{Kind: KindGeneralChat, Keywords: []string{"hello", "hi", "how", "thank", "goodbye", "bye"}},
		},
		Entities: []EntitySpec{
			{Name: "coordinates", Pattern: `(\d+)\s*[,.]?\s*(\d+)`},
			{Name: "url", Pattern: `https?://[^\s]+`},
			{Name: "email", Pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`},
			{Name: "phone", Pattern: `\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`},
			{Name: "time", Pattern: `\b\d{1,2}:\d{2}\s*(?:AM|PM)?\b`},
			{Name: "date", Pattern: `\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`},
		},
		Descriptions: map[Kind]string{
			KindScreenRead:        "Read and analyze screen content",
			KindWebcamAnalyze:     "Analyze webcam feed",
			KindTypeText:          "Type text input",
			KindClick:             "Click at coordinates",
			KindMoveMouse:         "Move mouse cursor",
			KindSearchWeb:         "Search the web",
			KindOpenApp:           "Open application",
			KindFileOperation:     "Perform file operations",
			KindSystemControl:     "Control system settings",
			KindMemoryQuery:       "Query conversation history",
			KindPreferenceSetting: "Change user preferences",
			KindHelpRequest:       "Request help or information",
			KindGeneralChat:       "General conversation",
			KindUnknown:           "Unknown or unclear intent",
		},
		Suggestions: map[Kind][]string{
			KindScreenRead:    {"Take a screenshot", "Extract text from screen", "Analyze screen content"},
			KindWebcamAnalyze: {"Capture webcam frame", "Detect faces in view", "Analyze scene content"},
			KindTypeText:      {"Extract text to type", "Confirm text content", "Execute typing action"},
			KindClick:         {"Validate coordinates", "Execute click action", "Provide feedback"},
			KindHelpRequest:   {"Show available commands", "Explain capabilities", "Provide usage examples"},
		},
	}
}

// LoadSpec reads a catalog definition from a YAML file.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied catalog path
	if err != nil {
		return Spec{}, fmt.Errorf("read catalog: %w", err)
	}
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Spec{}, fmt.Errorf("parse catalog: %w", err)
	}
	return s, nil
}

type phrase struct {
	text    string
	kind    Kind
	subtype string
}

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

type keywordSet struct {
	kind     Kind
	keywords []string
}

type entityPattern struct {
	name string
	re   *regexp.Regexp
}

// Catalog is the compiled, read-only pattern catalog a Router classifies
// against. Build one with Compile; it is safe for concurrent use.
type Catalog struct {
	exact        []phrase
	patterns     []pattern
	keywords     []keywordSet
	entities     []entityPattern
	descriptions map[Kind]string
	suggestions  map[Kind][]string
}

// Compile validates and compiles s. All patterns match case-insensitively.
func Compile(s Spec) (*Catalog, error) {
	c := &Catalog{
		descriptions: make(map[Kind]string, len(s.Descriptions)),
		suggestions:  make(map[Kind][]string, len(s.Suggestions)),
	}
	seen := make(map[string]bool, len(s.Exact))
	for _, p := range s.Exact {
		if seen[p.Text] {
			return nil, fmt.Errorf("duplicate exact phrase %q", p.Text)
		}
		seen[p.Text] = true
		c.exact = append(c.exact, phrase{text: p.Text, kind: p.Kind, subtype: p.Subtype})
	}
	for _, ps := range s.Patterns {
		for _, expr := range ps.Patterns {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return nil, fmt.Errorf("compile %s pattern %q: %w", ps.Kind, expr, err)
			}
			c.patterns = append(c.patterns, pattern{kind: ps.Kind, re: re})
		}
	}
	for _, ks := range s.Keywords {
		if len(ks.Keywords) == 0 {
			continue
		}
		words := make([]string, len(ks.Keywords))
		copy(words, ks.Keywords)
		c.keywords = append(c.keywords, keywordSet{kind: ks.Kind, keywords: words})
	}
	for _, es := range s.Entities {
		re, err := regexp.Compile("(?i)" + es.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile entity %s: %w", es.Name, err)
		}
		c.entities = append(c.entities, entityPattern{name: es.Name, re: re})
	}
	for k, v := range s.Descriptions {
		c.descriptions[k] = v
	}
	for k, v := range s.Suggestions {
		c.suggestions[k] = append([]string(nil), v...)
	}
	return c, nil
}

// DefaultCatalog compiles DefaultSpec. The built-in expressions are known to
// compile, so failure is a programming error.
func DefaultCatalog() *Catalog {
	c, err := Compile(DefaultSpec())
	if err != nil {
		panic(err)
	}
	return c
}
