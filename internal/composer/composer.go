// Package composer assembles the grounding context handed to the generator.
package composer

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/rcliao/deskmate/internal/collab"
	"github.com/rcliao/deskmate/internal/intent"
	"github.com/rcliao/deskmate/internal/memory"
	"github.com/rcliao/deskmate/internal/model"
	"github.com/rcliao/deskmate/internal/store"
)

// MemorySource is the slice of the memory manager the composer reads.
type MemorySource interface {
	Search(ctx context.Context, query string, category model.Category, limit int) ([]store.SearchResult, error)
	Buffer(n int) []memory.BufferEntry
}

// Describer maps an intent kind to a human-readable description.
type Describer interface {
	Describe(kind intent.Kind) string
}

// Options tunes how much memory goes into the context.
type Options struct {
	// Results caps both the relevant-memory and recent-buffer sections.
	Results int
	// PreviewLength truncates each memory line, in characters.
	PreviewLength int
}

// DefaultOptions returns 5 results with 200-character previews.
func DefaultOptions() Options {
	return Options{Results: 5, PreviewLength: 200}
}

// Turn is what the composer needs to know about the current turn.
type Turn struct {
	Query       string
	Kind        intent.Kind
	Observation string
	ToolResult  string
}

// Composer builds context strings.
type Composer struct {
	mem    MemorySource
	desc   Describer
	opts   Options
	logger zerolog.Logger
}

// New creates a Composer. Zero option fields take their defaults.
func New(mem MemorySource, desc Describer, opts Options, logger zerolog.Logger) *Composer {
	def := DefaultOptions()
	if opts.Results <= 0 {
		opts.Results = def.Results
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = def.PreviewLength
	}
	return &Composer{
		mem:    mem,
		desc:   desc,
		opts:   opts,
		logger: logger.With().Str("component", "composer").Logger(),
	}
}

// Memory renders the memory portion of the context: relevant past
// conversations followed by the recent buffer. It is empty when both are.
func (c *Composer) Memory(ctx context.Context, query string) string {
	var parts []string

	relevant, err := c.mem.Search(ctx, query, model.CategoryConversation, c.opts.Results)
	if err != nil {
		c.logger.Warn().Err(err).Msg("memory search failed; omitting relevant conversations")
	}
	if len(relevant) > 0 {
		parts = append(parts, "Relevant past conversations:")
		parts = append(parts, lo.Map(relevant, func(r store.SearchResult, _ int) string {
			return c.previewLine(r.Content)
		})...)
	}

	if recent := c.mem.Buffer(c.opts.Results); len(recent) > 0 {
		parts = append(parts, "\nRecent conversation:")
		parts = append(parts, lo.Map(recent, func(e memory.BufferEntry, _ int) string {
			return c.previewLine(e.Content)
		})...)
	}

	return strings.Join(parts, "\n")
}

// Build renders the full context for a turn. Sections appear in order:
// memory, live observation, tool result, detected intent. Empty sections are
// omitted; the intent section is always present.
func (c *Composer) Build(ctx context.Context, t Turn) string {
	var sections []string

	if mem := c.Memory(ctx, t.Query); mem != "" {
		sections = append(sections, "Memory Context:\n"+mem)
	}
	if obs := strings.TrimSpace(t.Observation); obs != "" && obs != collab.NoScene {
		sections = append(sections, "Current Webcam: "+obs)
	}
	if t.ToolResult != "" {
		sections = append(sections, "Tool Result: "+t.ToolResult)
	}
	sections = append(sections, "Detected Intent: "+c.desc.Describe(t.Kind))

	return strings.Join(sections, "\n\n")
}

func (c *Composer) previewLine(content string) string {
	return "- " + Preview(content, c.opts.PreviewLength) + "..."
}

// Preview returns at most n characters of s.
func Preview(s string, n int) string {
	return lo.Substring(s, 0, uint(n))
}
