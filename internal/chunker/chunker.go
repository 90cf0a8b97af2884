// Package chunker splits assistant output into segments small enough to
// hand to a speech synthesizer or a keystroke injector one at a time.
package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultTargetSize = 200
	DefaultMaxSize    = 300
)

// Options configures chunking behavior. Sizes are in characters.
type Options struct {
	TargetSize int
	MaxSize    int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MaxSize:    DefaultMaxSize,
	}
}

// Chunk splits text into segments. Paragraph breaks and headings always end
// a segment; sentences within a paragraph are merged up to TargetSize, and
// anything longer than MaxSize is split on word boundaries. Short text
// (<= MaxSize, single paragraph) returns a single segment.
func Chunk(text string, opts Options) []string {
	if opts.TargetSize == 0 {
		opts = DefaultOptions()
	}
	if opts.MaxSize < opts.TargetSize {
		opts.MaxSize = opts.TargetSize
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	for _, b := range splitBlocks(text) {
		if size(b) <= opts.MaxSize {
			out = append(out, b)
			continue
		}
		out = append(out, mergeSentences(splitSentences(b), opts)...)
	}
	return out
}

// ForSpeech strips markdown emphasis and list markers so a synthesizer does
// not read them aloud, then chunks the result.
func ForSpeech(text string, opts Options) []string {
	return Chunk(StripMarkdown(text), opts)
}

// StripMarkdown removes emphasis markers, inline code ticks, heading hashes
// and bullet markers.
func StripMarkdown(text string) string {
	r := strings.NewReplacer("**", "", "__", "", "`", "")
	lines := strings.Split(r.Replace(text), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimLeft(trimmed, "#")
		for _, bullet := range []string{"- ", "* ", "+ "} {
			trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), bullet)
		}
		lines[i] = strings.TrimSpace(trimmed)
	}
	return strings.Join(lines, "\n")
}

func size(s string) int { return utf8.RuneCountInString(s) }

// splitBlocks splits text on heading lines and blank lines, joining the
// remaining lines of a block with spaces.
func splitBlocks(text string) []string {
	var blocks []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		if t := strings.TrimSpace(strings.Join(current, " ")); t != "" {
			blocks = append(blocks, t)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "#"):
			flush()
			current = append(current, trimmed)
			flush()
		default:
			current = append(current, trimmed)
		}
	}
	flush()

	return blocks
}

// splitSentences breaks a block after '.', '!' or '?' followed by a space.
func splitSentences(block string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(block)-1; i++ {
		switch block[i] {
		case '.', '!', '?':
			if block[i+1] == ' ' {
				sentences = append(sentences, strings.TrimSpace(block[start:i+1]))
				start = i + 2
			}
		}
	}
	if rest := strings.TrimSpace(block[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// mergeSentences combines short sentences and splits oversized ones.
func mergeSentences(sentences []string, opts Options) []string {
	var results []string
	var accum string

	flushAccum := func() {
		t := strings.TrimSpace(accum)
		if t == "" {
			return
		}
		if size(t) > opts.MaxSize {
			results = append(results, hardSplit(t, opts)...)
		} else {
			results = append(results, t)
		}
		accum = ""
	}

	for _, s := range sentences {
		if accum == "" {
			accum = s
			continue
		}
		combined := accum + " " + s
		if size(combined) <= opts.TargetSize {
			accum = combined
		} else {
			flushAccum()
			accum = s
		}
	}
	flushAccum()

	return results
}

// hardSplit breaks text that exceeds MaxSize on word boundaries. A single
// word longer than TargetSize is cut at TargetSize characters.
func hardSplit(text string, opts Options) []string {
	var results []string
	var current []string
	curLen := 0

	flush := func() {
		if len(current) > 0 {
			results = append(results, strings.Join(current, " "))
		}
		current = nil
		curLen = 0
	}

	for _, word := range strings.Fields(text) {
		for size(word) > opts.TargetSize {
			flush()
			runes := []rune(word)
			results = append(results, string(runes[:opts.TargetSize]))
			word = string(runes[opts.TargetSize:])
		}
		wordLen := size(word)
		if curLen+wordLen > opts.TargetSize && len(current) > 0 {
			flush()
		}
		current = append(current, word)
		curLen += wordLen + 1 // +1 for the joining space
	}
	flush()

	return results
}
