package composer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rcliao/deskmate/internal/collab"
	"github.com/rcliao/deskmate/internal/intent"
	"github.com/rcliao/deskmate/internal/memory"
	"github.com/rcliao/deskmate/internal/model"
	"github.com/rcliao/deskmate/internal/store"
)

type fakeMemory struct {
	results     []store.SearchResult
	buffer      []memory.BufferEntry
	err         error
	gotCategory model.Category
	gotLimit    int
}

func (f *fakeMemory) Search(_ context.Context, _ string, category model.Category, limit int) ([]store.SearchResult, error) {
	f.gotCategory, f.gotLimit = category, limit
	return f.results, f.err
}

func (f *fakeMemory) Buffer(n int) []memory.BufferEntry {
	if n > 0 && n < len(f.buffer) {
		return f.buffer[len(f.buffer)-n:]
	}
	return f.buffer
}

func result(content string) store.SearchResult {
	return store.SearchResult{Memory: model.Memory{Content: content}}
}

func entry(content string) memory.BufferEntry {
	return memory.BufferEntry{Content: content}
}

func newComposer(mem MemorySource, opts Options) *Composer {
	return New(mem, intent.NewRouter(nil), opts, zerolog.Nop())
}

func TestBuild_AllSectionsInOrder(t *testing.T) {
	mem := &fakeMemory{
		results: []store.SearchResult{result("User: my dog is Rex")},
		buffer:  []memory.BufferEntry{entry("User: hi"), entry("Assistant: hello")},
	}
	c := newComposer(mem, Options{})

	got := c.Build(context.Background(), Turn{
		Query:       "dog",
		Kind:        intent.KindScreenRead,
		Observation: "a person at a desk",
		ToolResult:  "Screen OCR:\nhello",
	})

	want := "Memory Context:\n" +
		"Relevant past conversations:\n" +
		"- User: my dog is Rex...\n" +
		"\nRecent conversation:\n" +
		"- User: hi...\n" +
		"- Assistant: hello...\n\n" +
		"Current Webcam: a person at a desk\n\n" +
		"Tool Result: Screen OCR:\nhello\n\n" +
		"Detected Intent: " + intent.NewRouter(nil).Describe(intent.KindScreenRead)
	if got != want {
		t.Errorf("Build =\n%s\n\nwant\n%s", got, want)
	}
	if mem.gotCategory != model.CategoryConversation || mem.gotLimit != 5 {
		t.Errorf("search called with %q, %d", mem.gotCategory, mem.gotLimit)
	}
}

func TestBuild_EmptySectionsOmitted(t *testing.T) {
	c := newComposer(&fakeMemory{}, Options{})
	got := c.Build(context.Background(), Turn{Query: "x", Kind: intent.KindUnknown})
	if got != "Detected Intent: Unknown or unclear intent" {
		t.Errorf("Build = %q", got)
	}
}

func TestBuild_SentinelObservationOmitted(t *testing.T) {
	c := newComposer(&fakeMemory{}, Options{})
	got := c.Build(context.Background(), Turn{Kind: intent.KindHelpRequest, Observation: collab.NoScene})
	if strings.Contains(got, "Current Webcam") {
		t.Errorf("sentinel leaked into context: %q", got)
	}
}

func TestMemory_TruncatesAndCaps(t *testing.T) {
	long := strings.Repeat("a", 300)
	var buf []memory.BufferEntry
	for i := 0; i < 8; i++ {
		buf = append(buf, entry("turn"))
	}
	mem := &fakeMemory{results: []store.SearchResult{result(long)}, buffer: buf}
	c := newComposer(mem, Options{Results: 3, PreviewLength: 10})

	got := c.Memory(context.Background(), "a")
	lines := strings.Split(got, "\n")
	if lines[1] != "- aaaaaaaaaa..." {
		t.Errorf("preview line = %q", lines[1])
	}
	if n := strings.Count(got, "- turn..."); n != 3 {
		t.Errorf("recent lines = %d, want 3", n)
	}
	if mem.gotLimit != 3 {
		t.Errorf("search limit = %d", mem.gotLimit)
	}
}

func TestMemory_SearchErrorKeepsBuffer(t *testing.T) {
	mem := &fakeMemory{err: errors.New("boom"), buffer: []memory.BufferEntry{entry("User: hi")}}
	c := newComposer(mem, Options{})
	got := c.Memory(context.Background(), "hi")
	if got != "\nRecent conversation:\n- User: hi..." {
		t.Errorf("Memory = %q", got)
	}
}

func TestBuild_WithRealManager(t *testing.T) {
	ctx := context.Background()
	m := memory.Open(filepath.Join(t.TempDir(), "memory.db"), "", memory.Options{Logger: zerolog.Nop()})
	defer m.Close()
	if err := m.AddConversation(ctx, "my favorite color is green", "noted"); err != nil {
		t.Fatal(err)
	}

	c := newComposer(m, Options{})
	got := c.Build(ctx, Turn{Query: "favorite color", Kind: intent.KindUnknown})
	if !strings.Contains(got, "Relevant past conversations:\n- User: my favorite color is green...") {
		t.Errorf("relevant section missing:\n%s", got)
	}
	if !strings.Contains(got, "Recent conversation:\n- User: my favorite color is green...\n- Assistant: noted...") {
		t.Errorf("recent section missing:\n%s", got)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("hello world", 5); got != "hello" {
		t.Errorf("Preview = %q", got)
	}
	if got := Preview("hi", 5); got != "hi" {
		t.Errorf("Preview = %q", got)
	}
}
