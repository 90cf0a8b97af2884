package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/deskmate/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"), "", zerolog.Nop())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, inserted, err := s.Add(ctx, AddParams{
		Category: model.CategoryObservation,
		Content:  "a terminal window",
		Metadata: map[string]string{"source": "screen"},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !inserted {
		t.Error("expected a new row")
	}
	if !strings.HasPrefix(mem.ID, "observation_") {
		t.Errorf("id %q should carry the category prefix", mem.ID)
	}

	got, err := s.Recent(ctx, RecentParams{Limit: 1})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Content != "a terminal window" || got[0].Category != model.CategoryObservation {
		t.Errorf("got %+v", got[0])
	}
	if got[0].Metadata["source"] != "screen" {
		t.Errorf("metadata = %v", got[0].Metadata)
	}
	if got[0].Metadata[model.MetaTimestamp] != mem.CreatedAt.Format(time.RFC3339Nano) {
		t.Errorf("timestamp metadata %q does not match created_at %v", got[0].Metadata[model.MetaTimestamp], mem.CreatedAt)
	}
}

func TestAdd_RejectsUnknownCategory(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Add(context.Background(), AddParams{Category: "bogus", Content: "x"}); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestAdd_IDsAreUniqueForIdenticalContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		m, inserted, err := s.Add(ctx, AddParams{Category: model.CategoryConversation, Content: "same"})
		if err != nil {
			t.Fatal(err)
		}
		if !inserted {
			t.Fatalf("entry %d was treated as a duplicate", i)
		}
		if seen[m.ID] {
			t.Fatalf("duplicate id %s", m.ID)
		}
		seen[m.ID] = true
	}
}

func mustID(t *testing.T, category model.Category, at time.Time, content string) string {
	t.Helper()
	id, err := memoryID(category, at, content)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestAdd_IDIsDeterministic(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	a := mustID(t, model.CategoryTask, at, "water plants")
	b := mustID(t, model.CategoryTask, at, "water plants")
	if a != b {
		t.Errorf("same inputs gave %s and %s", a, b)
	}
	if c := mustID(t, model.CategoryTask, at, "feed cat"); c == a {
		t.Error("different content should change the id")
	}
	if d := mustID(t, model.CategoryTask, at.Add(time.Nanosecond), "water plants"); d == a {
		t.Error("different time should change the id")
	}
}

func TestAdd_ExplicitTimestampDuplicateIsIgnored(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first, inserted, err := s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "go is fun", CreatedAt: at})
	if err != nil || !inserted {
		t.Fatalf("first add: inserted=%v err=%v", inserted, err)
	}
	second, inserted, err := s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "go is fun", CreatedAt: at})
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("re-adding the same entry should be a no-op")
	}
	if second.ID != first.ID {
		t.Errorf("ids differ: %s vs %s", first.ID, second.ID)
	}
}

func TestRecent_SortedNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Insert out of order.
	for _, offset := range []int{3, 1, 4, 0, 2} {
		_, _, err := s.Add(ctx, AddParams{
			Category:  model.CategoryAction,
			Content:   "step",
			CreatedAt: base.Add(time.Duration(offset) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(ctx, RecentParams{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].CreatedAt.After(got[i].CreatedAt) {
			t.Errorf("entry %d (%v) not newer than entry %d (%v)", i-1, got[i-1].CreatedAt, i, got[i].CreatedAt)
		}
	}
}

func TestRecent_CategoryFilterAndLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Add(ctx, AddParams{Category: model.CategoryAction, Content: "a1"})
	s.Add(ctx, AddParams{Category: model.CategoryObservation, Content: "o1"})
	s.Add(ctx, AddParams{Category: model.CategoryAction, Content: "a2"})
	s.Add(ctx, AddParams{Category: model.CategoryAction, Content: "a3"})

	got, err := s.Recent(ctx, RecentParams{Category: model.CategoryAction, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Content != "a3" || got[1].Content != "a2" {
		t.Errorf("got %+v", got)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	s.Add(ctx, AddParams{Category: model.CategoryConversation, Content: "old", CreatedAt: now.Add(-40 * 24 * time.Hour)})
	s.Add(ctx, AddParams{Category: model.CategoryConversation, Content: "new"})

	n, err := s.DeleteOlderThan(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
	got, _ := s.Recent(ctx, RecentParams{Limit: 10})
	if len(got) != 1 || got[0].Content != "new" {
		t.Errorf("remaining = %+v", got)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Add(ctx, AddParams{Category: model.CategoryConversation, Content: "User: hi"})
	s.Add(ctx, AddParams{Category: model.CategoryConversation, Content: "Assistant: hello"})
	s.Add(ctx, AddParams{Category: model.CategoryTask, Content: "ship it"})

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalMemories != 3 {
		t.Errorf("total = %d, want 3", st.TotalMemories)
	}
	if st.Categories["conversation"] != 2 || st.Categories["task"] != 1 {
		t.Errorf("categories = %v", st.Categories)
	}
	if st.DBPath != s.Path() {
		t.Errorf("db path = %q", st.DBPath)
	}
}

func TestExportAll_OldestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "first"})
	s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "second"})

	all, err := s.ExportAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Content != "first" {
		t.Errorf("export = %+v", all)
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	vec := []float32{0.25, -1, 3.5}
	s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "vec", Embedding: vec})

	got, _ := s.Recent(ctx, RecentParams{Limit: 1})
	if len(got) != 1 || len(got[0].Embedding) != 3 {
		t.Fatalf("got %+v", got)
	}
	for i := range vec {
		if got[0].Embedding[i] != vec[i] {
			t.Errorf("embedding[%d] = %v, want %v", i, got[0].Embedding[i], vec[i])
		}
	}
}

func TestNewSQLiteStore_RejectsBadCollection(t *testing.T) {
	_, err := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"), "drop table;", zerolog.Nop())
	if err == nil {
		t.Fatal("expected invalid collection error")
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")

	a, err := NewSQLiteStore(path, "alpha", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := NewSQLiteStore(path, "beta", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	a.Add(ctx, AddParams{Category: model.CategoryTask, Content: "only in alpha"})

	got, _ := b.Recent(ctx, RecentParams{Limit: 10})
	if len(got) != 0 {
		t.Errorf("beta sees %d entries", len(got))
	}
}

func TestAdd_RejectsTimeBeforeEpoch(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(1969, 7, 20, 20, 17, 0, 0, time.UTC)
	if _, _, err := s.Add(context.Background(), AddParams{Category: model.CategoryKnowledge, Content: "moon landing", CreatedAt: at}); err == nil {
		t.Error("expected an error for a pre-epoch creation time")
	}
	if _, err := memoryID(model.CategoryKnowledge, at, "moon landing"); err == nil {
		t.Error("memoryID should reject pre-epoch times")
	}
}

func TestAdd_TimestampMetadataFollowsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	mem, _, err := s.Add(ctx, AddParams{
		Category:  model.CategoryTask,
		Content:   "file taxes",
		Metadata:  map[string]string{model.MetaTimestamp: "2001-01-01T00:00:00Z"},
		CreatedAt: at,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := at.Format(time.RFC3339Nano)
	if mem.Metadata[model.MetaTimestamp] != want {
		t.Errorf("returned timestamp = %q, want %q", mem.Metadata[model.MetaTimestamp], want)
	}
	got, err := s.Recent(ctx, RecentParams{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Metadata[model.MetaTimestamp] != want || !got[0].CreatedAt.Equal(at) {
		t.Errorf("stored = %+v", got[0])
	}
}
