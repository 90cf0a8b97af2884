package store

import (
	"context"
	"testing"
	"time"

	"github.com/rcliao/deskmate/internal/model"
)

func TestSearch_EmptyStore(t *testing.T) {
	s := newTestStore(t)
	results, err := s.Search(context.Background(), SearchParams{Query: "anything", Limit: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestSearch_Lexical(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Add(ctx, AddParams{Category: model.CategoryConversation, Content: "User: Go is a compiled language with goroutines"})
	s.Add(ctx, AddParams{Category: model.CategoryConversation, Content: "User: Python is an interpreted language"})
	s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "Rust has a borrow checker"})

	results, err := s.Search(ctx, SearchParams{Query: "language", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Category filter
	results, err = s.Search(ctx, SearchParams{Query: "borrow", Category: model.CategoryConversation, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}

	// No results
	results, err = s.Search(ctx, SearchParams{Query: "javascript", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearch_RanksByTermOverlap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "the cat sat"})
	s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "the cat sat on the warm mat"})

	results, err := s.Search(ctx, SearchParams{Query: "warm cat", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Content != "the cat sat on the warm mat" {
		t.Errorf("best match = %q", results[0].Content)
	}
	if results[0].Distance >= results[1].Distance {
		t.Errorf("distances not ascending: %v, %v", results[0].Distance, results[1].Distance)
	}
}

func TestSearch_TiesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	s.Add(ctx, AddParams{Category: model.CategoryTask, Content: "review pr one", CreatedAt: base})
	s.Add(ctx, AddParams{Category: model.CategoryTask, Content: "review pr two", CreatedAt: base.Add(2 * time.Hour)})
	s.Add(ctx, AddParams{Category: model.CategoryTask, Content: "review pr three", CreatedAt: base.Add(time.Hour)})

	for i := 0; i < 3; i++ {
		results, err := s.Search(ctx, SearchParams{Query: "review", Limit: 3})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"review pr two", "review pr three", "review pr one"}
		for j, r := range results {
			if r.Content != want[j] {
				t.Fatalf("run %d: result %d = %q, want %q", i, j, r.Content, want[j])
			}
		}
	}
}

func TestSearch_Limit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for i := 0; i < 8; i++ {
		s.Add(ctx, AddParams{Category: model.CategoryConversation, Content: "User: hello again"})
	}
	results, err := s.Search(ctx, SearchParams{Query: "hello", Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestSearch_Vector(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "north", Embedding: []float32{0, 1}})
	s.Add(ctx, AddParams{Category: model.CategoryKnowledge, Content: "east", Embedding: []float32{1, 0}})

	results, err := s.Search(ctx, SearchParams{Query: "which way", QueryEmbedding: []float32{0.9, 0.1}, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Content != "east" {
		t.Errorf("nearest = %q, want east", results[0].Content)
	}
}

func TestQueryTerms(t *testing.T) {
	got := queryTerms("hello, hello world!")
	if len(got) != 2 || got[0] != "hello" || got[1] != "world" {
		t.Errorf("terms = %v", got)
	}
}
