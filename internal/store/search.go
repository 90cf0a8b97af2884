package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/rcliao/deskmate/internal/embedding"
	"github.com/rcliao/deskmate/internal/model"
)

// Search ranks memories against the query. Entries with an embedding are
// scored by cosine similarity when a query embedding is supplied; all others
// are scored lexically and dropped when nothing matches. Equal scores are
// ordered newest first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 5
	}

	q := statementBuilder().
		Select(memoryColumns()...).
		From(s.collection).
		OrderBy("created_at DESC", "id DESC")
	if p.Category != "" {
		q = q.Where(categoryEq(p.Category))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	candidates, err := s.queryMemories(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(p.Query))
	terms := queryTerms(needle)

	type scored struct {
		result SearchResult
		score  float64
	}
	ranked := lo.FilterMap(candidates, func(m model.Memory, _ int) (scored, bool) {
		r := SearchResult{Memory: m}
		if len(p.QueryEmbedding) > 0 && len(m.Embedding) == len(p.QueryEmbedding) {
			sim := embedding.CosineSimilarity(p.QueryEmbedding, m.Embedding)
			r.Distance = 1 - sim
			return scored{result: r, score: sim}, true
		}
		score := lexicalScore(needle, terms, m.Content)
		if score == 0 {
			return scored{}, false
		}
		r.Distance = 1 - score
		return scored{result: r, score: score}, true
	})

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.result.CreatedAt.Equal(b.result.CreatedAt) {
			return a.result.CreatedAt.After(b.result.CreatedAt)
		}
		return a.result.ID > b.result.ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	s.logger.Debug().
		Str("query", p.Query).
		Str("category", string(p.Category)).
		Int("candidates", len(candidates)).
		Int("results", len(ranked)).
		Bool("vector", len(p.QueryEmbedding) > 0).
		Msg("Search: ranked memories")

	return lo.Map(ranked, func(r scored, _ int) SearchResult { return r.result }), nil
}

// queryTerms splits a lower-cased query into distinct alphanumeric terms.
func queryTerms(q string) []string {
	fields := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return lo.Uniq(fields)
}

// lexicalScore is 1 when the whole query occurs in content, otherwise the
// share of query terms that do. An empty query matches everything.
func lexicalScore(needle string, terms []string, content string) float64 {
	if needle == "" {
		return 1
	}
	c := strings.ToLower(content)
	if strings.Contains(c, needle) {
		return 1
	}
	if len(terms) == 0 {
		return 0
	}
	hits := lo.CountBy(terms, func(t string) bool { return strings.Contains(c, t) })
	return float64(hits) / float64(len(terms))
}
