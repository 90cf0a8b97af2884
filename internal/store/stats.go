package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string         `json:"database_path"`
	DBSizeBytes   int64          `json:"db_size_bytes"`
	Collection    string         `json:"collection"`
	TotalMemories int            `json:"total_memories"`
	Categories    map[string]int `json:"categories"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path, Collection: s.collection, Categories: map[string]int{}}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	query, args, err := statementBuilder().
		Select("category", "COUNT(*) AS cnt").
		From(s.collection).
		GroupBy("category").
		OrderBy("cnt DESC").
		ToSql()
	if err != nil {
		return st, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return st, err
		}
		st.Categories[category] = n
		st.TotalMemories += n
	}
	return st, rows.Err()
}
