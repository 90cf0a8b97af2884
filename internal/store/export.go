package store

import (
	"context"
	"fmt"

	"github.com/rcliao/deskmate/internal/model"
)

// ExportAll returns every memory, oldest first.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.Memory, error) {
	query, args, err := statementBuilder().
		Select(memoryColumns()...).
		From(s.collection).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.queryMemories(ctx, query, args...)
}
