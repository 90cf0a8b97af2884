package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/rcliao/deskmate/internal/model"
)

// Export writes every stored memory to path as a JSON array of
// {id, content, metadata}, oldest first. It returns the number written.
func (m *Manager) Export(ctx context.Context, path string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireStore(); err != nil {
		return 0, err
	}

	mems, err := m.store.ExportAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("export memories: %w", err)
	}
	records := lo.Map(mems, func(mem model.Memory, _ int) model.ExportRecord { return mem.Export() })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}
	m.logger.Info().Int("count", len(records)).Str("path", path).Msg("exported memories")
	return len(records), nil
}

// importRecord is an export entry as read back. Metadata values may be any
// JSON scalar.
type importRecord struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Timestamp layouts accepted on import. Layouts without a zone are read as
// local time.
var (
	zonedLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999Z07:00"}
	localLayouts = []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999", "2006-01-02"}
)

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// scalarString renders a JSON scalar as a metadata value.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

// Import reads an export file and stores its entries. The category comes
// from metadata (default conversation) and the exported timestamp becomes
// the creation time, so importing the same file twice adds nothing the
// second time. Entries with an unknown category or a time before the Unix
// epoch are skipped; non-scalar metadata values are dropped. It returns the
// number of entries stored.
func (m *Manager) Import(ctx context.Context, path string) (int, error) {
	//nolint:gosec // G304: import path is user-specified
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []importRecord
	if err := dec.Decode(&records); err != nil {
		return 0, fmt.Errorf("decode import: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireStore(); err != nil {
		return 0, err
	}

	imported := 0
	for _, rec := range records {
		log := m.logger.With().Str("id", rec.ID).Logger()

		meta := make(map[string]string, len(rec.Metadata))
		for k, v := range rec.Metadata {
			if s, ok := scalarString(v); ok {
				meta[k] = s
			} else if v != nil {
				log.Warn().Str("key", k).Msg("dropping non-scalar metadata value")
			}
		}

		category, err := model.ParseCategory(meta[model.MetaCategory])
		if err != nil {
			log.Warn().Err(err).Msg("skipping import entry")
			continue
		}

		createdAt := m.now()
		if ts := meta[model.MetaTimestamp]; ts != "" {
			t, err := parseTimestamp(ts)
			if err != nil {
				log.Warn().Err(err).Msg("import entry timestamp unreadable; using current time")
			} else {
				createdAt = t
			}
		}
		if createdAt.Before(time.Unix(0, 0)) {
			log.Warn().Time("timestamp", createdAt).Msg("skipping import entry before the Unix epoch")
			continue
		}

		if _, err := m.addLocked(ctx, rec.Content, category, meta, createdAt); err != nil {
			return imported, fmt.Errorf("import entry %s: %w", rec.ID, err)
		}
		imported++
	}
	m.logger.Info().Int("count", imported).Int("read", len(records)).Str("path", path).Msg("imported memories")
	return imported, nil
}
