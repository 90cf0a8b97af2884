package store

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/rcliao/deskmate/internal/model"
)

// DefaultCollection is the table memories are stored in unless configured otherwise.
const DefaultCollection = "deskmate_memories"

var collectionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	collection string
	logger     zerolog.Logger

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and ensures the
// collection table exists.
func NewSQLiteStore(dbPath, collection string, logger zerolog.Logger) (*SQLiteStore, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	if !collectionName.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:         db,
		path:       dbPath,
		collection: collection,
		logger:     logger.With().Str("component", "memory_store").Logger(),
		now:        time.Now,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + s.collection).Scan(&count); err == nil {
		s.logger.Info().Str("collection", collection).Int("entries", count).Msg("memory collection ready")
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id          TEXT PRIMARY KEY,
		category    TEXT NOT NULL,
		content     TEXT NOT NULL,
		metadata    TEXT NOT NULL DEFAULT '{}',
		embedding   BLOB,
		created_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_category ON %[1]s(category, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_created ON %[1]s(created_at DESC);
	`, s.collection)
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// stamp assigns a creation time. New entries get strictly increasing
// timestamps so IDs cannot collide within one process.
func (s *SQLiteStore) stamp(t time.Time) time.Time {
	if !t.IsZero() {
		return t.UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t = s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

// memoryID derives an entry ID from its category, creation time and content:
// a ULID whose timestamp is the creation millisecond and whose entropy is a
// content fingerprint followed by the sub-millisecond nanoseconds.
// Times before the Unix epoch have no ULID timestamp and are rejected.
func memoryID(category model.Category, t time.Time, content string) (string, error) {
	sum := md5.Sum([]byte(content)) //nolint:gosec
	var entropy [10]byte
	copy(entropy[:6], sum[:6])
	sub := t.UnixNano() % int64(time.Millisecond)
	if sub < 0 {
		sub += int64(time.Millisecond)
	}
	binary.BigEndian.PutUint32(entropy[6:], uint32(sub))
	if t.Before(time.Unix(0, 0)) {
		return "", fmt.Errorf("memory id: time %s is before the Unix epoch", t.Format(time.RFC3339))
	}
	id, err := ulid.New(ulid.Timestamp(t), bytes.NewReader(entropy[:]))
	if err != nil {
		return "", fmt.Errorf("memory id: %w", err)
	}
	return string(category) + "_" + id.String(), nil
}

func (s *SQLiteStore) Add(ctx context.Context, p AddParams) (*model.Memory, bool, error) {
	if _, ok := model.ValidCategories[p.Category]; !ok {
		return nil, false, fmt.Errorf("invalid category %q", p.Category)
	}

	createdAt := s.stamp(p.CreatedAt)
	id, err := memoryID(p.Category, createdAt, p.Content)
	if err != nil {
		return nil, false, err
	}

	meta := make(map[string]string, len(p.Metadata))
	for k, v := range p.Metadata {
		meta[k] = v
	}
	meta[model.MetaTimestamp] = createdAt.Format(time.RFC3339Nano)
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, false, fmt.Errorf("encode metadata: %w", err)
	}

	var blob []byte
	if len(p.Embedding) > 0 {
		blob = encodeEmbedding(p.Embedding)
	}

	query, args, err := statementBuilder().
		Insert(s.collection).
		Options("OR IGNORE").
		Columns(memoryColumns()...).
		Values(id, string(p.Category), p.Content, string(metaJSON), blob, createdAt.UnixNano()).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("insert memory: %w", err)
	}
	n, _ := res.RowsAffected()

	s.logger.Debug().
		Str("id", id).
		Str("category", string(p.Category)).
		Int("contentLength", len(p.Content)).
		Bool("inserted", n > 0).
		Msg("Add: stored memory")

	return &model.Memory{
		ID:        id,
		Content:   p.Content,
		Category:  p.Category,
		Metadata:  meta,
		Embedding: p.Embedding,
		CreatedAt: createdAt,
	}, n > 0, nil
}

func (s *SQLiteStore) Recent(ctx context.Context, p RecentParams) ([]model.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}

	q := statementBuilder().
		Select(memoryColumns()...).
		From(s.collection).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
	if p.Category != "" {
		q = q.Where(categoryEq(p.Category))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.queryMemories(ctx, query, args...)
}

func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := statementBuilder().
		Delete(s.collection).
		Where(createdBefore(cutoff)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete memories: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("DeleteOlderThan: removed old memories")
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryMemories(ctx context.Context, query string, args ...interface{}) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var category, meta string
	var blob []byte
	var createdAt int64

	if err := row.Scan(&m.ID, &category, &m.Content, &meta, &blob, &createdAt); err != nil {
		return m, err
	}

	m.Category = model.Category(category)
	m.CreatedAt = time.Unix(0, createdAt).UTC()
	m.Metadata = map[string]string{}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &m.Metadata); err != nil {
			return m, fmt.Errorf("decode metadata for %s: %w", m.ID, err)
		}
	}
	if len(blob) > 0 {
		m.Embedding = decodeEmbedding(blob)
	}
	return m, nil
}
