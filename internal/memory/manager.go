// Package memory is the assistant's memory surface: persistent entries in the
// store plus a short-term conversation buffer.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/rcliao/deskmate/internal/embedding"
	"github.com/rcliao/deskmate/internal/model"
	"github.com/rcliao/deskmate/internal/store"
)

// NoopID is returned by writes while the store is unavailable.
const NoopID = "noop"

// DefaultBufferSize is the conversation buffer capacity.
const DefaultBufferSize = 50

// Options configures a Manager.
type Options struct {
	// Store is the persistent index. Nil runs the manager degraded: writes
	// return NoopID and reads return nothing.
	Store store.Store
	// Embedder enables vector search. Optional.
	Embedder   embedding.Embedder
	BufferSize int
	// Location is reported by Stats, typically the database path.
	Location string
	Logger   zerolog.Logger
}

// Manager serializes every memory operation behind one mutex.
type Manager struct {
	mu       sync.Mutex
	store    store.Store
	embedder embedding.Embedder
	buffer   *ring
	session  string
	location string
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a Manager over opts.Store.
func New(opts Options) *Manager {
	size := opts.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	m := &Manager{
		store:    opts.Store,
		embedder: opts.Embedder,
		buffer:   newRing(size),
		session:  ulid.Make().String(),
		location: opts.Location,
		logger:   opts.Logger.With().Str("component", "memory").Logger(),
		now:      time.Now,
	}
	if m.store == nil {
		m.logger.Warn().Msg("memory store unavailable; running without persistence")
	}
	return m
}

// Open opens the SQLite store at dbPath. Failure to open is logged and
// yields a degraded Manager rather than an error.
func Open(dbPath, collection string, opts Options) *Manager {
	s, err := store.NewSQLiteStore(dbPath, collection, opts.Logger)
	if err != nil {
		opts.Logger.Warn().Err(err).Str("path", dbPath).Msg("failed to open memory store")
	} else {
		opts.Store = s
	}
	if opts.Location == "" {
		opts.Location = dbPath
	}
	return New(opts)
}

// Available reports whether a persistent store is attached.
func (m *Manager) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store != nil
}

// Session is the identifier stamped on this process's conversation entries.
func (m *Manager) Session() string { return m.session }

// Close releases the store.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	return err
}

// Add stores content under category. Caller metadata cannot replace the
// base keys (category, timestamp, content_length). Conversation entries are
// also pushed to the buffer. A failing store is logged and yields NoopID.
func (m *Manager) Add(ctx context.Context, content string, category model.Category, metadata map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeLocked(ctx, content, category, metadata), nil
}

func (m *Manager) writeLocked(ctx context.Context, content string, category model.Category, metadata map[string]string) string {
	id, err := m.addLocked(ctx, content, category, metadata, time.Time{})
	if err != nil {
		m.logger.Warn().Err(err).Str("category", string(category)).Msg("memory write failed; continuing without persistence")
		return NoopID
	}
	return id
}

func (m *Manager) addLocked(ctx context.Context, content string, category model.Category, metadata map[string]string, createdAt time.Time) (string, error) {
	if category == "" {
		category = model.CategoryConversation
	}
	meta := lo.Assign(metadata, baseMetadata(category, content))

	// Imported entries carry their own timestamp and stay out of the buffer.
	if category == model.CategoryConversation && createdAt.IsZero() {
		m.buffer.push(BufferEntry{Content: content, Metadata: meta, At: m.now()})
	}

	if m.store == nil {
		m.logger.Debug().Str("category", string(category)).Msg("store unavailable, memory not persisted")
		return NoopID, nil
	}

	var vec []float32
	if m.embedder != nil {
		v, err := m.embedder.Embed(ctx, content)
		if err != nil {
			m.logger.Warn().Err(err).Msg("embedding failed; storing without vector")
		} else {
			vec = v
		}
	}

	mem, _, err := m.store.Add(ctx, store.AddParams{
		Category:  category,
		Content:   content,
		Metadata:  meta,
		Embedding: vec,
		CreatedAt: createdAt,
	})
	if err != nil {
		return "", fmt.Errorf("add memory: %w", err)
	}
	return mem.ID, nil
}

func baseMetadata(category model.Category, content string) map[string]string {
	return map[string]string{
		model.MetaCategory:      string(category),
		model.MetaContentLength: strconv.Itoa(utf8.RuneCountInString(content)),
	}
}

// Search ranks stored memories against query. Category "" searches all.
// Backend failures are logged and yield no results.
func (m *Manager) Search(ctx context.Context, query string, category model.Category, limit int) ([]store.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil, nil
	}

	p := store.SearchParams{Query: query, Category: category, Limit: limit}
	if m.embedder != nil && query != "" {
		v, err := m.embedder.Embed(ctx, query)
		if err != nil {
			m.logger.Warn().Err(err).Msg("query embedding failed; using lexical search")
		} else {
			p.QueryEmbedding = v
		}
	}
	results, err := m.store.Search(ctx, p)
	if err != nil {
		m.logger.Warn().Err(err).Msg("memory search failed")
		return nil, nil
	}
	return results, nil
}

// Recent lists stored memories newest first. Backend failures are logged
// and yield no results.
func (m *Manager) Recent(ctx context.Context, category model.Category, limit int) ([]model.Memory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil, nil
	}
	mems, err := m.store.Recent(ctx, store.RecentParams{Category: category, Limit: limit})
	if err != nil {
		m.logger.Warn().Err(err).Msg("listing recent memories failed")
		return nil, nil
	}
	return mems, nil
}

// Buffer returns up to n of the newest buffered conversation entries, oldest
// first. n <= 0 returns the whole buffer. Imported entries never appear here.
func (m *Manager) Buffer(n int) []BufferEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffer.last(n)
}

// Stats summarizes the memory surface.
type Stats struct {
	TotalMemories int            `json:"total_memories"`
	Categories    map[string]int `json:"categories"`
	BufferSize    int            `json:"buffer_size"`
	DatabasePath  string         `json:"database_path"`
	Available     bool           `json:"available"`
}

// Stats reports counts per category and the buffer size.
func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := &Stats{
		Categories:   map[string]int{},
		BufferSize:   m.buffer.len(),
		DatabasePath: m.location,
	}
	if m.store == nil {
		return st, nil
	}
	s, err := m.store.Stats(ctx)
	if err != nil {
		return st, fmt.Errorf("memory stats: %w", err)
	}
	st.Available = true
	st.TotalMemories = s.TotalMemories
	st.Categories = s.Categories
	if st.DatabasePath == "" {
		st.DatabasePath = s.DBPath
	}
	return st, nil
}

// CleanupOlderThan deletes stored entries older than age.
func (m *Manager) CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return 0, nil
	}
	cutoff := m.now().Add(-age)
	n, err := m.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup memories: %w", err)
	}
	m.logger.Info().Int64("deleted", n).Dur("age", age).Msg("cleaned up old memories")
	return n, nil
}

func (m *Manager) requireStore() error {
	if m.store == nil {
		return store.ErrUnavailable
	}
	return nil
}

// IsUnavailable reports whether err stems from a missing store.
func IsUnavailable(err error) bool { return errors.Is(err, store.ErrUnavailable) }
