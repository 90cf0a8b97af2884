package memory

import (
	"time"

	"github.com/rcliao/deskmate/internal/model"
)

// BufferEntry is one conversation line held in the short-term buffer.
type BufferEntry struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	At       time.Time         `json:"at"`
}

// Speaker returns the entry's speaker metadata, or "" if unset.
func (e BufferEntry) Speaker() string { return e.Metadata[model.MetaSpeaker] }

// ring is a fixed-capacity FIFO. The oldest entry is evicted when full.
type ring struct {
	entries []BufferEntry
	start   int
	size    int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{entries: make([]BufferEntry, capacity)}
}

func (r *ring) push(e BufferEntry) {
	if r.size < len(r.entries) {
		r.entries[(r.start+r.size)%len(r.entries)] = e
		r.size++
		return
	}
	r.entries[r.start] = e
	r.start = (r.start + 1) % len(r.entries)
}

// last returns up to n of the newest entries, oldest first. n <= 0 returns all.
func (r *ring) last(n int) []BufferEntry {
	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]BufferEntry, 0, n)
	for i := r.size - n; i < r.size; i++ {
		out = append(out, r.entries[(r.start+i)%len(r.entries)])
	}
	return out
}

func (r *ring) len() int { return r.size }
