// Package model defines the core memory data types.
package model

import (
	"fmt"
	"time"
)

// Category classifies what a memory is for.
type Category string

const (
	CategoryConversation   Category = "conversation"
	CategoryAction         Category = "action"
	CategoryObservation    Category = "observation"
	CategoryUserPreference Category = "user_preference"
	CategoryKnowledge      Category = "knowledge"
	CategoryTask           Category = "task"
)

// ValidCategories are the allowed memory categories with their descriptions.
var ValidCategories = map[Category]string{
	CategoryConversation:   "User-assistant conversations",
	CategoryAction:         "Actions performed by the assistant",
	CategoryObservation:    "Screen and webcam observations",
	CategoryUserPreference: "User preferences and settings",
	CategoryKnowledge:      "General knowledge and facts",
	CategoryTask:           "Tasks and workflows",
}

// ParseCategory validates s as a category name. The empty string is allowed
// and means "any category" to callers that filter.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", nil
	}
	c := Category(s)
	if _, ok := ValidCategories[c]; !ok {
		return "", fmt.Errorf("invalid category %q", s)
	}
	return c, nil
}

// Well-known metadata keys.
const (
	MetaCategory      = "category"
	MetaTimestamp     = "timestamp"
	MetaContentLength = "content_length"
	MetaSpeaker       = "speaker"
	MetaSource        = "source"
	MetaType          = "type"
	MetaTurn          = "turn"
	MetaSession       = "session"
)

// Memory represents a stored memory entry. Entries are append-only.
type Memory struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Category  Category          `json:"category"`
	Metadata  map[string]string `json:"metadata"`
	Embedding []float32         `json:"-"`
	CreatedAt time.Time         `json:"created_at"`
}

// ExportRecord is the on-disk shape of an exported memory.
type ExportRecord struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// Export converts m into its export shape.
func (m Memory) Export() ExportRecord {
	meta := make(map[string]string, len(m.Metadata))
	for k, v := range m.Metadata {
		meta[k] = v
	}
	return ExportRecord{ID: m.ID, Content: m.Content, Metadata: meta}
}
