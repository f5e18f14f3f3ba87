// Package history persists one deduplicated record per captured
// conversation and keeps the badge count listener informed.
package history

import (
	"time"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/extract"
)

// Entry is one persisted conversation record. URL is the sole deduplication
// key; Timestamp, URL, Title and Model are mandatory for a record to be
// accepted. Entries are never mutated after creation.
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Model         string    `json:"model"`
	Prompt        string    `json:"prompt,omitempty"`
	AttachedFiles []string  `json:"attachedFiles,omitempty"`
	AccountName   string    `json:"accountName,omitempty"`
	AccountEmail  string    `json:"accountEmail,omitempty"`
	GeminiPlan    string    `json:"geminiPlan,omitempty"`
	GemID         string    `json:"gemId,omitempty"`
	GemName       string    `json:"gemName,omitempty"`
	GemURL        string    `json:"gemUrl,omitempty"`
}

// Valid reports whether the entry carries every mandatory field and an
// addressable conversation URL.
func (e Entry) Valid() bool {
	if e.Timestamp.IsZero() || e.URL == "" || e.Title == "" || e.Model == "" {
		return false
	}
	return extract.IsConversationURL(e.URL)
}
