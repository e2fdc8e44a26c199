package model

import (
	"time"

	"github.com/google/uuid"
)

// Source represents an ingested source document's metadata.
// The raw text is consumed during ingestion and not stored here.
type Source struct {
	ID         int64     `json:"id"`
	RID        uuid.UUID `json:"rid"`
	SourceID   string    `json:"source_id"`
	BrainID    string    `json:"brain_id"`
	Title      string    `json:"title"`
	SourceType string    `json:"source_type,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
