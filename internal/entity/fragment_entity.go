package entity

import (
	"time"

	"github.com/google/uuid"
)

// NormalizedCell is the parsed form of one table cell: a numeric value and a
// unit when the raw text looks like "1,234.5 kg", otherwise just the raw text.
type NormalizedCell struct {
	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"`
	Raw   string   `json:"raw"`
}

// FragmentMetadata is the tag bag attached to every fragment. Common keys are
// projected as typed fields; Extra keeps an open tail for forward
// compatibility.
type FragmentMetadata struct {
	Type       string           `json:"type"`
	SHA256     string           `json:"sha256,omitempty"`
	Filepath   string           `json:"filepath,omitempty"`
	StoredPath string           `json:"stored_path,omitempty"`
	ChunkIndex *int             `json:"chunk_index,omitempty"`
	StartTok   *int             `json:"startTok,omitempty"`
	EndTok     *int             `json:"endTok,omitempty"`
	AssetId    *uuid.UUID       `json:"asset_id,omitempty"`
	RowIndex   *int             `json:"row_index,omitempty"`
	Headers    []string         `json:"headers,omitempty"`
	Normalized []NormalizedCell `json:"normalized,omitempty"`
	Caption    string           `json:"caption,omitempty"`
	Page       *int             `json:"page,omitempty"`

	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Fragment is the unit of retrieval: an embedded text plus its metadata bag.
// Fragments are immutable once created.
type Fragment struct {
	Id        uuid.UUID
	Content   string
	Metadata  FragmentMetadata
	Embedding []float32
	CreatedAt time.Time
}

// ScoredFragment wraps a Fragment with its cosine similarity to a query.
type ScoredFragment struct {
	Fragment   *Fragment
	Similarity float64
}
