package entity

import (
	"time"

	"github.com/google/uuid"
)

// Asset is a non-prose artifact extracted from a source document: one image
// or one table.
type Asset struct {
	Id          uuid.UUID
	SHA256      string
	Filepath    string
	Page        *int
	Type        string // constant.AssetTypeImage | constant.AssetTypeTable
	ImageURL    *string
	CaptionText *string
	CaptionEmb  []float32
	Meta        map[string]interface{}
	CreatedAt   time.Time
}

// TableBody holds the materialized forms of one table asset.
type TableBody struct {
	AssetId uuid.UUID
	NRows   int
	NCols   int
	TSV     string
	MD      string
	HTML    string
}
