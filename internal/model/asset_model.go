package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Asset struct {
	Id          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Sha256      string           `gorm:"type:varchar(64);index"`
	Filepath    string           `gorm:"type:text"`
	Page        *int             `gorm:""`
	Type        string           `gorm:"type:varchar(16);index"` // image | table
	ImageUrl    *string          `gorm:"type:text"`
	CaptionText *string          `gorm:"type:text"`
	CaptionEmb  *pgvector.Vector `gorm:"type:vector(1024)"`
	Meta        datatypes.JSON   `gorm:"type:jsonb"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
}

func (Asset) TableName() string {
	return "assets"
}

type TableBody struct {
	AssetId uuid.UUID `gorm:"type:uuid;primaryKey"`
	NRows   int       `gorm:""`
	NCols   int       `gorm:""`
	Tsv     string    `gorm:"type:text"`
	Md      string    `gorm:"type:text"`
	Html    string    `gorm:"type:text"`
}

func (TableBody) TableName() string {
	return "table_bodies"
}
