package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Fragment struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content   string         `gorm:"type:text;not null"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (Fragment) TableName() string {
	return "fragments"
}

type FragmentEmbedding struct {
	FragmentId uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Embedding  pgvector.Vector `gorm:"type:vector(1024)"` // bge-m3 is 1024-dim
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (FragmentEmbedding) TableName() string {
	return "fragment_embeddings"
}
