package database

import (
	"docqa-be/internal/model"

	"gorm.io/gorm"
)

// Migrate creates the pgvector extension and the fragment/asset tables.
// Idempotent; safe to run at every startup.
func Migrate(db *gorm.DB) error {
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}

	return db.AutoMigrate(
		&model.Fragment{},
		&model.FragmentEmbedding{},
		&model.Asset{},
		&model.TableBody{},
	)
}
