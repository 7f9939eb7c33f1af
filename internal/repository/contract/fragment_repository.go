package contract

import (
	"context"

	"docqa-be/internal/entity"

	"github.com/google/uuid"
)

type FragmentRepository interface {
	// Create persists the fragment row and its embedding row. Callers that
	// need atomicity across both rows run this inside a unit of work.
	Create(ctx context.Context, fragment *entity.Fragment) error
	// FindByIds hydrates content and metadata for the given ids in one query.
	FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Fragment, error)
	// FindAllWithEmbeddings streams the full durable set, embeddings included.
	// Used to materialize the in-memory index.
	FindAllWithEmbeddings(ctx context.Context) ([]*entity.Fragment, error)
	Count(ctx context.Context) (int64, error)
}

type AssetRepository interface {
	Create(ctx context.Context, asset *entity.Asset) error
	CreateTableBody(ctx context.Context, body *entity.TableBody) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Asset, error)
}
