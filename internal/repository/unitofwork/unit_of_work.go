package unitofwork

import (
	"context"

	"docqa-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	FragmentRepository() contract.FragmentRepository
	AssetRepository() contract.AssetRepository
}
