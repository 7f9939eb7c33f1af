package implementation

import (
	"context"
	"errors"

	"docqa-be/internal/entity"
	"docqa-be/internal/mapper"
	"docqa-be/internal/model"
	"docqa-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssetMapper
}

func NewAssetRepository(db *gorm.DB) contract.AssetRepository {
	return &AssetRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssetMapper(),
	}
}

func (r *AssetRepositoryImpl) Create(ctx context.Context, asset *entity.Asset) error {
	if asset.Id == uuid.Nil {
		asset.Id = uuid.New()
	}
	m, err := r.mapper.ToModel(asset)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	asset.CreatedAt = m.CreatedAt
	return nil
}

func (r *AssetRepositoryImpl) CreateTableBody(ctx context.Context, body *entity.TableBody) error {
	m := r.mapper.TableBodyToModel(body)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *AssetRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Asset, error) {
	var m model.Asset
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}
