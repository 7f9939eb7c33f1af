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

type FragmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FragmentMapper
}

func NewFragmentRepository(db *gorm.DB) contract.FragmentRepository {
	return &FragmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewFragmentMapper(),
	}
}

func (r *FragmentRepositoryImpl) Create(ctx context.Context, fragment *entity.Fragment) error {
	if fragment.Id == uuid.Nil {
		fragment.Id = uuid.New()
	}
	frag, emb, err := r.mapper.ToModel(fragment)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(frag).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(emb).Error; err != nil {
		return err
	}
	fragment.CreatedAt = frag.CreatedAt
	return nil
}

func (r *FragmentRepositoryImpl) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Fragment, error) {
	if len(ids) == 0 {
		return []*entity.Fragment{}, nil
	}
	var models []*model.Fragment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Fragment, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ToEntity(m, nil)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *FragmentRepositoryImpl) FindAllWithEmbeddings(ctx context.Context) ([]*entity.Fragment, error) {
	var frags []*model.Fragment
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&frags).Error; err != nil {
		return nil, err
	}
	var embs []*model.FragmentEmbedding
	if err := r.db.WithContext(ctx).Find(&embs).Error; err != nil {
		return nil, err
	}
	byFragment := make(map[uuid.UUID]*model.FragmentEmbedding, len(embs))
	for _, e := range embs {
		byFragment[e.FragmentId] = e
	}

	entities := make([]*entity.Fragment, 0, len(frags))
	for _, f := range frags {
		emb, ok := byFragment[f.Id]
		if !ok {
			// A fragment without an embedding row cannot be searched; it
			// should not exist given transactional inserts.
			return nil, errors.New("fragment missing embedding row: " + f.Id.String())
		}
		e, err := r.mapper.ToEntity(f, emb)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *FragmentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Fragment{}).Count(&count).Error
	return count, err
}
