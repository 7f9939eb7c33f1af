package mapper

import (
	"encoding/json"

	"docqa-be/internal/entity"
	"docqa-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type FragmentMapper struct{}

func NewFragmentMapper() *FragmentMapper {
	return &FragmentMapper{}
}

func (m *FragmentMapper) ToModel(f *entity.Fragment) (*model.Fragment, *model.FragmentEmbedding, error) {
	if f == nil {
		return nil, nil, nil
	}
	metaJSON, err := json.Marshal(f.Metadata)
	if err != nil {
		return nil, nil, err
	}
	frag := &model.Fragment{
		Id:        f.Id,
		Content:   f.Content,
		Metadata:  datatypes.JSON(metaJSON),
		CreatedAt: f.CreatedAt,
	}
	emb := &model.FragmentEmbedding{
		FragmentId: f.Id,
		Embedding:  pgvector.NewVector(f.Embedding),
	}
	return frag, emb, nil
}

func (m *FragmentMapper) ToEntity(frag *model.Fragment, emb *model.FragmentEmbedding) (*entity.Fragment, error) {
	if frag == nil {
		return nil, nil
	}
	var meta entity.FragmentMetadata
	if len(frag.Metadata) > 0 {
		if err := json.Unmarshal(frag.Metadata, &meta); err != nil {
			return nil, err
		}
	}
	e := &entity.Fragment{
		Id:        frag.Id,
		Content:   frag.Content,
		Metadata:  meta,
		CreatedAt: frag.CreatedAt,
	}
	if emb != nil {
		e.Embedding = emb.Embedding.Slice()
	}
	return e, nil
}
