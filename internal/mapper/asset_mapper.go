package mapper

import (
	"encoding/json"

	"docqa-be/internal/entity"
	"docqa-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type AssetMapper struct{}

func NewAssetMapper() *AssetMapper {
	return &AssetMapper{}
}

func (m *AssetMapper) ToModel(a *entity.Asset) (*model.Asset, error) {
	if a == nil {
		return nil, nil
	}
	metaJSON, err := json.Marshal(a.Meta)
	if err != nil {
		return nil, err
	}
	out := &model.Asset{
		Id:          a.Id,
		Sha256:      a.SHA256,
		Filepath:    a.Filepath,
		Page:        a.Page,
		Type:        a.Type,
		ImageUrl:    a.ImageURL,
		CaptionText: a.CaptionText,
		Meta:        datatypes.JSON(metaJSON),
		CreatedAt:   a.CreatedAt,
	}
	if a.CaptionEmb != nil {
		v := pgvector.NewVector(a.CaptionEmb)
		out.CaptionEmb = &v
	}
	return out, nil
}

func (m *AssetMapper) ToEntity(a *model.Asset) (*entity.Asset, error) {
	if a == nil {
		return nil, nil
	}
	var meta map[string]interface{}
	if len(a.Meta) > 0 {
		if err := json.Unmarshal(a.Meta, &meta); err != nil {
			return nil, err
		}
	}
	out := &entity.Asset{
		Id:          a.Id,
		SHA256:      a.Sha256,
		Filepath:    a.Filepath,
		Page:        a.Page,
		Type:        a.Type,
		ImageURL:    a.ImageUrl,
		CaptionText: a.CaptionText,
		Meta:        meta,
		CreatedAt:   a.CreatedAt,
	}
	if a.CaptionEmb != nil {
		out.CaptionEmb = a.CaptionEmb.Slice()
	}
	return out, nil
}

func (m *AssetMapper) TableBodyToModel(b *entity.TableBody) *model.TableBody {
	if b == nil {
		return nil
	}
	return &model.TableBody{
		AssetId: b.AssetId,
		NRows:   b.NRows,
		NCols:   b.NCols,
		Tsv:     b.TSV,
		Md:      b.MD,
		Html:    b.HTML,
	}
}

func (m *AssetMapper) TableBodyToEntity(b *model.TableBody) *entity.TableBody {
	if b == nil {
		return nil
	}
	return &entity.TableBody{
		AssetId: b.AssetId,
		NRows:   b.NRows,
		NCols:   b.NCols,
		TSV:     b.Tsv,
		MD:      b.Md,
		HTML:    b.Html,
	}
}
