package service

import (
	"context"
	"errors"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/pkg/ingest"
)

// IIngestService defines the document ingestion service interface
type IIngestService interface {
	Ingest(ctx context.Context, fileBytes []byte, filename, mime string) (*dto.UploadResponse, error)
}

type ingestService struct {
	pipeline *ingest.Pipeline
	log      logger.ILogger
}

func NewIngestService(pipeline *ingest.Pipeline, log logger.ILogger) IIngestService {
	return &ingestService{
		pipeline: pipeline,
		log:      log,
	}
}

func (s *ingestService) Ingest(ctx context.Context, fileBytes []byte, filename, mime string) (*dto.UploadResponse, error) {
	result, err := s.pipeline.Ingest(ctx, fileBytes, filename, mime)
	if err != nil {
		return nil, mapIngestError(err)
	}

	s.log.Info("ingest", "document indexed", map[string]interface{}{
		"filename": filename,
		"stored":   result.Stored,
		"chunks":   result.Chunks,
		"tables":   result.Tables,
	})

	return &dto.UploadResponse{
		Ok:                 true,
		Chunks:             result.Chunks,
		Stored:             result.Stored,
		Tables:             result.Tables,
		Pages:              result.Pages,
		ImageCaptionChunks: result.ImageCaptionChunks,
	}, nil
}

// mapIngestError translates pipeline error kinds into HTTP-facing errors.
func mapIngestError(err error) error {
	var inputErr *ingest.InputError
	if errors.As(err, &inputErr) {
		return serverutils.BadRequest(inputErr.Msg)
	}
	var unsupported *ingest.UnsupportedTypeError
	if errors.As(err, &unsupported) {
		return serverutils.UnsupportedMedia(unsupported.Error())
	}
	return err
}
