package service

import (
	"context"

	"docqa-be/internal/config"
	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/pkg/llm"
	"docqa-be/pkg/rag"
)

// A question longer than this is rejected with 413.
const maxQuestionChars = 8000

// IQueryService defines the question answering service interface
type IQueryService interface {
	Query(ctx context.Context, request *dto.QueryRequest) (*dto.QueryResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
}

type queryService struct {
	answerer *rag.Answerer
	cfg      *config.Config
	log      logger.ILogger
}

func NewQueryService(answerer *rag.Answerer, cfg *config.Config, log logger.ILogger) IQueryService {
	return &queryService{
		answerer: answerer,
		cfg:      cfg,
		log:      log,
	}
}

func (s *queryService) Query(ctx context.Context, request *dto.QueryRequest) (*dto.QueryResponse, error) {
	if len([]rune(request.Question)) > maxQuestionChars {
		return nil, serverutils.PayloadTooLarge("question too long")
	}

	history := make([]llm.Message, 0, len(request.History))
	for _, turn := range request.History {
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	answer, err := s.answerer.Answer(ctx, request.Question, history, rag.Params{
		MaxNewTokens: request.MaxNewTokens,
		Temperature:  request.Temperature,
		TopP:         request.TopP,
		MatchCount:   request.MatchCount,
	})
	if err != nil {
		s.log.Error("query", "answer failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	return &dto.QueryResponse{
		Ok:      true,
		Mode:    "json",
		Answer:  answer.Answer,
		Sources: answer.Sources,
		RagMode: answer.RagMode,
	}, nil
}

func (s *queryService) Health(ctx context.Context) *dto.HealthResponse {
	return &dto.HealthResponse{
		Ok:      true,
		EmbURL:  s.cfg.Embedding.BaseURL,
		LlmURL:  s.cfg.LLM.BaseURL,
		Storage: s.cfg.App.UploadDir,
		Flags: map[string]interface{}{
			"fast_mode":          s.cfg.Ingest.FastMode,
			"render_pages":       s.cfg.Ingest.RenderPages,
			"table_index":        s.cfg.Ingest.EnableTableIndex,
			"max_table_rows_emb": s.cfg.Ingest.MaxTableRowsEmb,
			"max_caption_pages":  s.cfg.Ingest.MaxCaptionPages,
			"max_chunks_emb":     s.cfg.Ingest.MaxChunksEmb,
			"retrieve_min":       s.cfg.Retrieval.RetrieveMin,
			"use_as_ctx_min":     s.cfg.Retrieval.UseAsCtxMin,
			"min_top3_avg":       s.cfg.Retrieval.MinTop3Avg,
			"text_k":             s.cfg.Retrieval.TextK,
			"table_k":            s.cfg.Retrieval.TableK,
			"image_k":            s.cfg.Retrieval.ImageK,
		},
	}
}
