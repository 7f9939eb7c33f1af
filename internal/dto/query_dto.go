package dto

import ragcontext "docqa-be/pkg/rag/context"

// HistoryTurn is one prior conversation turn.
type HistoryTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant model system"`
	Content string `json:"content" validate:"required"`
}

type QueryRequest struct {
	Question     string        `json:"question" validate:"required"`
	MatchCount   int           `json:"match_count,omitempty"`
	History      []HistoryTurn `json:"history,omitempty" validate:"dive"`
	MaxNewTokens int           `json:"max_new_tokens,omitempty" validate:"omitempty,min=1,max=4096"`
	Temperature  float64       `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	TopP         float64       `json:"top_p,omitempty" validate:"omitempty,gt=0,max=1"`
}

type QueryResponse struct {
	Ok      bool                `json:"ok"`
	Mode    string              `json:"mode"`
	Answer  string              `json:"answer"`
	Sources []ragcontext.Source `json:"sources"`
	RagMode string              `json:"rag_mode"`
}

// HealthResponse reports backend endpoints and effective feature flags.
type HealthResponse struct {
	Ok      bool                   `json:"ok"`
	EmbURL  string                 `json:"emb_url"`
	LlmURL  string                 `json:"llm_url"`
	Storage string                 `json:"storage"`
	Flags   map[string]interface{} `json:"flags"`
}
