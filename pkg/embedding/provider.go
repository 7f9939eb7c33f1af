package embedding

import (
	"context"
	"fmt"
)

// Mode hints the backend how the text will be used.
const (
	ModeQuery   = "query"
	ModePassage = "passage"
)

// BackendError reports a non-success status from the embedding service.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("embedding backend error: status %d, body: %s", e.Status, e.Body)
}

// ShapeError reports a cardinality or dimension mismatch in the response.
type ShapeError struct {
	Want int
	Got  int
	What string // "count" or "dimension"
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("embedding shape error: %s %d, want %d", e.What, e.Got, e.Want)
}

// Provider generates embeddings for retrieval. Outputs are not required to be
// unit-norm; the vector store normalizes on insert and the query path
// normalizes before search.
type Provider interface {
	// EmbedOne embeds a single text.
	EmbedOne(ctx context.Context, text string, mode string) ([]float32, error)
	// EmbedBatch embeds texts preserving cardinality and order. An empty
	// input returns an empty result without a network call.
	EmbedBatch(ctx context.Context, texts []string, mode string) ([][]float32, error)
}
