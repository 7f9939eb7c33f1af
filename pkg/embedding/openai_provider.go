package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIProvider calls an OpenAI-compatible /v1/embeddings endpoint. Retrieval
// prefixes (bge-m3 style) are prepended client-side since the wire format has
// no mode field.
type OpenAIProvider struct {
	BaseURL       string
	Model         string
	Dim           int
	QueryPrefix   string
	PassagePrefix string
	Client        *http.Client
}

var _ Provider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, model string, dim int, queryPrefix, passagePrefix string, timeout time.Duration) *OpenAIProvider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIProvider{
		BaseURL:       baseURL,
		Model:         model,
		Dim:           dim,
		QueryPrefix:   queryPrefix,
		PassagePrefix: passagePrefix,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAIProvider) applyPrefix(texts []string, mode string) []string {
	prefix := p.PassagePrefix
	if mode == ModeQuery {
		prefix = p.QueryPrefix
	}
	if prefix == "" {
		return texts
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = prefix + t
	}
	return out
}

func (p *OpenAIProvider) EmbedOne(ctx context.Context, text string, mode string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text}, mode)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string, mode string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	reqBody := embeddingsRequest{
		Model: p.Model,
		Input: p.applyPrefix(texts, mode),
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	var parsed embeddingsResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, &ShapeError{Want: len(texts), Got: len(parsed.Data), What: "count"}
	}

	vecs := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		if p.Dim > 0 && len(d.Embedding) != p.Dim {
			return nil, &ShapeError{Want: p.Dim, Got: len(d.Embedding), What: "dimension"}
		}
		vecs[i] = d.Embedding
	}
	return vecs, nil
}
