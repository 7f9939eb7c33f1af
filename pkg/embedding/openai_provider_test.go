package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	var gotInput []string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotInput = req.Input

		resp := map[string]interface{}{"data": []map[string]interface{}{}}
		data := resp["data"].([]map[string]interface{})
		for i := range req.Input {
			data = append(data, map[string]interface{}{"embedding": []float32{float32(i), 1, 0}})
		}
		resp["data"] = data
		json.NewEncoder(w).Encode(resp)
	})

	p := NewOpenAIProvider(srv.URL, "bge-m3", 3, "Q: ", "P: ", time.Second)
	vecs, err := p.EmbedBatch(context.Background(), []string{"one", "two", "three"}, ModePassage)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []string{"P: one", "P: two", "P: three"}, gotInput)
	assert.Equal(t, float32(0), vecs[0][0])
	assert.Equal(t, float32(2), vecs[2][0])
}

func TestEmbedOneAppliesQueryPrefix(t *testing.T) {
	var gotInput []string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotInput = req.Input
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float32{1, 0, 0}}},
		})
	})

	p := NewOpenAIProvider(srv.URL, "bge-m3", 3, "Q: ", "P: ", time.Second)
	vec, err := p.EmbedOne(context.Background(), "question", ModeQuery)
	require.NoError(t, err)
	assert.Len(t, vec, 3)
	assert.Equal(t, []string{"Q: question"}, gotInput)
}

func TestEmbedBatchEmptyInputSkipsNetwork(t *testing.T) {
	called := false
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	p := NewOpenAIProvider(srv.URL, "bge-m3", 3, "", "", time.Second)
	vecs, err := p.EmbedBatch(context.Background(), nil, ModePassage)
	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.False(t, called)
}

func TestEmbedBatchCardinalityMismatch(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float32{1, 0, 0}}},
		})
	})

	p := NewOpenAIProvider(srv.URL, "bge-m3", 3, "", "", time.Second)
	_, err := p.EmbedBatch(context.Background(), []string{"a", "b"}, ModePassage)
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "count", shapeErr.What)
}

func TestEmbedBatchDimensionMismatch(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float32{1, 0}}},
		})
	})

	p := NewOpenAIProvider(srv.URL, "bge-m3", 3, "", "", time.Second)
	_, err := p.EmbedBatch(context.Background(), []string{"a"}, ModePassage)
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "dimension", shapeErr.What)
}

func TestEmbedBatchBackendError(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	})

	p := NewOpenAIProvider(srv.URL, "bge-m3", 3, "", "", time.Second)
	_, err := p.EmbedBatch(context.Background(), []string{"a"}, ModePassage)
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusInternalServerError, backendErr.Status)
}
