package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docqa-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatReturnsMessageContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, false, req["stream"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "the answer"}},
			},
		})
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "llama31-8b-instruct", time.Second)
	out, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "the answer", out)
}

func TestChatStreamAccumulatesDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		for _, token := range []string{"He", "llo", " world"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", token)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "llama31-8b-instruct", time.Second)
	out, err := p.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestChatStreamStopsAtDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"before\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"after\"}}]}\n\n")
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "m", time.Second)
	out, err := p.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "before", out)
}

func TestChatGenerationErrorOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "m", time.Second)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "q"}})
	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, http.StatusServiceUnavailable, genErr.Status)
}

func TestChatMapsModelRoleToAssistant(t *testing.T) {
	var roles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		for _, m := range req.Messages {
			roles = append(roles, m.Role)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "m", time.Second)
	_, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "u"},
		{Role: "model", Content: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"system", "user", "assistant"}, roles)
}
