package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/llm"
	"github.com/Rrens/workspace-insights/internal/llm/openai"
)

func TestComplete(t *testing.T) {
	var got openai.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer ds-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"done"}}],"usage":{"total_tokens":4}}`))
	}))
	defer srv.Close()

	p := NewProvider("ds-key", "", srv.URL)
	resp, err := p.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "done", resp.Text)
	assert.Equal(t, "deepseek-chat", resp.Model)
	assert.Equal(t, "deepseek-chat", got.Model)
	require.Len(t, got.Messages, 1)
}

func TestComplete_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	p := NewProvider("ds-key", "", srv.URL)
	_, err := p.Complete(context.Background(), llm.Request{Messages: []llm.Message{{Role: "user", Content: "hi"}}}, "")

	var ce *domain.CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeUnauthorized, ce.Code)
	assert.Equal(t, "deepseek", ce.Collaborator)
	assert.Contains(t, ce.Error(), "bad key")
}
