package anthropic

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
)

func TestComplete(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}],"usage":{"input_tokens":5,"output_tokens":7}}`))
	}))
	defer srv.Close()

	p := NewProvider("key", "", srv.URL)
	resp, err := p.Complete(context.Background(), llm.Request{
		System:   "be brief",
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "part one part two", resp.Text)
	assert.Equal(t, 12, resp.TokensUsed)
	assert.Equal(t, "be brief", got.System)
	assert.Equal(t, defaultTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
}

func TestComplete_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewProvider("key", "", srv.URL)
	_, err := p.Complete(context.Background(), llm.Request{Messages: []llm.Message{{Role: "user", Content: "hi"}}}, "")

	var ce *domain.CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeInsufficientScope, ce.Code)
}
