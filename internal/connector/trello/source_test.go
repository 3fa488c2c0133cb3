package trello

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/workspace-insights/internal/domain"
)

var boardCfg = domain.IssueTrackerConfig{APIKey: "k", Token: "t", BoardID: "b1", BoardName: "Roadmap"}

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSource(srv.URL)
}

func TestList(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/boards/b1/cards", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "t", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"c1","name":"Ship login","dateLastActivity":"2026-03-01T10:00:00.000Z"},
			{"id":"c2","name":"Fix search","dateLastActivity":"2026-03-02T10:00:00.000Z"},
			{"id":"c3","name":"Docs"}
		]`))
	})

	items, err := src.List(context.Background(), boardCfg, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c1", items[0].ExternalID)
	assert.Equal(t, "card", items[0].Kind)
	assert.Equal(t, 2026, items[1].UpdatedAt.Year())
}

func TestFetch(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/c1", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("checklists"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id":"c1","name":"Ship login","desc":"Need to finish OAuth flow.",
			"due":"2026-03-10T12:00:00.000Z","dueComplete":false,
			"labels":[{"name":"backend"}],
			"checklists":[{"name":"Steps","checkItems":[{"name":"tests","state":"complete"},{"name":"deploy","state":"incomplete"}]}]
		}`))
	})

	doc, err := src.Fetch(context.Background(), boardCfg, "c1")
	require.NoError(t, err)

	assert.Equal(t, "Ship login", doc.Name)
	assert.Equal(t, "Card: Ship login\nDue: 2026-03-10T12:00:00.000Z (open)\nLabels: backend\n\nNeed to finish OAuth flow.\n\nSteps:\n- [x] tests\n- [ ] deploy\n", doc.Content)
	assert.Equal(t, "2026-03-10T12:00:00.000Z", doc.Metadata["due"])
}

func TestCheck_Unauthorized(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid token"))
	})

	err := src.Check(context.Background(), boardCfg)

	var ce *domain.CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeUnauthorized, ce.Code)
	assert.Equal(t, "trello", ce.Collaborator)
}

func TestFetch_NotFound(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := src.Fetch(context.Background(), boardCfg, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigRequiresBoard(t *testing.T) {
	src := NewSource("")

	_, err := src.List(context.Background(), domain.IssueTrackerConfig{APIKey: "k", Token: "t"}, 10)
	assert.True(t, domain.IsValidation(err))
}
