package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/Rrens/workspace-insights/internal/domain"
)

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func message(id, subject, plain, html string) map[string]any {
	parts := []map[string]any{}
	if plain != "" {
		parts = append(parts, map[string]any{"mimeType": "text/plain", "body": map[string]any{"data": encode(plain)}})
	}
	if html != "" {
		parts = append(parts, map[string]any{"mimeType": "text/html", "body": map[string]any{"data": encode(html)}})
	}
	return map[string]any{
		"id":           id,
		"threadId":     "t-" + id,
		"internalDate": "1717236000000",
		"payload": map[string]any{
			"mimeType": "multipart/alternative",
			"headers": []map[string]string{
				{"name": "From", "value": "Dana <dana@example.com>"},
				{"name": "Subject", "value": subject},
			},
			"parts": parts,
		},
	}
}

func newTestSource(t *testing.T) (*Source, *[]string) {
	t.Helper()
	var labels []string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":401,"message":"invalid credentials"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"emailAddress": "me@example.com"})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		labels = append(labels, r.URL.Query().Get("labelIds"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "m1"}, {"id": "m2"}},
		})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "m1":
			_ = json.NewEncoder(w).Encode(message("m1", "Budget", "Please review the budget by Friday.", "<p>ignored</p>"))
		case "m2":
			_ = json.NewEncoder(w).Encode(message("m2", "Launch", "", "<p>Can you send the deck?</p>"))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewSource(nil, option.WithEndpoint(srv.URL+"/")), &labels
}

func TestRecentMessages(t *testing.T) {
	src, labels := newTestSource(t)

	msgs, err := src.RecentMessages(context.Background(), domain.MailboxConfig{AccessToken: "good"}, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "Budget", msgs[0].Subject)
	assert.Equal(t, "Dana <dana@example.com>", msgs[0].From)
	assert.Equal(t, "Please review the budget by Friday.", msgs[0].Body)
	assert.Equal(t, int64(1717236000), msgs[0].Date.Unix())

	assert.Equal(t, "<p>Can you send the deck?</p>", msgs[1].Body)
	assert.Equal(t, []string{"INBOX"}, *labels)
}

func TestRecentMessages_CustomLabel(t *testing.T) {
	src, labels := newTestSource(t)

	_, err := src.RecentMessages(context.Background(), domain.MailboxConfig{AccessToken: "good", Label: "Label_7"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Label_7"}, *labels)
}

func TestList(t *testing.T) {
	src, _ := newTestSource(t)

	items, err := src.List(context.Background(), domain.MailboxConfig{AccessToken: "good"}, 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Budget", items[0].Name)
	assert.Equal(t, "email", items[0].Kind)
}

func TestFetch(t *testing.T) {
	src, _ := newTestSource(t)

	doc, err := src.Fetch(context.Background(), domain.MailboxConfig{AccessToken: "good"}, "m2")
	require.NoError(t, err)
	assert.Equal(t, "Launch", doc.Name)
	assert.Contains(t, doc.Content, "Subject: Launch")
	assert.Contains(t, doc.Content, "Can you send the deck?")
	assert.NotContains(t, doc.Content, "<p>")
	assert.Equal(t, "t-m2", doc.Metadata["thread_id"])
}

func TestFetch_NotFound(t *testing.T) {
	src, _ := newTestSource(t)

	_, err := src.Fetch(context.Background(), domain.MailboxConfig{AccessToken: "good"}, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheck(t *testing.T) {
	src, _ := newTestSource(t)

	require.NoError(t, src.Check(context.Background(), domain.MailboxConfig{AccessToken: "good"}))

	err := src.Check(context.Background(), domain.MailboxConfig{AccessToken: "stale"})
	var ce *domain.CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeUnauthorized, ce.Code)
}

func TestCheck_MissingToken(t *testing.T) {
	src := NewSource(nil)

	err := src.Check(context.Background(), domain.MailboxConfig{})
	var ce *domain.CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeUnauthorized, ce.Code)
}

func TestCheck_WrongConfig(t *testing.T) {
	src := NewSource(nil)

	err := src.Check(context.Background(), domain.WikiConfig{})
	assert.True(t, domain.IsValidation(err))
}
