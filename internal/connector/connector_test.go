package connector

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/Rrens/workspace-insights/internal/domain"
)

type stubSource struct {
	t   domain.BindingType
	err error
}

func (s stubSource) Type() domain.BindingType { return s.t }
func (s stubSource) Check(ctx context.Context, cfg domain.BindingConfig) error {
	return s.err
}
func (s stubSource) List(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.SourceItem, error) {
	return []domain.SourceItem{{ExternalID: "1"}}, s.err
}
func (s stubSource) Fetch(ctx context.Context, cfg domain.BindingConfig, id string) (*domain.SourceDocument, error) {
	return &domain.SourceDocument{Content: "body"}, s.err
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(stubSource{t: domain.BindingWiki})

	src, err := r.Source(domain.BindingWiki)
	require.NoError(t, err)
	assert.Equal(t, domain.BindingWiki, src.Type())

	items, err := src.List(context.Background(), domain.WikiConfig{}, 5)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = r.Source(domain.BindingDrive)
	var ce *domain.CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeNotConfigured, ce.Code)

	_, err = r.Mailbox(domain.BindingWiki)
	assert.True(t, domain.IsValidation(err))

	assert.Equal(t, []domain.BindingType{domain.BindingWiki}, r.Types())
}

func TestRegistry_PassesErrorsThrough(t *testing.T) {
	upstream := errors.New("down")
	r := NewRegistry()
	r.Register(stubSource{t: domain.BindingWiki, err: upstream})

	src, err := r.Source(domain.BindingWiki)
	require.NoError(t, err)

	assert.Same(t, upstream, src.Check(context.Background(), domain.WikiConfig{}))
}

func TestGoogleError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{
			name: "insufficient permissions",
			err: &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{
				{Reason: "insufficientPermissions"},
			}},
			code: domain.CodeInsufficientScope,
		},
		{
			name: "scope message",
			err:  &googleapi.Error{Code: http.StatusForbidden, Message: "Request had insufficient authentication scopes."},
			code: domain.CodeInsufficientScope,
		},
		{
			name: "quota",
			err: &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{
				{Reason: "userRateLimitExceeded"},
			}},
			code: domain.CodeRateLimited,
		},
		{
			name: "unauthorized",
			err:  &googleapi.Error{Code: http.StatusUnauthorized},
			code: domain.CodeUnauthorized,
		},
		{
			name: "rate limited",
			err:  &googleapi.Error{Code: http.StatusTooManyRequests},
			code: domain.CodeRateLimited,
		},
		{
			name: "transport",
			err:  errors.New("dial tcp: refused"),
			code: domain.CodeUpstreamError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ce *domain.CollaboratorError
			require.ErrorAs(t, GoogleError("gmail", tc.err), &ce)
			assert.Equal(t, tc.code, ce.Code)
			assert.Equal(t, "gmail", ce.Collaborator)
		})
	}
}

func TestGoogleError_NotFound(t *testing.T) {
	err := GoogleError("drive", &googleapi.Error{Code: http.StatusNotFound})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
