package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/workspace-insights/internal/domain"
)

func TestBindingService_CreateSealsConfig(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Board")

	b := f.binding(t, f.alice, ws.ID, domain.BindingIssueTracker, trelloConfig)
	assert.Equal(t, domain.StatusDisconnected, b.Status)

	stored, err := f.store.Bindings().GetByID(f.ctx, b.ID)
	require.NoError(t, err)
	assert.NotContains(t, string(stored.SealedConfig), "secret-token")

	got, err := f.svc.Bindings.Get(f.ctx, f.alice, b.ID)
	require.NoError(t, err)
	cfg, ok := got.Config.(domain.IssueTrackerConfig)
	require.True(t, ok)
	assert.Equal(t, "secret-token", cfg.Token)
	assert.Equal(t, "Roadmap", cfg.BoardName)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-token")
	assert.Contains(t, string(data), "Roadmap")
}

func TestBindingService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Board")

	cases := []domain.BindingCreate{
		{Type: "carrier_pigeon", Name: "x"},
		{Type: domain.BindingIssueTracker, Name: ""},
		{Type: domain.BindingRelationalDB, Name: "db", Config: []byte(`{"engine":"oracle"}`)},
		{Type: domain.BindingWiki, Name: "wiki", Config: []byte(`[1,2]`)},
	}
	for _, input := range cases {
		_, err := f.svc.Bindings.Create(f.ctx, f.alice, ws.ID, input)
		assert.True(t, domain.IsValidation(err), "input %+v", input)
	}

	_, err := f.svc.Bindings.Create(f.ctx, f.bob, ws.ID, domain.BindingCreate{Type: domain.BindingWiki, Name: "wiki"})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestBindingService_Test(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Board")
	b := f.binding(t, f.alice, ws.ID, domain.BindingIssueTracker, trelloConfig)

	t.Run("success marks connected", func(t *testing.T) {
		f.source.On("Check", mock.Anything, mock.Anything).Return(nil).Once()

		got, err := f.svc.Bindings.Test(f.ctx, f.alice, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConnected, got.Status)
	})

	t.Run("failure marks error", func(t *testing.T) {
		upstream := domain.NewCollaboratorError("trello", domain.CodeUnauthorized, errors.New("invalid token"))
		f.source.On("Check", mock.Anything, mock.Anything).Return(upstream).Once()

		_, err := f.svc.Bindings.Test(f.ctx, f.alice, b.ID)
		assert.Same(t, upstream, err)

		got, err := f.svc.Bindings.Get(f.ctx, f.alice, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusError, got.Status)
	})

	f.source.AssertExpectations(t)
}

func TestBindingService_UpdateAndDelete(t *testing.T) {
	cache := new(MockListingCache)
	f := newFixture(t, withCache(cache))
	ws := f.workspace(t, f.alice, "Board")
	b := f.binding(t, f.alice, ws.ID, domain.BindingIssueTracker, trelloConfig)

	cache.On("Invalidate", mock.Anything, b.ID).Return(nil).Twice()

	name := "Renamed"
	updated, err := f.svc.Bindings.Update(f.ctx, f.alice, b.ID, domain.BindingUpdate{
		Name:   &name,
		Config: []byte(`{"api_key":"k","token":"t","board_id":"b2","board_name":"Sprint"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "Sprint", updated.Config.DisplayName())

	bad := domain.BindingStatus("exploded")
	_, err = f.svc.Bindings.Update(f.ctx, f.alice, b.ID, domain.BindingUpdate{Status: &bad})
	assert.True(t, domain.IsValidation(err))

	require.NoError(t, f.svc.Bindings.Delete(f.ctx, f.alice, b.ID))
	_, err = f.svc.Bindings.Get(f.ctx, f.alice, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.svc.Bindings.Delete(f.ctx, f.alice, uuid.New()), domain.ErrNotFound)
	cache.AssertExpectations(t)
}
