package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/workspace-insights/internal/domain"
)

func (f *fixture) widget(t *testing.T, workspaceID uuid.UUID, kind string, artifactID *uuid.UUID) *domain.Widget {
	t.Helper()
	w, err := f.svc.Widgets.Create(f.ctx, f.alice, workspaceID, domain.WidgetCreate{
		Kind:       kind,
		Title:      kind + " widget",
		ArtifactID: artifactID,
	})
	require.NoError(t, err)
	return w
}

func TestWidgetService_CreateAppends(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Dash")

	first := f.widget(t, ws.ID, "note", nil)
	second := f.widget(t, ws.ID, "note", nil)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)

	other := f.workspace(t, f.alice, "Other")
	b := f.binding(t, f.alice, other.ID, domain.BindingDrive, `{}`)
	foreign := f.artifact(t, f.alice, b.ID, "text", "x")

	_, err := f.svc.Widgets.Create(f.ctx, f.alice, ws.ID, domain.WidgetCreate{
		Kind:       domain.WidgetSummary,
		Title:      "Summary",
		ArtifactID: &foreign.ID,
	})
	assert.True(t, domain.IsValidation(err))
}

func TestWidgetService_Patch(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Dash")
	w, err := f.svc.Widgets.Create(f.ctx, f.alice, ws.ID, domain.WidgetCreate{
		Kind:   "chart",
		Title:  "Chart",
		Config: map[string]any{"chart": "bar", "color": "blue"},
	})
	require.NoError(t, err)

	title := "Revenue"
	patched, err := f.svc.Widgets.Patch(f.ctx, f.alice, w.ID, domain.WidgetPatch{
		Title:  &title,
		Config: map[string]any{"chart": "line"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Revenue", patched.Title)
	assert.Equal(t, map[string]any{"chart": "line", "color": "blue"}, patched.Config)

	got, err := f.svc.Widgets.Get(f.ctx, f.alice, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "line", got.Config["chart"])
	assert.Equal(t, "blue", got.Config["color"])
}

func TestWidgetService_Reorder(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Dash")
	a := f.widget(t, ws.ID, "note", nil)
	b := f.widget(t, ws.ID, "note", nil)

	t.Run("duplicate ids", func(t *testing.T) {
		err := f.svc.Widgets.Reorder(f.ctx, f.alice, domain.WidgetReorder{Positions: []domain.WidgetPosition{
			{ID: a.ID, Position: 1}, {ID: a.ID, Position: 2},
		}})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("empty", func(t *testing.T) {
		err := f.svc.Widgets.Reorder(f.ctx, f.alice, domain.WidgetReorder{})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unknown id aborts before writing", func(t *testing.T) {
		err := f.svc.Widgets.Reorder(f.ctx, f.alice, domain.WidgetReorder{Positions: []domain.WidgetPosition{
			{ID: a.ID, Position: 5}, {ID: uuid.New(), Position: 0},
		}})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		got, err := f.svc.Widgets.Get(f.ctx, f.alice, a.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Position)
	})

	t.Run("foreign caller", func(t *testing.T) {
		err := f.svc.Widgets.Reorder(f.ctx, f.bob, domain.WidgetReorder{Positions: []domain.WidgetPosition{
			{ID: a.ID, Position: 1},
		}})
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	})

	t.Run("swap", func(t *testing.T) {
		err := f.svc.Widgets.Reorder(f.ctx, f.alice, domain.WidgetReorder{Positions: []domain.WidgetPosition{
			{ID: a.ID, Position: 1}, {ID: b.ID, Position: 0},
		}})
		require.NoError(t, err)

		list, err := f.svc.Widgets.List(f.ctx, f.alice, ws.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, b.ID, list[0].ID)
		assert.Equal(t, a.ID, list[1].ID)
	})
}

func TestWidgetService_ReorderSubset(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Dash")
	w0 := f.widget(t, ws.ID, "note", nil)
	w1 := f.widget(t, ws.ID, "note", nil)
	w2 := f.widget(t, ws.ID, "note", nil)
	require.Equal(t, []int{0, 1, 2}, []int{w0.Position, w1.Position, w2.Position})

	require.NoError(t, f.svc.Widgets.Reorder(f.ctx, f.alice, domain.WidgetReorder{Positions: []domain.WidgetPosition{
		{ID: w2.ID, Position: 0}, {ID: w0.ID, Position: 2},
	}}))

	list, err := f.svc.Widgets.List(f.ctx, f.alice, ws.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{w2.ID, w1.ID, w0.ID}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{list[0].Position, list[1].Position, list[2].Position})

	t.Run("foreign widget aborts the batch", func(t *testing.T) {
		foreign := f.workspace(t, f.bob, "Bob's")
		theirs, err := f.svc.Widgets.Create(f.ctx, f.bob, foreign.ID, domain.WidgetCreate{Kind: "note", Title: "Bob"})
		require.NoError(t, err)

		err = f.svc.Widgets.Reorder(f.ctx, f.alice, domain.WidgetReorder{Positions: []domain.WidgetPosition{
			{ID: w1.ID, Position: 9}, {ID: theirs.ID, Position: 0},
		}})
		assert.ErrorIs(t, err, domain.ErrAccessDenied)

		got, err := f.svc.Widgets.Get(f.ctx, f.alice, w1.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Position)
	})
}

func TestWidgetService_Refresh(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Dash")
	b := f.binding(t, f.alice, ws.ID, domain.BindingDrive, `{}`)
	doc := f.artifact(t, f.alice, b.ID, "document", "Please send the report by Friday. The weather was nice.")

	t.Run("summary", func(t *testing.T) {
		w := f.widget(t, ws.ID, domain.WidgetSummary, &doc.ID)
		f.text.On("Summarize", mock.Anything, *doc.Content, "document").Return("Report due Friday.", nil).Once()

		got, err := f.svc.Widgets.Refresh(f.ctx, f.alice, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "Report due Friday.", got.Content)

		stored, err := f.svc.Widgets.Get(f.ctx, f.alice, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "Report due Friday.", stored.Content)
	})

	t.Run("key points", func(t *testing.T) {
		w := f.widget(t, ws.ID, domain.WidgetKeyPoints, &doc.ID)
		f.text.On("Chat", mock.Anything, mock.MatchedBy(func(msg string) bool {
			return len(msg) > len(*doc.Content)
		}), "", []domain.ChatTurn(nil)).Return("- report", nil).Once()

		got, err := f.svc.Widgets.Refresh(f.ctx, f.alice, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "- report", got.Content)
	})

	t.Run("action items", func(t *testing.T) {
		w := f.widget(t, ws.ID, domain.WidgetActionItems, &doc.ID)

		got, err := f.svc.Widgets.Refresh(f.ctx, f.alice, w.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `["Please send the report by Friday"]`, got.Content)
	})

	t.Run("not refreshable", func(t *testing.T) {
		w := f.widget(t, ws.ID, "note", &doc.ID)

		_, err := f.svc.Widgets.Refresh(f.ctx, f.alice, w.ID)
		assert.ErrorIs(t, err, domain.ErrNotRefreshable)
	})

	t.Run("missing artifact", func(t *testing.T) {
		w := f.widget(t, ws.ID, domain.WidgetSummary, nil)

		_, err := f.svc.Widgets.Refresh(f.ctx, f.alice, w.ID)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("collaborator failure leaves content", func(t *testing.T) {
		w := f.widget(t, ws.ID, domain.WidgetSummary, &doc.ID)
		upstream := domain.NewCollaboratorError("llm", domain.CodeRateLimited, errors.New("slow down"))
		f.text.On("Summarize", mock.Anything, *doc.Content, "document").Return("", upstream).Once()

		_, err := f.svc.Widgets.Refresh(f.ctx, f.alice, w.ID)
		assert.Same(t, upstream, err)

		stored, err := f.svc.Widgets.Get(f.ctx, f.alice, w.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Content)
		assert.Equal(t, w.UpdatedAt.Unix(), stored.UpdatedAt.Unix())
	})

	f.text.AssertExpectations(t)
}

func TestWidgetService_Delete(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.alice, "Dash")
	w := f.widget(t, ws.ID, "note", nil)

	assert.ErrorIs(t, f.svc.Widgets.Delete(f.ctx, f.bob, w.ID), domain.ErrAccessDenied)
	require.NoError(t, f.svc.Widgets.Delete(f.ctx, f.alice, w.ID))
	_, err := f.svc.Widgets.Get(f.ctx, f.alice, w.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
