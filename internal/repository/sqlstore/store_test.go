package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/workspace-insights/internal/domain"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Migrate())
	return store
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, newSQLiteStore)
}

func TestRebind(t *testing.T) {
	pg := conn{dialect: "postgres"}
	lite := conn{dialect: "sqlite"}

	query := `UPDATE widgets SET position = ? WHERE id = ?`
	assert.Equal(t, `UPDATE widgets SET position = $1 WHERE id = $2`, pg.rebind(query))
	assert.Equal(t, query, lite.rebind(query))
}

func TestMigrate_Idempotent(t *testing.T) {
	store := newSQLiteStore(t)

	require.NoError(t, store.Migrate())

	version, dirty, err := store.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

// runStoreSuite exercises the repository contract against any dialect
func runStoreSuite(t *testing.T, open func(t *testing.T) *Store) {
	t.Run("users upsert by external id", func(t *testing.T) {
		testUserUpsert(t, open(t))
	})
	t.Run("sessions expire", func(t *testing.T) {
		testSessions(t, open(t))
	})
	t.Run("workspace visibility", func(t *testing.T) {
		testWorkspaceVisibility(t, open(t))
	})
	t.Run("child resolves owning workspace", func(t *testing.T) {
		testGetByChild(t, open(t))
	})
	t.Run("workspace delete cascades", func(t *testing.T) {
		testCascade(t, open(t))
	})
	t.Run("widget ordering and positions", func(t *testing.T) {
		testWidgets(t, open(t))
	})
	t.Run("suggestions batch", func(t *testing.T) {
		testSuggestions(t, open(t))
	})
	t.Run("tasks", func(t *testing.T) {
		testTasks(t, open(t))
	})
	t.Run("transaction rollback", func(t *testing.T) {
		testTxRollback(t, open(t))
	})
}

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s *Store, externalID string) *domain.User {
	t.Helper()
	user, err := s.Users().UpsertByExternalID(context.Background(), &domain.User{
		Email:       externalID + "@example.com",
		DisplayName: externalID,
		ExternalID:  externalID,
	})
	require.NoError(t, err)
	return user
}

func seedWorkspace(t *testing.T, s *Store, owner *uuid.UUID, updatedAt time.Time) *domain.Workspace {
	t.Helper()
	ws := &domain.Workspace{
		ID:        uuid.New(),
		Name:      "Launch",
		Owner:     domain.OwnershipFor(owner),
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	require.NoError(t, s.Workspaces().Create(context.Background(), ws))
	return ws
}

func seedBinding(t *testing.T, s *Store, workspaceID uuid.UUID) *domain.SourceBinding {
	t.Helper()
	binding := &domain.SourceBinding{
		ID:           uuid.New(),
		WorkspaceID:  workspaceID,
		Type:         domain.BindingIssueTracker,
		Name:         "Sprint board",
		Status:       domain.StatusConnected,
		SealedConfig: []byte{0x01, 0x02, 0x03},
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	require.NoError(t, s.Bindings().Create(context.Background(), binding))
	return binding
}

func seedArtifact(t *testing.T, s *Store, binding *domain.SourceBinding, content string) *domain.Artifact {
	t.Helper()
	artifact := &domain.Artifact{
		ID:              uuid.New(),
		SourceBindingID: binding.ID,
		WorkspaceID:     binding.WorkspaceID,
		Name:            "Roadmap",
		Kind:            "document",
		Content:         &content,
		Metadata:        map[string]any{"pages": float64(3)},
		CreatedAt:       baseTime,
		UpdatedAt:       baseTime,
	}
	require.NoError(t, s.Artifacts().Create(context.Background(), artifact))
	return artifact
}

func seedWidget(t *testing.T, s *Store, workspaceID uuid.UUID, artifactID *uuid.UUID, position int, updatedAt time.Time) *domain.Widget {
	t.Helper()
	widget := &domain.Widget{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		ArtifactID:  artifactID,
		Kind:        domain.WidgetSummary,
		Title:       "Summary",
		Config:      map[string]any{"a": float64(1)},
		Position:    position,
		CreatedAt:   updatedAt,
		UpdatedAt:   updatedAt,
	}
	require.NoError(t, s.Widgets().Create(context.Background(), widget))
	return widget
}

func testUserUpsert(t *testing.T, s *Store) {
	ctx := context.Background()

	first := seedUser(t, s, "google-123")

	second, err := s.Users().UpsertByExternalID(ctx, &domain.User{
		Email:       "renamed@example.com",
		DisplayName: "Renamed",
		ExternalID:  "google-123",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Renamed", second.DisplayName)
	assert.Equal(t, "renamed@example.com", second.Email)

	got, err := s.Users().GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.DisplayName)

	missing, err := s.Users().GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testSessions(t *testing.T, s *Store) {
	ctx := context.Background()
	user := seedUser(t, s, "session-user")

	live := &domain.Session{ID: uuid.New(), UserID: user.ID, ExpiresAt: baseTime.Add(time.Hour), CreatedAt: baseTime}
	stale := &domain.Session{ID: uuid.New(), UserID: user.ID, ExpiresAt: baseTime.Add(-time.Minute), CreatedAt: baseTime.Add(-time.Hour)}
	require.NoError(t, s.Sessions().Create(ctx, live))
	require.NoError(t, s.Sessions().Create(ctx, stale))

	got, err := s.Sessions().Get(ctx, live.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)
	assert.True(t, got.ExpiresAt.Equal(live.ExpiresAt))

	n, err := s.Sessions().DeleteExpired(ctx, baseTime)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	gone, err := s.Sessions().Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, s.Sessions().Delete(ctx, live.ID))
	gone, err = s.Sessions().Get(ctx, live.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func testWorkspaceVisibility(t *testing.T, s *Store) {
	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	public := seedWorkspace(t, s, nil, baseTime)
	owned := seedWorkspace(t, s, &alice.ID, baseTime.Add(time.Minute))
	seedWorkspace(t, s, &bob.ID, baseTime.Add(2*time.Minute))

	visible, err := s.Workspaces().ListVisible(ctx, &alice.ID)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, owned.ID, visible[0].ID)
	assert.Equal(t, public.ID, visible[1].ID)
	assert.Equal(t, domain.OwnedBy{UserID: alice.ID}, visible[0].Owner)
	assert.Equal(t, domain.PublicOwnership{}, visible[1].Owner)

	anonymous, err := s.Workspaces().ListVisible(ctx, nil)
	require.NoError(t, err)
	require.Len(t, anonymous, 1)
	assert.Equal(t, public.ID, anonymous[0].ID)

	require.NoError(t, s.Workspaces().Touch(ctx, public.ID, baseTime.Add(time.Hour)))
	visible, err = s.Workspaces().ListVisible(ctx, &alice.ID)
	require.NoError(t, err)
	assert.Equal(t, public.ID, visible[0].ID)

	public.Name = "Renamed"
	public.Description = "now with a description"
	public.UpdatedAt = baseTime.Add(2 * time.Hour)
	require.NoError(t, s.Workspaces().Update(ctx, public))

	got, err := s.Workspaces().GetByID(ctx, public.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "now with a description", got.Description)
}

func testGetByChild(t *testing.T, s *Store) {
	ctx := context.Background()
	ws := seedWorkspace(t, s, nil, baseTime)
	binding := seedBinding(t, s, ws.ID)
	artifact := seedArtifact(t, s, binding, "body")
	widget := seedWidget(t, s, ws.ID, &artifact.ID, 0, baseTime)

	task := &domain.Task{ID: uuid.New(), WorkspaceID: ws.ID, Text: "ship it", CreatedAt: baseTime, UpdatedAt: baseTime}
	require.NoError(t, s.Tasks().Create(ctx, task))

	suggestion := domain.Suggestion{ID: uuid.New(), WorkspaceID: ws.ID, SourceBindingID: &binding.ID, Title: "Identify Blockers", ActionKind: "analyze", CreatedAt: baseTime}
	require.NoError(t, s.Suggestions().CreateBatch(ctx, []domain.Suggestion{suggestion}))

	cases := map[domain.EntityKind]uuid.UUID{
		domain.EntityBinding:    binding.ID,
		domain.EntityArtifact:   artifact.ID,
		domain.EntityWidget:     widget.ID,
		domain.EntityTask:       task.ID,
		domain.EntitySuggestion: suggestion.ID,
	}
	for kind, id := range cases {
		got, err := s.Workspaces().GetByChild(ctx, kind, id)
		require.NoError(t, err, kind)
		require.NotNil(t, got, kind)
		assert.Equal(t, ws.ID, got.ID, kind)

		missing, err := s.Workspaces().GetByChild(ctx, kind, uuid.New())
		require.NoError(t, err, kind)
		assert.Nil(t, missing, kind)
	}

	_, err := s.Workspaces().GetByChild(ctx, domain.EntityKind("unknown"), uuid.New())
	assert.Error(t, err)
}

func testCascade(t *testing.T, s *Store) {
	ctx := context.Background()
	ws := seedWorkspace(t, s, nil, baseTime)
	binding := seedBinding(t, s, ws.ID)
	artifact := seedArtifact(t, s, binding, "body")
	widget := seedWidget(t, s, ws.ID, &artifact.ID, 0, baseTime)

	// deleting the artifact keeps the widget but clears its reference
	require.NoError(t, s.Artifacts().Delete(ctx, artifact.ID))
	got, err := s.Widgets().GetByID(ctx, widget.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.ArtifactID)

	second := seedArtifact(t, s, binding, "again")
	require.NoError(t, s.Bindings().Delete(ctx, binding.ID))
	gone, err := s.Artifacts().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, s.Workspaces().Delete(ctx, ws.ID))
	got, err = s.Widgets().GetByID(ctx, widget.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testWidgets(t *testing.T, s *Store) {
	ctx := context.Background()
	ws := seedWorkspace(t, s, nil, baseTime)

	next, err := s.Widgets().NextPosition(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	older := seedWidget(t, s, ws.ID, nil, 1, baseTime)
	newer := seedWidget(t, s, ws.ID, nil, 1, baseTime.Add(time.Minute))
	first := seedWidget(t, s, ws.ID, nil, 0, baseTime)

	next, err = s.Widgets().NextPosition(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	widgets, err := s.Widgets().ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, widgets, 3)
	assert.Equal(t, []uuid.UUID{first.ID, newer.ID, older.ID}, []uuid.UUID{widgets[0].ID, widgets[1].ID, widgets[2].ID})
	assert.Equal(t, map[string]any{"a": float64(1)}, widgets[0].Config)

	require.NoError(t, s.Widgets().SetPosition(ctx, older.ID, -5))
	widgets, err = s.Widgets().ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, widgets[0].ID)

	require.NoError(t, s.Widgets().UpdateContent(ctx, first.ID, "fresh", baseTime.Add(time.Hour)))
	got, err := s.Widgets().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Content)
	assert.True(t, got.UpdatedAt.Equal(baseTime.Add(time.Hour)))

	err = s.Widgets().UpdateContent(ctx, uuid.New(), "x", baseTime)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got.Title = "Renamed"
	got.Config = map[string]any{"a": float64(1), "b": "two"}
	got.UpdatedAt = baseTime.Add(2 * time.Hour)
	require.NoError(t, s.Widgets().Update(ctx, got))
	got, err = s.Widgets().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "two", got.Config["b"])
}

func testSuggestions(t *testing.T, s *Store) {
	ctx := context.Background()
	ws := seedWorkspace(t, s, nil, baseTime)
	binding := seedBinding(t, s, ws.ID)
	artifact := seedArtifact(t, s, binding, "body")

	batch := []domain.Suggestion{
		{ID: uuid.New(), WorkspaceID: ws.ID, SourceBindingID: &binding.ID, Title: "Summarize Board Activity", ActionKind: "summarize", ActionConfig: map[string]any{"widget_kind": "summary"}, Position: 0, CreatedAt: baseTime},
		{ID: uuid.New(), WorkspaceID: ws.ID, SourceBindingID: &binding.ID, ArtifactID: &artifact.ID, Title: "Summarize Document", ActionKind: "summarize", Position: 1, CreatedAt: baseTime},
	}
	require.NoError(t, s.Suggestions().CreateBatch(ctx, batch))

	listed, err := s.Suggestions().ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Nil(t, listed[0].ArtifactID)
	assert.Equal(t, "summary", listed[0].ActionConfig["widget_kind"])
	require.NotNil(t, listed[1].ArtifactID)
	assert.Equal(t, artifact.ID, *listed[1].ArtifactID)
	assert.Equal(t, map[string]any{}, listed[1].ActionConfig)

	n, err := s.Suggestions().DeleteByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func testTasks(t *testing.T, s *Store) {
	ctx := context.Background()
	ws := seedWorkspace(t, s, nil, baseTime)
	source := "email: Budget"

	task := &domain.Task{ID: uuid.New(), WorkspaceID: ws.ID, Text: "Send the report", Source: &source, CreatedAt: baseTime, UpdatedAt: baseTime}
	require.NoError(t, s.Tasks().Create(ctx, task))

	task.Completed = true
	task.UpdatedAt = baseTime.Add(time.Minute)
	require.NoError(t, s.Tasks().Update(ctx, task))

	tasks, err := s.Tasks().ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
	require.NotNil(t, tasks[0].Source)
	assert.Equal(t, source, *tasks[0].Source)

	require.NoError(t, s.Tasks().Delete(ctx, task.ID))
	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testTxRollback(t *testing.T, s *Store) {
	ctx := context.Background()
	ws := seedWorkspace(t, s, nil, baseTime)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(repos domain.Repositories) error {
		task := &domain.Task{ID: uuid.New(), WorkspaceID: ws.ID, Text: "never stored", CreatedAt: baseTime, UpdatedAt: baseTime}
		if err := repos.Tasks().Create(ctx, task); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	tasks, err := s.Tasks().ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	err = s.WithTx(ctx, func(repos domain.Repositories) error {
		task := &domain.Task{ID: uuid.New(), WorkspaceID: ws.ID, Text: "stored", CreatedAt: baseTime, UpdatedAt: baseTime}
		return repos.Tasks().Create(ctx, task)
	})
	require.NoError(t, err)

	tasks, err = s.Tasks().ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
