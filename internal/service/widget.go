package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/access"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/extract"
	"github.com/Rrens/workspace-insights/internal/llm"
)

// WidgetService handles widget operations
type WidgetService struct {
	store     domain.Store
	guard     *access.Guard
	text      domain.TextGenerator
	extractor extract.Extractor
}

// NewWidgetService creates a new widget service
func NewWidgetService(store domain.Store, text domain.TextGenerator, extractor extract.Extractor) *WidgetService {
	return &WidgetService{
		store:     store,
		guard:     access.NewGuard(store.Workspaces()),
		text:      text,
		extractor: extractor,
	}
}

// List returns a workspace's widgets by position
func (s *WidgetService) List(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID) ([]domain.Widget, error) {
	if _, err := s.guard.Workspace(ctx, workspaceID, identity); err != nil {
		return nil, err
	}

	widgets, err := s.store.Widgets().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list widgets: %w", err)
	}
	return widgets, nil
}

// Create appends a widget after the workspace's last one
func (s *WidgetService) Create(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID, input domain.WidgetCreate) (*domain.Widget, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	var widget *domain.Widget
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := s.guard.With(repos).Workspace(ctx, workspaceID, identity); err != nil {
			return err
		}

		if input.ArtifactID != nil {
			artifact, err := repos.Artifacts().GetByID(ctx, *input.ArtifactID)
			if err != nil {
				return fmt.Errorf("failed to get artifact: %w", err)
			}
			if artifact == nil || artifact.WorkspaceID != workspaceID {
				return domain.NewValidationError("artifact_id", "artifact does not belong to this workspace")
			}
		}

		position, err := repos.Widgets().NextPosition(ctx, workspaceID)
		if err != nil {
			return err
		}

		config := input.Config
		if config == nil {
			config = map[string]any{}
		}

		at := now()
		widget = &domain.Widget{
			ID:          uuid.New(),
			WorkspaceID: workspaceID,
			ArtifactID:  input.ArtifactID,
			Kind:        input.Kind,
			Title:       input.Title,
			Content:     input.Content,
			Config:      config,
			Position:    position,
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		if err := repos.Widgets().Create(ctx, widget); err != nil {
			return err
		}
		return touch(ctx, repos, workspaceID, at)
	})
	if err != nil {
		return nil, err
	}

	return widget, nil
}

// Get returns one widget
func (s *WidgetService) Get(ctx context.Context, identity *domain.Identity, id uuid.UUID) (*domain.Widget, error) {
	if _, err := s.guard.Entity(ctx, domain.EntityWidget, id, identity); err != nil {
		return nil, err
	}
	return getWidget(ctx, s.store, id)
}

// Patch changes a widget's title or content and merges its config
func (s *WidgetService) Patch(ctx context.Context, identity *domain.Identity, id uuid.UUID, input domain.WidgetPatch) (*domain.Widget, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	var widget *domain.Widget
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		ws, err := s.guard.With(repos).Entity(ctx, domain.EntityWidget, id, identity)
		if err != nil {
			return err
		}

		w, err := getWidget(ctx, repos, id)
		if err != nil {
			return err
		}

		if input.Title != nil {
			w.Title = *input.Title
		}
		if input.Content != nil {
			w.Content = *input.Content
		}
		if input.Config != nil {
			w.Config = domain.MergeConfig(w.Config, input.Config)
		}
		w.UpdatedAt = now()

		if err := repos.Widgets().Update(ctx, w); err != nil {
			return err
		}
		widget = w
		return touch(ctx, repos, ws.ID, w.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	return widget, nil
}

// Delete deletes a widget
func (s *WidgetService) Delete(ctx context.Context, identity *domain.Identity, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(repos domain.Repositories) error {
		ws, err := s.guard.With(repos).Entity(ctx, domain.EntityWidget, id, identity)
		if err != nil {
			return err
		}
		if err := repos.Widgets().Delete(ctx, id); err != nil {
			return err
		}
		return touch(ctx, repos, ws.ID, now())
	})
}

// Reorder assigns positions to several widgets at once. Every widget is
// resolved and authorized before any position is written.
func (s *WidgetService) Reorder(ctx context.Context, identity *domain.Identity, input domain.WidgetReorder) error {
	if err := domain.Validate(input); err != nil {
		return err
	}

	seen := make(map[uuid.UUID]struct{}, len(input.Positions))
	for _, p := range input.Positions {
		if _, dup := seen[p.ID]; dup {
			return domain.NewValidationError("positions", fmt.Sprintf("duplicate widget id %s", p.ID))
		}
		seen[p.ID] = struct{}{}
	}

	return s.store.WithTx(ctx, func(repos domain.Repositories) error {
		guard := s.guard.With(repos)
		var touched []uuid.UUID
		for _, p := range input.Positions {
			ws, err := guard.Entity(ctx, domain.EntityWidget, p.ID, identity)
			if err != nil {
				return err
			}
			if !slices.Contains(touched, ws.ID) {
				touched = append(touched, ws.ID)
			}
		}

		for _, p := range input.Positions {
			if err := repos.Widgets().SetPosition(ctx, p.ID, p.Position); err != nil {
				return err
			}
		}

		at := now()
		for _, id := range touched {
			if err := touch(ctx, repos, id, at); err != nil {
				return err
			}
		}
		return nil
	})
}

// Refresh regenerates a widget's content from its artifact. The collaborator
// is called with no transaction open; on failure the widget is left unchanged.
func (s *WidgetService) Refresh(ctx context.Context, identity *domain.Identity, id uuid.UUID) (*domain.Widget, error) {
	widget, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	switch widget.Kind {
	case domain.WidgetSummary, domain.WidgetKeyPoints, domain.WidgetActionItems:
	default:
		return nil, domain.ErrNotRefreshable
	}

	if widget.ArtifactID == nil {
		return nil, domain.NewValidationError("artifact_id", "widget has no artifact")
	}
	artifact, err := s.store.Artifacts().GetByID(ctx, *widget.ArtifactID)
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	if artifact == nil {
		return nil, domain.NewValidationError("artifact_id", "artifact no longer exists")
	}
	if !artifact.HasContent() {
		return nil, domain.NewValidationError("content", "artifact has no content")
	}

	content, err := s.render(ctx, widget.Kind, artifact)
	if err != nil {
		return nil, err
	}

	at := now()
	err = s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if err := repos.Widgets().UpdateContent(ctx, id, content, at); err != nil {
			return err
		}
		return touch(ctx, repos, widget.WorkspaceID, at)
	})
	if err != nil {
		return nil, err
	}

	widget.Content = content
	widget.UpdatedAt = at
	return widget, nil
}

func (s *WidgetService) render(ctx context.Context, kind string, artifact *domain.Artifact) (string, error) {
	content := *artifact.Content

	switch kind {
	case domain.WidgetSummary:
		return s.text.Summarize(ctx, content, artifact.Kind)
	case domain.WidgetKeyPoints:
		return s.text.Chat(ctx, llm.KeyPointsPrompt(content), "", nil)
	default:
		items := extract.Scan(s.extractor, []domain.MailMessage{{ID: artifact.ExternalID, Body: content}})
		actions := make([]string, 0, len(items))
		for _, item := range items {
			actions = append(actions, item.Action)
		}
		data, err := json.Marshal(actions)
		if err != nil {
			return "", fmt.Errorf("failed to encode action items: %w", err)
		}
		return string(data), nil
	}
}

func getWidget(ctx context.Context, repos domain.Repositories, id uuid.UUID) (*domain.Widget, error) {
	widget, err := repos.Widgets().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get widget: %w", err)
	}
	if widget == nil {
		return nil, domain.ErrNotFound
	}
	return widget, nil
}
