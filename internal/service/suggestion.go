package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/access"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/metrics"
	"github.com/Rrens/workspace-insights/internal/security"
	"github.com/Rrens/workspace-insights/internal/suggestion"
)

// SuggestionService handles suggestion operations
type SuggestionService struct {
	store domain.Store
	guard *access.Guard
	codec configCodec
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(store domain.Store, encryptor *security.Encryptor) *SuggestionService {
	return &SuggestionService{
		store: store,
		guard: access.NewGuard(store.Workspaces()),
		codec: configCodec{encryptor: encryptor},
	}
}

// Regenerate replaces a workspace's suggestions with a fresh batch derived
// from its current bindings and artifacts
func (s *SuggestionService) Regenerate(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID) ([]domain.Suggestion, error) {
	var batch []domain.Suggestion

	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := s.guard.With(repos).Workspace(ctx, workspaceID, identity); err != nil {
			return err
		}

		bindings, err := repos.Bindings().ListByWorkspace(ctx, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to list bindings: %w", err)
		}
		if err := s.codec.openAll(bindings); err != nil {
			return err
		}

		artifacts, err := repos.Artifacts().ListByWorkspace(ctx, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to list artifacts: %w", err)
		}

		if _, err := repos.Suggestions().DeleteByWorkspace(ctx, workspaceID); err != nil {
			return err
		}

		batch = suggestion.Generate(workspaceID, bindings, artifacts)
		at := now()
		for i := range batch {
			batch[i].ID = uuid.New()
			batch[i].CreatedAt = at
		}

		if err := repos.Suggestions().CreateBatch(ctx, batch); err != nil {
			return err
		}
		return touch(ctx, repos, workspaceID, at)
	})
	if err != nil {
		return nil, err
	}

	metrics.SuggestionsGenerated(len(batch))
	return batch, nil
}

// List returns a workspace's suggestions by position
func (s *SuggestionService) List(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID) ([]domain.Suggestion, error) {
	if _, err := s.guard.Workspace(ctx, workspaceID, identity); err != nil {
		return nil, err
	}

	suggestions, err := s.store.Suggestions().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return suggestions, nil
}

// Delete dismisses one suggestion
func (s *SuggestionService) Delete(ctx context.Context, identity *domain.Identity, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(repos domain.Repositories) error {
		ws, err := s.guard.With(repos).Entity(ctx, domain.EntitySuggestion, id, identity)
		if err != nil {
			return err
		}
		if err := repos.Suggestions().Delete(ctx, id); err != nil {
			return err
		}
		return touch(ctx, repos, ws.ID, now())
	})
}

// Accept turns a suggestion into a widget appended to the workspace
func (s *SuggestionService) Accept(ctx context.Context, identity *domain.Identity, id uuid.UUID, input domain.SuggestionAccept) (*domain.Widget, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	var widget *domain.Widget
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := s.guard.With(repos).Entity(ctx, domain.EntitySuggestion, id, identity); err != nil {
			return err
		}

		sg, err := repos.Suggestions().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get suggestion: %w", err)
		}
		if sg == nil {
			return domain.ErrNotFound
		}

		kind, _ := sg.ActionConfig["widget_kind"].(string)
		if kind == "" {
			return domain.NewValidationError("action_config", "suggestion has no widget kind")
		}

		title := sg.Title
		if input.Title != nil {
			title = *input.Title
		}

		config := domain.MergeConfig(sg.ActionConfig, map[string]any{"suggestion_id": sg.ID.String()})

		position, err := repos.Widgets().NextPosition(ctx, sg.WorkspaceID)
		if err != nil {
			return err
		}

		at := now()
		widget = &domain.Widget{
			ID:          uuid.New(),
			WorkspaceID: sg.WorkspaceID,
			ArtifactID:  sg.ArtifactID,
			Kind:        kind,
			Title:       title,
			Config:      config,
			Position:    position,
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		if err := repos.Widgets().Create(ctx, widget); err != nil {
			return err
		}
		return touch(ctx, repos, sg.WorkspaceID, at)
	})
	if err != nil {
		return nil, err
	}

	return widget, nil
}
