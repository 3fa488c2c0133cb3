package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/access"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/security"
)

// WorkspaceService handles workspace operations
type WorkspaceService struct {
	store domain.Store
	guard *access.Guard
	codec configCodec
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(store domain.Store, encryptor *security.Encryptor) *WorkspaceService {
	return &WorkspaceService{
		store: store,
		guard: access.NewGuard(store.Workspaces()),
		codec: configCodec{encryptor: encryptor},
	}
}

// List returns the public workspaces plus the caller's own, most recently updated first
func (s *WorkspaceService) List(ctx context.Context, identity *domain.Identity) ([]domain.Workspace, error) {
	workspaces, err := s.store.Workspaces().ListVisible(ctx, userID(identity))
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// Create creates a workspace owned by the caller, or a public one for anonymous callers
func (s *WorkspaceService) Create(ctx context.Context, identity *domain.Identity, input domain.WorkspaceCreate) (*domain.Workspace, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	at := now()
	workspace := &domain.Workspace{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Owner:       domain.OwnershipFor(userID(identity)),
		CreatedAt:   at,
		UpdatedAt:   at,
	}

	if err := s.store.Workspaces().Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return workspace, nil
}

// Get returns a workspace with its bindings, artifacts and suggestions
func (s *WorkspaceService) Get(ctx context.Context, identity *domain.Identity, id uuid.UUID) (*domain.WorkspaceDetail, error) {
	workspace, err := s.guard.Workspace(ctx, id, identity)
	if err != nil {
		return nil, err
	}

	bindings, err := s.store.Bindings().ListByWorkspace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}
	if err := s.codec.openAll(bindings); err != nil {
		return nil, err
	}

	artifacts, err := s.store.Artifacts().ListByWorkspace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	suggestions, err := s.store.Suggestions().ListByWorkspace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}

	return &domain.WorkspaceDetail{
		Workspace:   workspace,
		Bindings:    bindings,
		Artifacts:   artifacts,
		Suggestions: suggestions,
	}, nil
}

// Update renames or re-describes a workspace
func (s *WorkspaceService) Update(ctx context.Context, identity *domain.Identity, id uuid.UUID, input domain.WorkspaceUpdate) (*domain.Workspace, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	var workspace *domain.Workspace
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		ws, err := s.guard.With(repos).Workspace(ctx, id, identity)
		if err != nil {
			return err
		}

		if input.Name != nil {
			ws.Name = *input.Name
		}
		if input.Description != nil {
			ws.Description = *input.Description
		}
		ws.UpdatedAt = now()

		if err := repos.Workspaces().Update(ctx, ws); err != nil {
			return fmt.Errorf("failed to update workspace: %w", err)
		}
		workspace = ws
		return nil
	})
	if err != nil {
		return nil, err
	}

	return workspace, nil
}

// Delete deletes a workspace and everything it owns
func (s *WorkspaceService) Delete(ctx context.Context, identity *domain.Identity, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := s.guard.With(repos).Workspace(ctx, id, identity); err != nil {
			return err
		}
		if err := repos.Workspaces().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete workspace: %w", err)
		}
		return nil
	})
}
