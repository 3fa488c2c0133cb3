package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/access"
	"github.com/Rrens/workspace-insights/internal/domain"
)

// TaskService handles task operations
type TaskService struct {
	store domain.Store
	guard *access.Guard
}

// NewTaskService creates a new task service
func NewTaskService(store domain.Store) *TaskService {
	return &TaskService{
		store: store,
		guard: access.NewGuard(store.Workspaces()),
	}
}

// List returns a workspace's tasks in creation order
func (s *TaskService) List(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID) ([]domain.Task, error) {
	if _, err := s.guard.Workspace(ctx, workspaceID, identity); err != nil {
		return nil, err
	}

	tasks, err := s.store.Tasks().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create adds an open task to a workspace
func (s *TaskService) Create(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID, input domain.TaskCreate) (*domain.Task, error) {
	input.Text = strings.TrimSpace(input.Text)
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	at := now()
	task := &domain.Task{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Text:        input.Text,
		Source:      input.Source,
		CreatedAt:   at,
		UpdatedAt:   at,
	}

	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := s.guard.With(repos).Workspace(ctx, workspaceID, identity); err != nil {
			return err
		}
		if err := repos.Tasks().Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return touch(ctx, repos, workspaceID, at)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Patch changes a task's text or completion state
func (s *TaskService) Patch(ctx context.Context, identity *domain.Identity, id uuid.UUID, input domain.TaskPatch) (*domain.Task, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	var task *domain.Task
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		ws, err := s.guard.With(repos).Entity(ctx, domain.EntityTask, id, identity)
		if err != nil {
			return err
		}

		t, err := repos.Tasks().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}
		if t == nil {
			return domain.ErrNotFound
		}

		if input.Text != nil {
			t.Text = *input.Text
		}
		if input.Completed != nil {
			t.Completed = *input.Completed
		}
		t.UpdatedAt = now()

		if err := repos.Tasks().Update(ctx, t); err != nil {
			return err
		}
		task = t
		return touch(ctx, repos, ws.ID, t.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Delete deletes a task
func (s *TaskService) Delete(ctx context.Context, identity *domain.Identity, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(repos domain.Repositories) error {
		ws, err := s.guard.With(repos).Entity(ctx, domain.EntityTask, id, identity)
		if err != nil {
			return err
		}
		if err := repos.Tasks().Delete(ctx, id); err != nil {
			return err
		}
		return touch(ctx, repos, ws.ID, now())
	})
}
