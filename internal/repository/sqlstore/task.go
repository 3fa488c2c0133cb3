package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// TaskRepository handles task data access
type TaskRepository struct {
	c conn
}

const taskColumns = `id, workspace_id, text, completed, source, created_at, updated_at`

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var source sql.NullString

	if err := row.Scan(
		&task.ID,
		&task.WorkspaceID,
		&task.Text,
		&task.Completed,
		&source,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Source = stringPtr(source)
	return &task, nil
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.c.exec(ctx, query,
		task.ID,
		task.WorkspaceID,
		task.Text,
		task.Completed,
		nullString(task.Source),
		utc(task.CreatedAt),
		utc(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	task, err := scanTask(r.c.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// ListByWorkspace lists a workspace's tasks in creation order
func (r *TaskRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE workspace_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.c.query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// Update rewrites a task's text and completion state
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `UPDATE tasks SET text = ?, completed = ?, updated_at = ? WHERE id = ?`

	if _, err := r.c.exec(ctx, query, task.Text, task.Completed, utc(task.UpdatedAt), task.ID); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete deletes a task
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.c.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
