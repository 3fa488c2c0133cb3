package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// WorkspaceRepository handles workspace data access
type WorkspaceRepository struct {
	c conn
}

const workspaceColumns = `w.id, w.name, w.description, w.owner_user_id, w.created_at, w.updated_at`

// childTables maps an entity kind to the table holding its workspace_id
var childTables = map[domain.EntityKind]string{
	domain.EntityBinding:    "source_bindings",
	domain.EntityArtifact:   "artifacts",
	domain.EntitySuggestion: "suggestions",
	domain.EntityWidget:     "widgets",
	domain.EntityTask:       "tasks",
}

func scanWorkspace(row rowScanner) (*domain.Workspace, error) {
	var workspace domain.Workspace
	var owner uuid.NullUUID

	if err := row.Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Description,
		&owner,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
	); err != nil {
		return nil, err
	}

	workspace.Owner = domain.OwnershipFor(uuidPtr(owner))
	return &workspace, nil
}

// Create creates a new workspace
func (r *WorkspaceRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	query := `
		INSERT INTO workspaces (id, name, description, owner_user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.c.exec(ctx, query,
		workspace.ID,
		workspace.Name,
		workspace.Description,
		nullUUID(domain.OwnerID(workspace.Owner)),
		utc(workspace.CreatedAt),
		utc(workspace.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	return nil
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces w WHERE w.id = ?`

	workspace, err := scanWorkspace(r.c.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return workspace, nil
}

// GetByChild resolves the workspace that owns the given child entity
func (r *WorkspaceRepository) GetByChild(ctx context.Context, kind domain.EntityKind, childID uuid.UUID) (*domain.Workspace, error) {
	table, ok := childTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind: %q", kind)
	}

	query := `
		SELECT ` + workspaceColumns + `
		FROM workspaces w
		INNER JOIN ` + table + ` c ON c.workspace_id = w.id
		WHERE c.id = ?
	`

	workspace, err := scanWorkspace(r.c.queryRow(ctx, query, childID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve %s workspace: %w", kind, err)
	}

	return workspace, nil
}

// ListVisible lists public workspaces plus those owned by userID, most recently updated first
func (r *WorkspaceRepository) ListVisible(ctx context.Context, userID *uuid.UUID) ([]domain.Workspace, error) {
	query := `
		SELECT ` + workspaceColumns + `
		FROM workspaces w
		WHERE w.owner_user_id IS NULL OR w.owner_user_id = ?
		ORDER BY w.updated_at DESC, w.created_at DESC
	`

	rows, err := r.c.query(ctx, query, nullUUID(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := []domain.Workspace{}
	for rows.Next() {
		workspace, err := scanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, *workspace)
	}

	return workspaces, rows.Err()
}

// Update updates a workspace's name and description
func (r *WorkspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) error {
	query := `
		UPDATE workspaces
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.c.exec(ctx, query,
		workspace.Name,
		workspace.Description,
		utc(workspace.UpdatedAt),
		workspace.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}

	return nil
}

// Touch bumps a workspace's updated_at
func (r *WorkspaceRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.c.exec(ctx, `UPDATE workspaces SET updated_at = ? WHERE id = ?`, utc(at), id); err != nil {
		return fmt.Errorf("failed to touch workspace: %w", err)
	}
	return nil
}

// Delete deletes a workspace and, by cascade, everything it owns
func (r *WorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.c.exec(ctx, `DELETE FROM workspaces WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return nil
}
