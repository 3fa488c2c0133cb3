package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// BindingRepository handles source binding data access.
// Config is stored only in its sealed form; callers decrypt.
type BindingRepository struct {
	c conn
}

const bindingColumns = `id, workspace_id, type, name, config_encrypted, status, created_at, updated_at`

func scanBinding(row rowScanner) (*domain.SourceBinding, error) {
	var binding domain.SourceBinding
	if err := row.Scan(
		&binding.ID,
		&binding.WorkspaceID,
		&binding.Type,
		&binding.Name,
		&binding.SealedConfig,
		&binding.Status,
		&binding.CreatedAt,
		&binding.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &binding, nil
}

// Create creates a new source binding
func (r *BindingRepository) Create(ctx context.Context, binding *domain.SourceBinding) error {
	query := `INSERT INTO source_bindings (` + bindingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.c.exec(ctx, query,
		binding.ID,
		binding.WorkspaceID,
		string(binding.Type),
		binding.Name,
		binding.SealedConfig,
		string(binding.Status),
		utc(binding.CreatedAt),
		utc(binding.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create binding: %w", err)
	}

	return nil
}

// GetByID retrieves a binding by ID
func (r *BindingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SourceBinding, error) {
	query := `SELECT ` + bindingColumns + ` FROM source_bindings WHERE id = ?`

	binding, err := scanBinding(r.c.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get binding: %w", err)
	}

	return binding, nil
}

// ListByWorkspace lists a workspace's bindings in creation order
func (r *BindingRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.SourceBinding, error) {
	query := `
		SELECT ` + bindingColumns + `
		FROM source_bindings
		WHERE workspace_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.c.query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}
	defer rows.Close()

	bindings := []domain.SourceBinding{}
	for rows.Next() {
		binding, err := scanBinding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan binding: %w", err)
		}
		bindings = append(bindings, *binding)
	}

	return bindings, rows.Err()
}

// Update rewrites a binding's name, sealed config and status
func (r *BindingRepository) Update(ctx context.Context, binding *domain.SourceBinding) error {
	query := `
		UPDATE source_bindings
		SET name = ?, config_encrypted = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.c.exec(ctx, query,
		binding.Name,
		binding.SealedConfig,
		string(binding.Status),
		utc(binding.UpdatedAt),
		binding.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update binding: %w", err)
	}

	return nil
}

// Delete deletes a binding along with its artifacts
func (r *BindingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.c.exec(ctx, `DELETE FROM source_bindings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete binding: %w", err)
	}
	return nil
}
