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

// WidgetRepository handles widget data access
type WidgetRepository struct {
	c conn
}

const widgetColumns = `id, workspace_id, artifact_id, kind, title, content, config, position, created_at, updated_at`

func scanWidget(row rowScanner) (*domain.Widget, error) {
	var widget domain.Widget
	var artifactID uuid.NullUUID
	var configJSON []byte

	if err := row.Scan(
		&widget.ID,
		&widget.WorkspaceID,
		&artifactID,
		&widget.Kind,
		&widget.Title,
		&widget.Content,
		&configJSON,
		&widget.Position,
		&widget.CreatedAt,
		&widget.UpdatedAt,
	); err != nil {
		return nil, err
	}

	config, err := decodeJSON(configJSON)
	if err != nil {
		return nil, err
	}
	widget.ArtifactID = uuidPtr(artifactID)
	widget.Config = config
	return &widget, nil
}

// Create creates a new widget
func (r *WidgetRepository) Create(ctx context.Context, widget *domain.Widget) error {
	config, err := encodeJSON(widget.Config)
	if err != nil {
		return err
	}

	query := `INSERT INTO widgets (` + widgetColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.c.exec(ctx, query,
		widget.ID,
		widget.WorkspaceID,
		nullUUID(widget.ArtifactID),
		widget.Kind,
		widget.Title,
		widget.Content,
		config,
		widget.Position,
		utc(widget.CreatedAt),
		utc(widget.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create widget: %w", err)
	}

	return nil
}

// GetByID retrieves a widget by ID
func (r *WidgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Widget, error) {
	query := `SELECT ` + widgetColumns + ` FROM widgets WHERE id = ?`

	widget, err := scanWidget(r.c.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get widget: %w", err)
	}

	return widget, nil
}

// ListByWorkspace lists widgets by position, most recently updated first on ties
func (r *WidgetRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Widget, error) {
	query := `
		SELECT ` + widgetColumns + `
		FROM widgets
		WHERE workspace_id = ?
		ORDER BY position ASC, updated_at DESC
	`

	rows, err := r.c.query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list widgets: %w", err)
	}
	defer rows.Close()

	widgets := []domain.Widget{}
	for rows.Next() {
		widget, err := scanWidget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan widget: %w", err)
		}
		widgets = append(widgets, *widget)
	}

	return widgets, rows.Err()
}

// NextPosition returns one past the highest position in the workspace, or 0
func (r *WidgetRepository) NextPosition(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	var next int
	err := r.c.queryRow(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM widgets WHERE workspace_id = ?`, workspaceID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next widget position: %w", err)
	}
	return next, nil
}

// Update rewrites a widget's title, content and config
func (r *WidgetRepository) Update(ctx context.Context, widget *domain.Widget) error {
	config, err := encodeJSON(widget.Config)
	if err != nil {
		return err
	}

	query := `
		UPDATE widgets
		SET title = ?, content = ?, config = ?, updated_at = ?
		WHERE id = ?
	`

	_, err = r.c.exec(ctx, query,
		widget.Title,
		widget.Content,
		config,
		utc(widget.UpdatedAt),
		widget.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update widget: %w", err)
	}

	return nil
}

// UpdateContent overwrites only content and updated_at.
// It returns domain.ErrNotFound when the widget no longer exists.
func (r *WidgetRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, at time.Time) error {
	res, err := r.c.exec(ctx, `UPDATE widgets SET content = ?, updated_at = ? WHERE id = ?`, content, utc(at), id)
	if err != nil {
		return fmt.Errorf("failed to update widget content: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update widget content: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetPosition sets one widget's position
func (r *WidgetRepository) SetPosition(ctx context.Context, id uuid.UUID, position int) error {
	if _, err := r.c.exec(ctx, `UPDATE widgets SET position = ? WHERE id = ?`, position, id); err != nil {
		return fmt.Errorf("failed to set widget position: %w", err)
	}
	return nil
}

// Delete deletes a widget
func (r *WidgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.c.exec(ctx, `DELETE FROM widgets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete widget: %w", err)
	}
	return nil
}
