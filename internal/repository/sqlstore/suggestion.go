package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// SuggestionRepository handles suggestion data access
type SuggestionRepository struct {
	c conn
}

const suggestionColumns = `id, workspace_id, source_binding_id, artifact_id, title, description, action_kind, action_config, position, created_at`

func scanSuggestion(row rowScanner) (*domain.Suggestion, error) {
	var suggestion domain.Suggestion
	var bindingID, artifactID uuid.NullUUID
	var configJSON []byte

	if err := row.Scan(
		&suggestion.ID,
		&suggestion.WorkspaceID,
		&bindingID,
		&artifactID,
		&suggestion.Title,
		&suggestion.Description,
		&suggestion.ActionKind,
		&configJSON,
		&suggestion.Position,
		&suggestion.CreatedAt,
	); err != nil {
		return nil, err
	}

	config, err := decodeJSON(configJSON)
	if err != nil {
		return nil, err
	}
	suggestion.SourceBindingID = uuidPtr(bindingID)
	suggestion.ArtifactID = uuidPtr(artifactID)
	suggestion.ActionConfig = config
	return &suggestion, nil
}

// CreateBatch inserts suggestions in order
func (r *SuggestionRepository) CreateBatch(ctx context.Context, suggestions []domain.Suggestion) error {
	query := `INSERT INTO suggestions (` + suggestionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, s := range suggestions {
		config, err := encodeJSON(s.ActionConfig)
		if err != nil {
			return err
		}

		_, err = r.c.exec(ctx, query,
			s.ID,
			s.WorkspaceID,
			nullUUID(s.SourceBindingID),
			nullUUID(s.ArtifactID),
			s.Title,
			s.Description,
			s.ActionKind,
			config,
			s.Position,
			utc(s.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to create suggestion: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a suggestion by ID
func (r *SuggestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM suggestions WHERE id = ?`

	suggestion, err := scanSuggestion(r.c.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}

	return suggestion, nil
}

// ListByWorkspace lists a workspace's suggestions by position
func (r *SuggestionRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Suggestion, error) {
	query := `
		SELECT ` + suggestionColumns + `
		FROM suggestions
		WHERE workspace_id = ?
		ORDER BY position ASC, created_at ASC
	`

	rows, err := r.c.query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := []domain.Suggestion{}
	for rows.Next() {
		suggestion, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, *suggestion)
	}

	return suggestions, rows.Err()
}

// Delete deletes a suggestion
func (r *SuggestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.c.exec(ctx, `DELETE FROM suggestions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete suggestion: %w", err)
	}
	return nil
}

// DeleteByWorkspace deletes every suggestion of a workspace
func (r *SuggestionRepository) DeleteByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	res, err := r.c.exec(ctx, `DELETE FROM suggestions WHERE workspace_id = ?`, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete suggestions: %w", err)
	}
	return res.RowsAffected()
}
