package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// ArtifactRepository handles artifact data access
type ArtifactRepository struct {
	c conn
}

const artifactColumns = `id, source_binding_id, workspace_id, name, kind, external_id, content, metadata, created_at, updated_at`

func scanArtifact(row rowScanner) (*domain.Artifact, error) {
	var artifact domain.Artifact
	var content sql.NullString
	var metadataJSON []byte

	if err := row.Scan(
		&artifact.ID,
		&artifact.SourceBindingID,
		&artifact.WorkspaceID,
		&artifact.Name,
		&artifact.Kind,
		&artifact.ExternalID,
		&content,
		&metadataJSON,
		&artifact.CreatedAt,
		&artifact.UpdatedAt,
	); err != nil {
		return nil, err
	}

	metadata, err := decodeJSON(metadataJSON)
	if err != nil {
		return nil, err
	}
	artifact.Content = stringPtr(content)
	artifact.Metadata = metadata
	return &artifact, nil
}

// Create creates a new artifact
func (r *ArtifactRepository) Create(ctx context.Context, artifact *domain.Artifact) error {
	metadata, err := encodeJSON(artifact.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO artifacts (` + artifactColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.c.exec(ctx, query,
		artifact.ID,
		artifact.SourceBindingID,
		artifact.WorkspaceID,
		artifact.Name,
		artifact.Kind,
		artifact.ExternalID,
		nullString(artifact.Content),
		metadata,
		utc(artifact.CreatedAt),
		utc(artifact.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}

	return nil
}

// GetByID retrieves an artifact by ID
func (r *ArtifactRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE id = ?`

	artifact, err := scanArtifact(r.c.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	return artifact, nil
}

// ListByBinding lists a binding's artifacts in creation order
func (r *ArtifactRepository) ListByBinding(ctx context.Context, bindingID uuid.UUID) ([]domain.Artifact, error) {
	return r.list(ctx, `source_binding_id = ?`, bindingID)
}

// ListByWorkspace lists every artifact of a workspace in creation order
func (r *ArtifactRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Artifact, error) {
	return r.list(ctx, `workspace_id = ?`, workspaceID)
}

func (r *ArtifactRepository) list(ctx context.Context, where string, arg uuid.UUID) ([]domain.Artifact, error) {
	query := `
		SELECT ` + artifactColumns + `
		FROM artifacts
		WHERE ` + where + `
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.c.query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []domain.Artifact{}
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, *artifact)
	}

	return artifacts, rows.Err()
}

// Delete deletes an artifact
func (r *ArtifactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.c.exec(ctx, `DELETE FROM artifacts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}
