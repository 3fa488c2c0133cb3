package domain

import (
	"time"

	"github.com/google/uuid"
)

// Artifact is a unit of content imported from a source binding
type Artifact struct {
	ID              uuid.UUID      `json:"id"`
	SourceBindingID uuid.UUID      `json:"source_binding_id"`
	WorkspaceID     uuid.UUID      `json:"workspace_id"`
	Name            string         `json:"name"`
	Kind            string         `json:"kind"`
	ExternalID      string         `json:"external_id"`
	Content         *string        `json:"content,omitempty"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// HasContent reports whether the artifact carries a non-empty cached body
func (a *Artifact) HasContent() bool {
	return a.Content != nil && *a.Content != ""
}

// ArtifactCreate represents artifact creation data
type ArtifactCreate struct {
	Name       string         `json:"name" validate:"required,max=500"`
	Kind       string         `json:"kind" validate:"required,max=100"`
	ExternalID string         `json:"external_id" validate:"max=500"`
	Content    *string        `json:"content,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ArtifactImport asks the binding's connector to fetch one item
type ArtifactImport struct {
	ExternalID string `json:"external_id" validate:"required,max=500"`
}
