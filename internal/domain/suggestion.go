package domain

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion is a derived, regenerable recommended action
type Suggestion struct {
	ID              uuid.UUID      `json:"id"`
	WorkspaceID     uuid.UUID      `json:"workspace_id"`
	SourceBindingID *uuid.UUID     `json:"source_binding_id"`
	ArtifactID      *uuid.UUID     `json:"artifact_id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	ActionKind      string         `json:"action_kind"`
	ActionConfig    map[string]any `json:"action_config"`
	Position        int            `json:"position"`
	CreatedAt       time.Time      `json:"created_at"`
}

// SuggestionAccept optionally overrides the title of the widget created from a suggestion
type SuggestionAccept struct {
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
}
