package domain

import (
	"time"

	"github.com/google/uuid"
)

// Widget kinds with refresh behavior
const (
	WidgetSummary     = "summary"
	WidgetKeyPoints   = "key_points"
	WidgetActionItems = "action_items"
)

// Widget is a persisted dashboard tile
type Widget struct {
	ID          uuid.UUID      `json:"id"`
	WorkspaceID uuid.UUID      `json:"workspace_id"`
	ArtifactID  *uuid.UUID     `json:"artifact_id"`
	Kind        string         `json:"kind"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Config      map[string]any `json:"config"`
	Position    int            `json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// WidgetCreate represents widget creation data
type WidgetCreate struct {
	Kind       string         `json:"kind" validate:"required,max=100"`
	Title      string         `json:"title" validate:"required,max=255"`
	Content    string         `json:"content"`
	Config     map[string]any `json:"config,omitempty"`
	ArtifactID *uuid.UUID     `json:"artifact_id,omitempty"`
}

// WidgetPatch is a partial widget update; Config is merged, not replaced
type WidgetPatch struct {
	Title   *string        `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Content *string        `json:"content,omitempty"`
	Config  map[string]any `json:"config,omitempty"`
}

// WidgetPosition assigns a display position to one widget
type WidgetPosition struct {
	ID       uuid.UUID `json:"id" validate:"required"`
	Position int       `json:"position"`
}

// WidgetReorder is the body of a bulk reorder call
type WidgetReorder struct {
	Positions []WidgetPosition `json:"positions" validate:"required,min=1,dive"`
}

// MergeConfig shallow-merges patch into base: keys in patch override, others stay
func MergeConfig(base, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
