package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is a to-do item, created manually or promoted from an action item
type Task struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	Source      *string   `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskCreate represents task creation data
type TaskCreate struct {
	Text   string  `json:"text" validate:"required,max=2000"`
	Source *string `json:"source,omitempty" validate:"omitempty,max=500"`
}

// TaskPatch is a partial task update
type TaskPatch struct {
	Text      *string `json:"text,omitempty" validate:"omitempty,min=1,max=2000"`
	Completed *bool   `json:"completed,omitempty"`
}
