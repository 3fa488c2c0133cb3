package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Ownership decides who may access a workspace. It is either PublicOwnership
// or OwnedBy; callers switch on the concrete type.
type Ownership interface {
	ownership()
}

// PublicOwnership marks a legacy workspace visible and editable by anyone
type PublicOwnership struct{}

// OwnedBy restricts a workspace to a single user
type OwnedBy struct {
	UserID uuid.UUID
}

func (PublicOwnership) ownership() {}
func (OwnedBy) ownership()         {}

// OwnershipFor returns OwnedBy for a non-nil user id and PublicOwnership otherwise
func OwnershipFor(userID *uuid.UUID) Ownership {
	if userID == nil {
		return PublicOwnership{}
	}
	return OwnedBy{UserID: *userID}
}

// OwnerID returns the owning user id, or nil for public workspaces
func OwnerID(o Ownership) *uuid.UUID {
	if owned, ok := o.(OwnedBy); ok {
		id := owned.UserID
		return &id
	}
	return nil
}

// Workspace groups source bindings, artifacts, suggestions, widgets and tasks
type Workspace struct {
	ID          uuid.UUID
	Name        string
	Description string
	Owner       Ownership
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type workspaceJSON struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OwnerUserID *uuid.UUID `json:"owner_user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MarshalJSON renders the owner as a nullable owner_user_id
func (w Workspace) MarshalJSON() ([]byte, error) {
	return json.Marshal(workspaceJSON{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		OwnerUserID: OwnerID(w.Owner),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (w *Workspace) UnmarshalJSON(data []byte) error {
	var raw workspaceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.ID = raw.ID
	w.Name = raw.Name
	w.Description = raw.Description
	w.Owner = OwnershipFor(raw.OwnerUserID)
	w.CreatedAt = raw.CreatedAt
	w.UpdatedAt = raw.UpdatedAt
	return nil
}

// WorkspaceCreate represents workspace creation data
type WorkspaceCreate struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

// WorkspaceUpdate represents workspace update data
type WorkspaceUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=4000"`
}

// WorkspaceDetail is a workspace with its bindings, artifacts and suggestions
type WorkspaceDetail struct {
	Workspace   *Workspace      `json:"workspace"`
	Bindings    []SourceBinding `json:"bindings"`
	Artifacts   []Artifact      `json:"artifacts"`
	Suggestions []Suggestion    `json:"suggestions"`
}

// EntityKind names a workspace-scoped entity table
type EntityKind string

const (
	EntityBinding    EntityKind = "binding"
	EntityArtifact   EntityKind = "artifact"
	EntitySuggestion EntityKind = "suggestion"
	EntityWidget     EntityKind = "widget"
	EntityTask       EntityKind = "task"
)
