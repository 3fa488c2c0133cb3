package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Single-row reads return (nil, nil) when the row does not exist.

// UserRepository defines the interface for user storage
type UserRepository interface {
	UpsertByExternalID(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// WorkspaceRepository defines the interface for workspace storage
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	GetByChild(ctx context.Context, kind EntityKind, childID uuid.UUID) (*Workspace, error)
	ListVisible(ctx context.Context, userID *uuid.UUID) ([]Workspace, error)
	Update(ctx context.Context, workspace *Workspace) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BindingRepository defines the interface for source binding storage
type BindingRepository interface {
	Create(ctx context.Context, binding *SourceBinding) error
	GetByID(ctx context.Context, id uuid.UUID) (*SourceBinding, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]SourceBinding, error)
	Update(ctx context.Context, binding *SourceBinding) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ArtifactRepository defines the interface for artifact storage
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *Artifact) error
	GetByID(ctx context.Context, id uuid.UUID) (*Artifact, error)
	ListByBinding(ctx context.Context, bindingID uuid.UUID) ([]Artifact, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Artifact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SuggestionRepository defines the interface for suggestion storage
type SuggestionRepository interface {
	CreateBatch(ctx context.Context, suggestions []Suggestion) error
	GetByID(ctx context.Context, id uuid.UUID) (*Suggestion, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Suggestion, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error)
}

// WidgetRepository defines the interface for widget storage
type WidgetRepository interface {
	Create(ctx context.Context, widget *Widget) error
	GetByID(ctx context.Context, id uuid.UUID) (*Widget, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Widget, error)
	NextPosition(ctx context.Context, workspaceID uuid.UUID) (int, error)
	Update(ctx context.Context, widget *Widget) error
	UpdateContent(ctx context.Context, id uuid.UUID, content string, at time.Time) error
	SetPosition(ctx context.Context, id uuid.UUID, position int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository defines the interface for task storage
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories groups every repository bound to one connection or transaction
type Repositories interface {
	Users() UserRepository
	Sessions() SessionRepository
	Workspaces() WorkspaceRepository
	Bindings() BindingRepository
	Artifacts() ArtifactRepository
	Suggestions() SuggestionRepository
	Widgets() WidgetRepository
	Tasks() TaskRepository
}

// Store is the entity store: repositories plus a unit of work
type Store interface {
	Repositories

	// WithTx runs fn inside one transaction. It commits when fn returns nil
	// and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Repositories) error) error
}
