// Package access decides whether a caller may touch a workspace and
// everything the workspace owns.
package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// Authorize applies the ownership rule: public workspaces are open to
// everyone, owned workspaces only to their owner.
func Authorize(ws *domain.Workspace, identity *domain.Identity) error {
	switch owner := ws.Owner.(type) {
	case domain.PublicOwnership:
		return nil
	case domain.OwnedBy:
		if identity != nil && identity.UserID == owner.UserID {
			return nil
		}
		return domain.ErrAccessDenied
	default:
		return domain.ErrAccessDenied
	}
}

// Guard resolves the owning workspace of an entity and authorizes the caller
type Guard struct {
	workspaces domain.WorkspaceRepository
}

// NewGuard creates a new guard
func NewGuard(workspaces domain.WorkspaceRepository) *Guard {
	return &Guard{workspaces: workspaces}
}

// Workspace loads a workspace and authorizes the caller against it
func (g *Guard) Workspace(ctx context.Context, id uuid.UUID, identity *domain.Identity) (*domain.Workspace, error) {
	ws, err := g.workspaces.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return check(ws, identity)
}

// Entity resolves the workspace owning a child entity and authorizes the caller
func (g *Guard) Entity(ctx context.Context, kind domain.EntityKind, id uuid.UUID, identity *domain.Identity) (*domain.Workspace, error) {
	ws, err := g.workspaces.GetByChild(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", kind, err)
	}
	return check(ws, identity)
}

// With returns a guard reading through repos, for use inside a transaction
func (g *Guard) With(repos domain.Repositories) *Guard {
	return &Guard{workspaces: repos.Workspaces()}
}

func check(ws *domain.Workspace, identity *domain.Identity) (*domain.Workspace, error) {
	if ws == nil {
		return nil, domain.ErrNotFound
	}
	if err := Authorize(ws, identity); err != nil {
		return nil, err
	}
	return ws, nil
}
