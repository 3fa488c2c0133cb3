package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/workspace-insights/internal/access"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/security"
)

// BindingService handles source binding operations
type BindingService struct {
	store   domain.Store
	guard   *access.Guard
	codec   configCodec
	sources domain.SourceRegistry
	cache   ListingCache
}

// NewBindingService creates a new binding service. cache may be nil.
func NewBindingService(
	store domain.Store,
	encryptor *security.Encryptor,
	sources domain.SourceRegistry,
	cache ListingCache,
) *BindingService {
	return &BindingService{
		store:   store,
		guard:   access.NewGuard(store.Workspaces()),
		codec:   configCodec{encryptor: encryptor},
		sources: sources,
		cache:   cache,
	}
}

// List returns a workspace's bindings in creation order
func (s *BindingService) List(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID) ([]domain.SourceBinding, error) {
	if _, err := s.guard.Workspace(ctx, workspaceID, identity); err != nil {
		return nil, err
	}

	bindings, err := s.store.Bindings().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}
	if err := s.codec.openAll(bindings); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Create validates the typed config, seals it and stores a new disconnected binding
func (s *BindingService) Create(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID, input domain.BindingCreate) (*domain.SourceBinding, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	cfg, err := domain.DecodeBindingConfig(input.Type, input.Config)
	if err != nil {
		return nil, err
	}

	sealed, err := s.codec.seal(cfg)
	if err != nil {
		return nil, err
	}

	at := now()
	binding := &domain.SourceBinding{
		ID:           uuid.New(),
		WorkspaceID:  workspaceID,
		Type:         input.Type,
		Name:         input.Name,
		Config:       cfg,
		SealedConfig: sealed,
		Status:       domain.StatusDisconnected,
		CreatedAt:    at,
		UpdatedAt:    at,
	}

	err = s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := s.guard.With(repos).Workspace(ctx, workspaceID, identity); err != nil {
			return err
		}
		if err := repos.Bindings().Create(ctx, binding); err != nil {
			return fmt.Errorf("failed to create binding: %w", err)
		}
		return touch(ctx, repos, workspaceID, at)
	})
	if err != nil {
		return nil, err
	}

	return binding, nil
}

// Get returns a binding with its decrypted config
func (s *BindingService) Get(ctx context.Context, identity *domain.Identity, id uuid.UUID) (*domain.SourceBinding, error) {
	if _, err := s.guard.Entity(ctx, domain.EntityBinding, id, identity); err != nil {
		return nil, err
	}
	return s.load(ctx, s.store, id)
}

// Update changes a binding's name, config or status
func (s *BindingService) Update(ctx context.Context, identity *domain.Identity, id uuid.UUID, input domain.BindingUpdate) (*domain.SourceBinding, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of: connected disconnected error")
	}

	var binding *domain.SourceBinding
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := s.guard.With(repos).Entity(ctx, domain.EntityBinding, id, identity); err != nil {
			return err
		}

		b, err := s.load(ctx, repos, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			b.Name = *input.Name
		}
		if len(input.Config) > 0 {
			cfg, err := domain.DecodeBindingConfig(b.Type, input.Config)
			if err != nil {
				return err
			}
			sealed, err := s.codec.seal(cfg)
			if err != nil {
				return err
			}
			b.Config = cfg
			b.SealedConfig = sealed
		}
		if input.Status != nil {
			b.Status = *input.Status
		}
		b.UpdatedAt = now()

		if err := repos.Bindings().Update(ctx, b); err != nil {
			return fmt.Errorf("failed to update binding: %w", err)
		}
		binding = b
		return touch(ctx, repos, b.WorkspaceID, b.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return binding, nil
}

// Delete deletes a binding and its artifacts
func (s *BindingService) Delete(ctx context.Context, identity *domain.Identity, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		ws, err := s.guard.With(repos).Entity(ctx, domain.EntityBinding, id, identity)
		if err != nil {
			return err
		}
		if err := repos.Bindings().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete binding: %w", err)
		}
		return touch(ctx, repos, ws.ID, now())
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

// Test checks the binding against its source and records the resulting status.
// A failed check is returned after the error status is stored.
func (s *BindingService) Test(ctx context.Context, identity *domain.Identity, id uuid.UUID) (*domain.SourceBinding, error) {
	binding, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	src, err := s.sources.Source(binding.Type)
	if err != nil {
		return nil, err
	}

	checkErr := src.Check(ctx, binding.Config)

	binding.Status = domain.StatusConnected
	if checkErr != nil {
		binding.Status = domain.StatusError
	}
	binding.UpdatedAt = now()

	if err := s.store.Bindings().Update(ctx, binding); err != nil {
		return nil, fmt.Errorf("failed to update binding status: %w", err)
	}

	if checkErr != nil {
		log.Warn().Err(checkErr).Str("binding_id", id.String()).Msg("binding check failed")
		return nil, checkErr
	}
	return binding, nil
}

func (s *BindingService) load(ctx context.Context, repos domain.Repositories, id uuid.UUID) (*domain.SourceBinding, error) {
	binding, err := repos.Bindings().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get binding: %w", err)
	}
	if binding == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.codec.open(binding); err != nil {
		return nil, err
	}
	return binding, nil
}

func (s *BindingService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Str("binding_id", id.String()).Msg("failed to invalidate listing cache")
	}
}

func touch(ctx context.Context, repos domain.Repositories, workspaceID uuid.UUID, at time.Time) error {
	if err := repos.Workspaces().Touch(ctx, workspaceID, at); err != nil {
		return fmt.Errorf("failed to touch workspace: %w", err)
	}
	return nil
}
