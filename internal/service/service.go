// Package service implements the workspace operations exposed by the API.
// Every operation authorizes the caller against the owning workspace before
// touching any entity, and multi-statement writes run in one transaction.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/extract"
	"github.com/Rrens/workspace-insights/internal/security"
)

// ListingCache caches source listings per binding
type ListingCache interface {
	Get(ctx context.Context, bindingID uuid.UUID) ([]domain.SourceItem, error)
	Set(ctx context.Context, bindingID uuid.UUID, items []domain.SourceItem) error
	Invalidate(ctx context.Context, bindingID uuid.UUID) error
}

// configCodec seals binding configs at rest
type configCodec struct {
	encryptor *security.Encryptor
}

func (c configCodec) seal(cfg domain.BindingConfig) ([]byte, error) {
	sealed, err := c.encryptor.EncryptJSON(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt binding config: %w", err)
	}
	return sealed, nil
}

// open decrypts and decodes the stored config of b in place
func (c configCodec) open(b *domain.SourceBinding) error {
	raw, err := c.encryptor.DecryptJSON(b.SealedConfig)
	if err != nil {
		return fmt.Errorf("failed to decrypt binding config: %w", err)
	}

	cfg, err := domain.DecodeBindingConfig(b.Type, raw)
	if err != nil {
		return fmt.Errorf("failed to decode binding config: %w", err)
	}
	b.Config = cfg
	return nil
}

func (c configCodec) openAll(bindings []domain.SourceBinding) error {
	for i := range bindings {
		if err := c.open(&bindings[i]); err != nil {
			return err
		}
	}
	return nil
}

func userID(identity *domain.Identity) *uuid.UUID {
	if identity == nil {
		return nil
	}
	id := identity.UserID
	return &id
}

func now() time.Time {
	return time.Now().UTC()
}

// Deps are the collaborators shared by the services
type Deps struct {
	Store      domain.Store
	Encryptor  *security.Encryptor
	Sources    domain.SourceRegistry
	Text       domain.TextGenerator
	Identity   domain.IdentityProvider
	States     *security.StateManager
	Extractor  extract.Extractor
	Cache      ListingCache
	SessionTTL time.Duration
	Limits     ArtifactLimits
}

// Services groups every service behind the API
type Services struct {
	Auth        *AuthService
	Workspaces  *WorkspaceService
	Bindings    *BindingService
	Artifacts   *ArtifactService
	Suggestions *SuggestionService
	Widgets     *WidgetService
	Tasks       *TaskService
	ActionItems *ActionItemService
	Chat        *ChatService
}

// New wires every service from deps
func New(d Deps) *Services {
	if d.Extractor == nil {
		d.Extractor = extract.NewPatternExtractor()
	}

	bindings := NewBindingService(d.Store, d.Encryptor, d.Sources, d.Cache)

	return &Services{
		Auth:        NewAuthService(d.Store, d.Identity, d.States, d.SessionTTL),
		Workspaces:  NewWorkspaceService(d.Store, d.Encryptor),
		Bindings:    bindings,
		Artifacts:   NewArtifactService(d.Store, bindings, d.Sources, d.Text, d.Cache, d.Limits),
		Suggestions: NewSuggestionService(d.Store, d.Encryptor),
		Widgets:     NewWidgetService(d.Store, d.Text, d.Extractor),
		Tasks:       NewTaskService(d.Store),
		ActionItems: NewActionItemService(d.Store, bindings, d.Sources, d.Extractor),
		Chat:        NewChatService(d.Store, d.Encryptor, d.Text),
	}
}
