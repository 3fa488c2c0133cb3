package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/workspace-insights/internal/access"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/textutil"
)

const (
	defaultBrowseLimit = 50
	maxBrowseLimit     = 200
)

// ArtifactLimits bounds stored and uploaded artifact content. Zero means unlimited.
type ArtifactLimits struct {
	MaxContentBytes int
	MaxUploadBytes  int64
}

// ArtifactService handles artifact operations
type ArtifactService struct {
	store    domain.Store
	guard    *access.Guard
	bindings *BindingService
	sources  domain.SourceRegistry
	text     domain.TextGenerator
	cache    ListingCache
	limits   ArtifactLimits
}

// NewArtifactService creates a new artifact service. cache may be nil.
func NewArtifactService(
	store domain.Store,
	bindings *BindingService,
	sources domain.SourceRegistry,
	text domain.TextGenerator,
	cache ListingCache,
	limits ArtifactLimits,
) *ArtifactService {
	return &ArtifactService{
		store:    store,
		guard:    access.NewGuard(store.Workspaces()),
		bindings: bindings,
		sources:  sources,
		text:     text,
		cache:    cache,
		limits:   limits,
	}
}

// List returns a binding's artifacts in creation order
func (s *ArtifactService) List(ctx context.Context, identity *domain.Identity, bindingID uuid.UUID) ([]domain.Artifact, error) {
	if _, err := s.guard.Entity(ctx, domain.EntityBinding, bindingID, identity); err != nil {
		return nil, err
	}

	artifacts, err := s.store.Artifacts().ListByBinding(ctx, bindingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return artifacts, nil
}

// Create stores an artifact supplied by the caller
func (s *ArtifactService) Create(ctx context.Context, identity *domain.Identity, bindingID uuid.UUID, input domain.ArtifactCreate) (*domain.Artifact, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	return s.create(ctx, identity, bindingID, input)
}

// Import fetches one item through the binding's source and stores it
func (s *ArtifactService) Import(ctx context.Context, identity *domain.Identity, bindingID uuid.UUID, input domain.ArtifactImport) (*domain.Artifact, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	binding, err := s.bindings.Get(ctx, identity, bindingID)
	if err != nil {
		return nil, err
	}

	src, err := s.sources.Source(binding.Type)
	if err != nil {
		return nil, err
	}

	doc, err := src.Fetch(ctx, binding.Config, input.ExternalID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = input.ExternalID
	}
	kind := doc.Kind
	if kind == "" {
		kind = "document"
	}

	content := doc.Content
	return s.create(ctx, identity, bindingID, domain.ArtifactCreate{
		Name:       name,
		Kind:       kind,
		ExternalID: input.ExternalID,
		Content:    &content,
		Metadata:   doc.Metadata,
	})
}

// Upload extracts text from an uploaded file and stores it as an artifact
func (s *ArtifactService) Upload(ctx context.Context, identity *domain.Identity, bindingID uuid.UUID, filename string, r io.Reader) (*domain.Artifact, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, domain.NewValidationError("file", "field is required")
	}

	if _, err := s.guard.Entity(ctx, domain.EntityBinding, bindingID, identity); err != nil {
		return nil, err
	}

	if s.limits.MaxUploadBytes > 0 {
		r = io.LimitReader(r, s.limits.MaxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if s.limits.MaxUploadBytes > 0 && int64(len(data)) > s.limits.MaxUploadBytes {
		return nil, domain.NewValidationError("file", fmt.Sprintf("must be at most %d bytes", s.limits.MaxUploadBytes))
	}

	text, kind, err := textutil.Extract(filename, data)
	if err != nil {
		return nil, domain.NewValidationError("file", err.Error())
	}

	return s.create(ctx, identity, bindingID, domain.ArtifactCreate{
		Name:       filename,
		Kind:       kind,
		ExternalID: filename,
		Content:    &text,
		Metadata: map[string]any{
			"filename": filename,
			"size":     len(data),
		},
	})
}

// Get returns one artifact
func (s *ArtifactService) Get(ctx context.Context, identity *domain.Identity, id uuid.UUID) (*domain.Artifact, error) {
	if _, err := s.guard.Entity(ctx, domain.EntityArtifact, id, identity); err != nil {
		return nil, err
	}
	return getArtifact(ctx, s.store, id)
}

// Delete deletes an artifact
func (s *ArtifactService) Delete(ctx context.Context, identity *domain.Identity, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(repos domain.Repositories) error {
		ws, err := s.guard.With(repos).Entity(ctx, domain.EntityArtifact, id, identity)
		if err != nil {
			return err
		}
		if err := repos.Artifacts().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete artifact: %w", err)
		}
		return touch(ctx, repos, ws.ID, now())
	})
}

// Browse lists the items available in a binding's source. With a listing
// cache the full listing is fetched once and served truncated to limit.
func (s *ArtifactService) Browse(ctx context.Context, identity *domain.Identity, bindingID uuid.UUID, limit int) ([]domain.SourceItem, error) {
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	if limit > maxBrowseLimit {
		limit = maxBrowseLimit
	}

	binding, err := s.bindings.Get(ctx, identity, bindingID)
	if err != nil {
		return nil, err
	}

	fetch := limit
	if s.cache != nil {
		items, err := s.cache.Get(ctx, bindingID)
		if err != nil {
			log.Warn().Err(err).Str("binding_id", bindingID.String()).Msg("listing cache read failed")
		} else if items != nil {
			return head(items, limit), nil
		}
		fetch = maxBrowseLimit
	}

	src, err := s.sources.Source(binding.Type)
	if err != nil {
		return nil, err
	}

	items, err := src.List(ctx, binding.Config, fetch)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.SourceItem{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, bindingID, items); err != nil {
			log.Warn().Err(err).Str("binding_id", bindingID.String()).Msg("listing cache write failed")
		}
	}

	return head(items, limit), nil
}

func head(items []domain.SourceItem, n int) []domain.SourceItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Summarize asks the text generator to summarize an artifact's content.
// Nothing is persisted.
func (s *ArtifactService) Summarize(ctx context.Context, identity *domain.Identity, id uuid.UUID) (string, error) {
	artifact, err := s.Get(ctx, identity, id)
	if err != nil {
		return "", err
	}
	if !artifact.HasContent() {
		return "", domain.NewValidationError("content", "artifact has no content")
	}

	return s.text.Summarize(ctx, *artifact.Content, artifact.Kind)
}

func (s *ArtifactService) create(ctx context.Context, identity *domain.Identity, bindingID uuid.UUID, input domain.ArtifactCreate) (*domain.Artifact, error) {
	metadata := make(map[string]any, len(input.Metadata)+1)
	for k, v := range input.Metadata {
		metadata[k] = v
	}

	content := input.Content
	if content != nil && s.limits.MaxContentBytes > 0 {
		if cut, truncated := textutil.TruncateBytes(*content, s.limits.MaxContentBytes); truncated {
			content = &cut
			metadata["truncated"] = true
		}
	}

	at := now()
	artifact := &domain.Artifact{
		ID:              uuid.New(),
		SourceBindingID: bindingID,
		Name:            input.Name,
		Kind:            input.Kind,
		ExternalID:      input.ExternalID,
		Content:         content,
		Metadata:        metadata,
		CreatedAt:       at,
		UpdatedAt:       at,
	}

	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		ws, err := s.guard.With(repos).Entity(ctx, domain.EntityBinding, bindingID, identity)
		if err != nil {
			return err
		}

		artifact.WorkspaceID = ws.ID
		if err := repos.Artifacts().Create(ctx, artifact); err != nil {
			return fmt.Errorf("failed to create artifact: %w", err)
		}
		return touch(ctx, repos, ws.ID, at)
	})
	if err != nil {
		return nil, err
	}

	return artifact, nil
}

func getArtifact(ctx context.Context, repos domain.Repositories, id uuid.UUID) (*domain.Artifact, error) {
	artifact, err := repos.Artifacts().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	if artifact == nil {
		return nil, domain.ErrNotFound
	}
	return artifact, nil
}
