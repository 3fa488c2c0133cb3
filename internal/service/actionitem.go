package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/access"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/extract"
)

const (
	defaultMessageLimit = 20
	maxMessageLimit     = 50
)

// ActionItemService extracts action items from mailboxes and artifacts
type ActionItemService struct {
	store     domain.Store
	guard     *access.Guard
	bindings  *BindingService
	sources   domain.SourceRegistry
	extractor extract.Extractor
}

// NewActionItemService creates a new action item service
func NewActionItemService(
	store domain.Store,
	bindings *BindingService,
	sources domain.SourceRegistry,
	extractor extract.Extractor,
) *ActionItemService {
	return &ActionItemService{
		store:     store,
		guard:     access.NewGuard(store.Workspaces()),
		bindings:  bindings,
		sources:   sources,
		extractor: extractor,
	}
}

// Extract scans the most recent messages of a mailbox binding
func (s *ActionItemService) Extract(ctx context.Context, identity *domain.Identity, bindingID uuid.UUID, limit int) ([]domain.ActionItem, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	binding, err := s.bindings.Get(ctx, identity, bindingID)
	if err != nil {
		return nil, err
	}

	mailbox, err := s.sources.Mailbox(binding.Type)
	if err != nil {
		return nil, err
	}

	msgs, err := mailbox.RecentMessages(ctx, binding.Config, limit)
	if err != nil {
		return nil, err
	}

	return extract.Scan(s.extractor, msgs), nil
}

// ExtractArtifact scans an artifact's stored content
func (s *ActionItemService) ExtractArtifact(ctx context.Context, identity *domain.Identity, artifactID uuid.UUID) ([]domain.ActionItem, error) {
	if _, err := s.guard.Entity(ctx, domain.EntityArtifact, artifactID, identity); err != nil {
		return nil, err
	}

	artifact, err := getArtifact(ctx, s.store, artifactID)
	if err != nil {
		return nil, err
	}
	if !artifact.HasContent() {
		return nil, domain.NewValidationError("content", "artifact has no content")
	}

	from, _ := artifact.Metadata["from"].(string)
	msg := domain.MailMessage{
		ID:      artifact.ExternalID,
		From:    from,
		Subject: artifact.Name,
		Date:    artifact.UpdatedAt,
		Body:    *artifact.Content,
	}

	return extract.Scan(s.extractor, []domain.MailMessage{msg}), nil
}

// Promote turns an action item into a task of the workspace
func (s *ActionItemService) Promote(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID, input domain.ActionItemPromote) (*domain.Task, error) {
	input.Action = strings.TrimSpace(input.Action)
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	var source *string
	if subject := strings.TrimSpace(input.Subject); subject != "" {
		src := "email: " + subject
		source = &src
	}

	at := now()
	task := &domain.Task{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Text:        input.Action,
		Source:      source,
		CreatedAt:   at,
		UpdatedAt:   at,
	}

	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := s.guard.With(repos).Workspace(ctx, workspaceID, identity); err != nil {
			return err
		}
		if err := repos.Tasks().Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return touch(ctx, repos, workspaceID, at)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
