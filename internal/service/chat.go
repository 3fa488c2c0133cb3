package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/access"
	"github.com/Rrens/workspace-insights/internal/aggregator"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/security"
)

// ChatService answers questions about a workspace using its aggregated context
type ChatService struct {
	store domain.Store
	guard *access.Guard
	codec configCodec
	text  domain.TextGenerator
}

// NewChatService creates a new chat service
func NewChatService(store domain.Store, encryptor *security.Encryptor, text domain.TextGenerator) *ChatService {
	return &ChatService{
		store: store,
		guard: access.NewGuard(store.Workspaces()),
		codec: configCodec{encryptor: encryptor},
		text:  text,
	}
}

// Chat sends a message with the workspace context and prior turns.
// Collaborator errors are returned unchanged.
func (s *ChatService) Chat(ctx context.Context, identity *domain.Identity, workspaceID uuid.UUID, input domain.ChatRequest) (*domain.ChatReply, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	workspace, err := s.guard.Workspace(ctx, workspaceID, identity)
	if err != nil {
		return nil, err
	}

	bindings, err := s.store.Bindings().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}
	if err := s.codec.openAll(bindings); err != nil {
		return nil, err
	}

	artifacts, err := s.store.Artifacts().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	reply, err := s.text.Chat(ctx, input.Message, aggregator.Build(workspace, bindings, artifacts), input.History)
	if err != nil {
		return nil, err
	}

	return &domain.ChatReply{Reply: reply}, nil
}
