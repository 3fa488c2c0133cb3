package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/metrics"
)

const (
	summarizeTemperature = 0.2
	chatTemperature      = 0.4
	maxOutputTokens      = 1024
)

// TextService implements domain.TextGenerator on top of the default provider
type TextService struct {
	router *Router
}

var _ domain.TextGenerator = (*TextService)(nil)

// NewTextService creates a text generator backed by the router's default provider
func NewTextService(router *Router) *TextService {
	return &TextService{router: router}
}

// Summarize returns a plain-text summary of text
func (s *TextService) Summarize(ctx context.Context, text, kind string) (string, error) {
	return s.complete(ctx, Request{
		System:      summarizeSystem,
		Messages:    []Message{{Role: "user", Content: SummarizePrompt(text, kind)}},
		Temperature: summarizeTemperature,
		MaxTokens:   maxOutputTokens,
	})
}

// Chat answers message given prior turns and an optional workspace context
func (s *TextService) Chat(ctx context.Context, message, workspaceContext string, history []domain.ChatTurn) (string, error) {
	messages := make([]Message, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, Message{Role: "user", Content: message})

	return s.complete(ctx, Request{
		System:      ChatSystemPrompt(workspaceContext),
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   maxOutputTokens,
	})
}

func (s *TextService) complete(ctx context.Context, req Request) (string, error) {
	provider, err := s.router.GetProvider("")
	if err != nil {
		err = domain.NewCollaboratorError("llm", domain.CodeNotConfigured, err)
		metrics.ObserveCollaborator("llm", err)
		return "", err
	}

	resp, err := provider.Complete(ctx, req, "")
	if err != nil {
		var ce *domain.CollaboratorError
		if !errors.As(err, &ce) {
			err = domain.NewCollaboratorError(provider.Name(), domain.CodeUpstreamError, err)
		}
		metrics.ObserveCollaborator(provider.Name(), err)
		return "", err
	}

	metrics.ObserveCollaborator(provider.Name(), nil)
	return strings.TrimSpace(resp.Text), nil
}
