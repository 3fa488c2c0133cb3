package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// Message is one turn sent to a provider
type Message struct {
	Role    string
	Content string
}

// Request contains completion parameters
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response contains the completion result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete runs one chat completion
	Complete(ctx context.Context, req Request, model string) (*Response, error)
}

// StatusError converts a non-success HTTP status into a collaborator error
func StatusError(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	err := fmt.Errorf("%s returned status %d", provider, status)
	if msg != "" {
		err = fmt.Errorf("%s returned status %d: %s", provider, status, msg)
	}
	return domain.NewCollaboratorError(provider, domain.CodeForStatus(status), err)
}
