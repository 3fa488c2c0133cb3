package deepseek

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Rrens/workspace-insights/internal/llm"
	"github.com/Rrens/workspace-insights/internal/llm/openai"
)

const defaultBaseURL = "https://api.deepseek.com"

// Provider implements llm.Provider for DeepSeek's OpenAI-compatible API
type Provider struct {
	apiKey       string
	defaultModel string
	client       *resty.Client
}

// NewProvider creates a new DeepSeek provider. An empty baseURL selects the public API.
func NewProvider(apiKey, defaultModel, baseURL string) *Provider {
	if defaultModel == "" {
		defaultModel = "deepseek-chat"
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:       apiKey,
		defaultModel: defaultModel,
		client:       openai.NewClient(baseURL, apiKey, 120*time.Second),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "deepseek"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"deepseek-chat",
		"deepseek-reasoner",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Complete runs one chat completion
func (p *Provider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if model == "" {
		model = p.defaultModel
	}
	return openai.PostChat(ctx, p.client, p.Name(), openai.BuildChatRequest(req, model))
}
