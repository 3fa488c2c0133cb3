package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider implements llm.Provider for OpenAI
type Provider struct {
	apiKey       string
	defaultModel string
	baseURL      string
	timeout      time.Duration
	client       *resty.Client
}

// Option customizes a Provider
type Option func(*Provider)

// WithBaseURL points the provider at a different API root
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithTimeout bounds each completion request
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
}

// NewProvider creates a new OpenAI provider
func NewProvider(apiKey, defaultModel string, opts ...Option) *Provider {
	if defaultModel == "" {
		defaultModel = "gpt-4o-mini"
	}
	p := &Provider{
		apiKey:       apiKey,
		defaultModel: defaultModel,
		baseURL:      defaultBaseURL,
		timeout:      120 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = NewClient(p.baseURL, p.apiKey, p.timeout)
	return p
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openai"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-3.5-turbo",
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

// ChatMessage is one message in an OpenAI-compatible chat request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is an OpenAI-compatible chat completion request
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// BuildChatRequest converts an llm.Request into the OpenAI wire shape
func BuildChatRequest(req llm.Request, model string) ChatRequest {
	messages := make([]ChatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, ChatMessage{Role: m.Role, Content: m.Content})
	}
	return ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}

// NewClient creates a resty client for an OpenAI-compatible API root
func NewClient(baseURL, apiKey string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
}

// Complete runs one chat completion
func (p *Provider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if model == "" {
		model = p.defaultModel
	}
	return PostChat(ctx, p.client, p.Name(), BuildChatRequest(req, model))
}

// PostChat sends an OpenAI-compatible chat request and decodes the first choice
func PostChat(ctx context.Context, client *resty.Client, name string, chatReq ChatRequest) (*llm.Response, error) {
	start := time.Now()

	var chatResp chatResponse
	resp, err := client.R().
		SetContext(ctx).
		SetBody(chatReq).
		SetResult(&chatResp).
		ForceContentType("application/json").
		Post("/chat/completions")
	if err != nil {
		return nil, domain.NewCollaboratorError(name, domain.CodeUpstreamError, fmt.Errorf("request failed: %w", err))
	}

	if resp.IsError() {
		return nil, llm.StatusError(name, resp.StatusCode(), resp.Body())
	}

	if len(chatResp.Choices) == 0 {
		return nil, domain.NewCollaboratorError(name, domain.CodeUpstreamError, fmt.Errorf("no response from %s", name))
	}

	return &llm.Response{
		Text:       chatResp.Choices[0].Message.Content,
		Model:      chatReq.Model,
		TokensUsed: chatResp.Usage.TotalTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
