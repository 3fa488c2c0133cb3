package domain

import (
	"context"
	"time"
)

// ChatTurn is one prior message in a chat conversation
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is the body of a workspace chat call
type ChatRequest struct {
	Message string     `json:"message" validate:"required,max=8000"`
	History []ChatTurn `json:"history,omitempty" validate:"omitempty,max=50,dive"`
}

// ChatReply is returned by a workspace chat call
type ChatReply struct {
	Reply string `json:"reply"`
}

// TextGenerator is the generative-text backend
type TextGenerator interface {
	Summarize(ctx context.Context, text, kind string) (string, error)
	Chat(ctx context.Context, message, context string, history []ChatTurn) (string, error)
}

// IdentityProvider performs the external OAuth sign-in exchange
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*ExternalIdentity, error)
}

// MailMessage is a fetched message body with its metadata
type MailMessage struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Date    time.Time `json:"date"`
	Body    string    `json:"body"`
}

// Action item kinds
const (
	ActionItemAction = "action"
	ActionItemReview = "review"
)

// ActionItem is a short extracted action string with provenance
type ActionItem struct {
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	Date      time.Time `json:"date"`
	MessageID string    `json:"message_id,omitempty"`
	Kind      string    `json:"kind"`
}

// ActionItemPromote turns an action item into a task
type ActionItemPromote struct {
	Action  string `json:"action" validate:"required,max=2000"`
	Subject string `json:"subject" validate:"max=500"`
}

// SourceItem is one entry of a source listing
type SourceItem struct {
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// SourceDocument is a fetched item with its plain-text body
type SourceDocument struct {
	SourceItem
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Source reads items from one kind of external data source
type Source interface {
	Type() BindingType
	Check(ctx context.Context, cfg BindingConfig) error
	List(ctx context.Context, cfg BindingConfig, limit int) ([]SourceItem, error)
	Fetch(ctx context.Context, cfg BindingConfig, externalID string) (*SourceDocument, error)
}

// Mailbox reads recent messages from a mailbox source
type Mailbox interface {
	RecentMessages(ctx context.Context, cfg BindingConfig, limit int) ([]MailMessage, error)
}

// SourceRegistry resolves the collaborator serving a binding type
type SourceRegistry interface {
	Source(t BindingType) (Source, error)
	Mailbox(t BindingType) (Mailbox, error)
}
