// Package connector resolves the collaborator that serves each binding type.
package connector

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/metrics"
)

// Registry implements domain.SourceRegistry. Every call through a resolved
// collaborator is counted in the collaborator metrics.
type Registry struct {
	sources   map[domain.BindingType]domain.Source
	mailboxes map[domain.BindingType]domain.Mailbox
	mu        sync.RWMutex
}

var _ domain.SourceRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sources:   make(map[domain.BindingType]domain.Source),
		mailboxes: make(map[domain.BindingType]domain.Mailbox),
	}
}

// Register adds a source under its own binding type
func (r *Registry) Register(src domain.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[src.Type()] = src
}

// RegisterMailbox adds a mailbox reader for t
func (r *Registry) RegisterMailbox(t domain.BindingType, mb domain.Mailbox) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mailboxes[t] = mb
}

// Types returns the binding types with a registered source
func (r *Registry) Types() []domain.BindingType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []domain.BindingType
	for _, t := range domain.BindingTypes {
		if _, ok := r.sources[t]; ok {
			types = append(types, t)
		}
	}
	return types
}

// Source returns the source for t
func (r *Registry) Source(t domain.BindingType) (domain.Source, error) {
	r.mu.RLock()
	src, ok := r.sources[t]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.NewCollaboratorError(string(t), domain.CodeNotConfigured, fmt.Errorf("no connector for binding type %s", t))
	}
	return instrumented{src}, nil
}

// Mailbox returns the mailbox reader for t
func (r *Registry) Mailbox(t domain.BindingType) (domain.Mailbox, error) {
	r.mu.RLock()
	mb, ok := r.mailboxes[t]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.NewValidationError("type", fmt.Sprintf("binding type %s has no mailbox", t))
	}
	return instrumentedMailbox{name: string(t), Mailbox: mb}, nil
}

type instrumented struct {
	domain.Source
}

func (s instrumented) Check(ctx context.Context, cfg domain.BindingConfig) error {
	err := s.Source.Check(ctx, cfg)
	observe(s.Type(), err)
	return err
}

func (s instrumented) List(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.SourceItem, error) {
	items, err := s.Source.List(ctx, cfg, limit)
	observe(s.Type(), err)
	return items, err
}

func (s instrumented) Fetch(ctx context.Context, cfg domain.BindingConfig, externalID string) (*domain.SourceDocument, error) {
	doc, err := s.Source.Fetch(ctx, cfg, externalID)
	observe(s.Type(), err)
	return doc, err
}

type instrumentedMailbox struct {
	name string
	domain.Mailbox
}

func (m instrumentedMailbox) RecentMessages(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.MailMessage, error) {
	msgs, err := m.Mailbox.RecentMessages(ctx, cfg, limit)
	metrics.ObserveCollaborator(m.name, err)
	return msgs, err
}

// validation and not-found failures are caller mistakes, not collaborator calls
func observe(t domain.BindingType, err error) {
	if err != nil && domain.IsValidation(err) {
		return
	}
	metrics.ObserveCollaborator(string(t), err)
}
