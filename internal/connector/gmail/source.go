// Package gmail reads messages from a Gmail mailbox.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/Rrens/workspace-insights/internal/connector"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/textutil"
)

const (
	collaborator = "gmail"
	user         = "me"
	defaultLabel = "INBOX"
	maxMessages  = 50
	fetchWorkers = 5
)

// Source implements domain.Source and domain.Mailbox for mailbox bindings
type Source struct {
	oauth *oauth2.Config
	opts  []option.ClientOption
}

var (
	_ domain.Source  = (*Source)(nil)
	_ domain.Mailbox = (*Source)(nil)
)

// NewSource creates a Gmail source. oauthCfg refreshes expired tokens and may be nil.
func NewSource(oauthCfg *oauth2.Config, opts ...option.ClientOption) *Source {
	return &Source{oauth: oauthCfg, opts: opts}
}

// Type returns the binding type served
func (s *Source) Type() domain.BindingType {
	return domain.BindingMailbox
}

func (s *Source) service(ctx context.Context, cfg domain.BindingConfig) (*gmail.Service, domain.MailboxConfig, error) {
	c, ok := cfg.(domain.MailboxConfig)
	if !ok {
		return nil, c, domain.NewValidationError("config", "mailbox binding requires a mailbox config")
	}

	opts, err := connector.GoogleOptions(ctx, collaborator, s.oauth, c.AccessToken, c.RefreshToken, s.opts)
	if err != nil {
		return nil, c, err
	}

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, c, fmt.Errorf("failed to create gmail client: %w", err)
	}
	return svc, c, nil
}

// Check reads the mailbox profile
func (s *Source) Check(ctx context.Context, cfg domain.BindingConfig) error {
	svc, _, err := s.service(ctx, cfg)
	if err != nil {
		return err
	}

	if _, err := svc.Users.GetProfile(user).Context(ctx).Do(); err != nil {
		return connector.GoogleError(collaborator, err)
	}
	return nil
}

// List returns recent messages as items named by subject
func (s *Source) List(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.SourceItem, error) {
	msgs, err := s.fetchRecent(ctx, cfg, limit, "metadata")
	if err != nil {
		return nil, err
	}

	items := make([]domain.SourceItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, domain.SourceItem{
			ExternalID: m.ID,
			Name:       m.Subject,
			Kind:       "email",
			UpdatedAt:  m.Date,
		})
	}
	return items, nil
}

// Fetch returns one message rendered as plain text with its headers
func (s *Source) Fetch(ctx context.Context, cfg domain.BindingConfig, externalID string) (*domain.SourceDocument, error) {
	svc, _, err := s.service(ctx, cfg)
	if err != nil {
		return nil, err
	}

	raw, err := svc.Users.Messages.Get(user, externalID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, connector.GoogleError(collaborator, err)
	}

	m := parseMessage(raw)
	content := fmt.Sprintf("From: %s\nSubject: %s\nDate: %s\n\n%s",
		m.From, m.Subject, m.Date.Format(time.RFC1123Z), textutil.Plain(m.Body))

	return &domain.SourceDocument{
		SourceItem: domain.SourceItem{
			ExternalID: m.ID,
			Name:       m.Subject,
			Kind:       "email",
			UpdatedAt:  m.Date,
		},
		Content: content,
		Metadata: map[string]any{
			"from":      m.From,
			"thread_id": raw.ThreadId,
		},
	}, nil
}

// RecentMessages returns up to limit recent messages with bodies, newest first
func (s *Source) RecentMessages(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.MailMessage, error) {
	return s.fetchRecent(ctx, cfg, limit, "full")
}

func (s *Source) fetchRecent(ctx context.Context, cfg domain.BindingConfig, limit int, format string) ([]domain.MailMessage, error) {
	svc, c, err := s.service(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxMessages {
		limit = maxMessages
	}

	label := c.Label
	if label == "" {
		label = defaultLabel
	}

	list, err := svc.Users.Messages.List(user).LabelIds(label).MaxResults(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, connector.GoogleError(collaborator, err)
	}

	msgs := make([]domain.MailMessage, len(list.Messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i, ref := range list.Messages {
		g.Go(func() error {
			call := svc.Users.Messages.Get(user, ref.Id).Format(format).Context(gctx)
			if format == "metadata" {
				call = call.MetadataHeaders("From", "Subject", "Date")
			}
			raw, err := call.Do()
			if err != nil {
				return connector.GoogleError(collaborator, err)
			}
			msgs[i] = parseMessage(raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return msgs, nil
}

func parseMessage(raw *gmail.Message) domain.MailMessage {
	m := domain.MailMessage{
		ID:   raw.Id,
		Date: time.UnixMilli(raw.InternalDate).UTC(),
	}
	if raw.Payload == nil {
		return m
	}

	for _, h := range raw.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			m.From = h.Value
		case "subject":
			m.Subject = h.Value
		}
	}

	if body := findPart(raw.Payload, "text/plain"); body != "" {
		m.Body = body
	} else {
		m.Body = findPart(raw.Payload, "text/html")
	}
	return m
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		return decode(part.Body.Data)
	}
	for _, child := range part.Parts {
		if body := findPart(child, mimeType); body != "" {
			return body
		}
	}
	return ""
}

func decode(data string) string {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}
