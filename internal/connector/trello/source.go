// Package trello reads cards from a Trello board.
package trello

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Rrens/workspace-insights/internal/connector"
	"github.com/Rrens/workspace-insights/internal/domain"
)

const (
	collaborator   = "trello"
	defaultBaseURL = "https://api.trello.com/1"
)

// Source implements domain.Source for issue_tracker bindings
type Source struct {
	client *resty.Client
}

var _ domain.Source = (*Source)(nil)

// NewSource creates a Trello source. An empty baseURL selects the public API.
func NewSource(baseURL string) *Source {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Source{
		client: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetTimeout(30 * time.Second),
	}
}

// Type returns the binding type served
func (s *Source) Type() domain.BindingType {
	return domain.BindingIssueTracker
}

type board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type card struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Desc             string    `json:"desc"`
	Due              *string   `json:"due"`
	DueComplete      bool      `json:"dueComplete"`
	Closed           bool      `json:"closed"`
	DateLastActivity time.Time `json:"dateLastActivity"`
	ShortURL         string    `json:"shortUrl"`
	Labels           []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Checklists []struct {
		Name       string `json:"name"`
		CheckItems []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"checkItems"`
	} `json:"checklists"`
}

func (s *Source) request(ctx context.Context, cfg domain.IssueTrackerConfig) *resty.Request {
	return s.client.R().
		SetContext(ctx).
		SetQueryParam("key", cfg.APIKey).
		SetQueryParam("token", cfg.Token).
		ForceContentType("application/json")
}

func config(cfg domain.BindingConfig) (domain.IssueTrackerConfig, error) {
	c, ok := cfg.(domain.IssueTrackerConfig)
	if !ok {
		return c, domain.NewValidationError("config", "issue_tracker binding requires a board config")
	}
	if c.APIKey == "" || c.Token == "" {
		return c, domain.NewCollaboratorError(collaborator, domain.CodeUnauthorized, fmt.Errorf("api_key and token are required"))
	}
	if c.BoardID == "" {
		return c, domain.NewValidationError("board_id", "field is required")
	}
	return c, nil
}

// Check verifies the board is readable with the configured credentials
func (s *Source) Check(ctx context.Context, cfg domain.BindingConfig) error {
	c, err := config(cfg)
	if err != nil {
		return err
	}

	var b board
	resp, err := s.request(ctx, c).
		SetQueryParam("fields", "name").
		SetResult(&b).
		Get("/boards/" + c.BoardID)
	if err != nil {
		return connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return connector.ResponseError(collaborator, resp)
	}
	return nil
}

// List returns the board's open cards, most recently active first
func (s *Source) List(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.SourceItem, error) {
	c, err := config(cfg)
	if err != nil {
		return nil, err
	}

	var cards []card
	resp, err := s.request(ctx, c).
		SetQueryParam("fields", "name,dateLastActivity").
		SetQueryParam("filter", "open").
		SetResult(&cards).
		Get("/boards/" + c.BoardID + "/cards")
	if err != nil {
		return nil, connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return nil, connector.ResponseError(collaborator, resp)
	}

	items := []domain.SourceItem{}
	for _, cd := range cards {
		if limit > 0 && len(items) >= limit {
			break
		}
		items = append(items, domain.SourceItem{
			ExternalID: cd.ID,
			Name:       cd.Name,
			Kind:       "card",
			UpdatedAt:  cd.DateLastActivity,
		})
	}
	return items, nil
}

// Fetch renders one card with its description and checklists
func (s *Source) Fetch(ctx context.Context, cfg domain.BindingConfig, externalID string) (*domain.SourceDocument, error) {
	c, err := config(cfg)
	if err != nil {
		return nil, err
	}

	var cd card
	resp, err := s.request(ctx, c).
		SetQueryParam("fields", "name,desc,due,dueComplete,closed,dateLastActivity,shortUrl,labels").
		SetQueryParam("checklists", "all").
		SetResult(&cd).
		Get("/cards/" + externalID)
	if err != nil {
		return nil, connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return nil, connector.ResponseError(collaborator, resp)
	}

	metadata := map[string]any{"url": cd.ShortURL, "closed": cd.Closed}
	if cd.Due != nil {
		metadata["due"] = *cd.Due
	}

	return &domain.SourceDocument{
		SourceItem: domain.SourceItem{
			ExternalID: cd.ID,
			Name:       cd.Name,
			Kind:       "card",
			UpdatedAt:  cd.DateLastActivity,
		},
		Content:  renderCard(cd),
		Metadata: metadata,
	}, nil
}

func renderCard(cd card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Card: %s\n", cd.Name)
	if cd.Due != nil {
		status := "open"
		if cd.DueComplete {
			status = "complete"
		}
		fmt.Fprintf(&b, "Due: %s (%s)\n", *cd.Due, status)
	}
	if len(cd.Labels) > 0 {
		names := make([]string, 0, len(cd.Labels))
		for _, l := range cd.Labels {
			if l.Name != "" {
				names = append(names, l.Name)
			}
		}
		if len(names) > 0 {
			fmt.Fprintf(&b, "Labels: %s\n", strings.Join(names, ", "))
		}
	}
	if desc := strings.TrimSpace(cd.Desc); desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}
	for _, cl := range cd.Checklists {
		fmt.Fprintf(&b, "\n%s:\n", cl.Name)
		for _, item := range cl.CheckItems {
			mark := " "
			if item.State == "complete" {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, item.Name)
		}
	}
	return b.String()
}
