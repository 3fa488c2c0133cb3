// Package confluence reads pages from a Confluence space.
package confluence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Rrens/workspace-insights/internal/connector"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/textutil"
)

const collaborator = "confluence"

// Source implements domain.Source for wiki bindings. The API root comes from
// each binding's base_url.
type Source struct {
	client *resty.Client
}

var _ domain.Source = (*Source)(nil)

// NewSource creates a Confluence source
func NewSource() *Source {
	return &Source{
		client: resty.New().
			SetHeader("Accept", "application/json").
			SetTimeout(30 * time.Second),
	}
}

// Type returns the binding type served
func (s *Source) Type() domain.BindingType {
	return domain.BindingWiki
}

type page struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version struct {
		When   time.Time `json:"when"`
		Number int       `json:"number"`
	} `json:"version"`
	Body struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

type pageList struct {
	Results []page `json:"results"`
}

func config(cfg domain.BindingConfig) (domain.WikiConfig, error) {
	c, ok := cfg.(domain.WikiConfig)
	if !ok {
		return c, domain.NewValidationError("config", "wiki binding requires a space config")
	}
	if c.BaseURL == "" {
		return c, domain.NewValidationError("base_url", "field is required")
	}
	if c.SpaceKey == "" {
		return c, domain.NewValidationError("space_key", "field is required")
	}
	return c, nil
}

func (s *Source) request(ctx context.Context, c domain.WikiConfig) *resty.Request {
	req := s.client.R().SetContext(ctx).ForceContentType("application/json")
	if c.Email != "" || c.APIToken != "" {
		req.SetBasicAuth(c.Email, c.APIToken)
	}
	return req
}

func endpoint(c domain.WikiConfig, path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/rest/api" + path
}

// Check verifies the space is readable
func (s *Source) Check(ctx context.Context, cfg domain.BindingConfig) error {
	c, err := config(cfg)
	if err != nil {
		return err
	}

	resp, err := s.request(ctx, c).Get(endpoint(c, "/space/"+c.SpaceKey))
	if err != nil {
		return connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return connector.ResponseError(collaborator, resp)
	}
	return nil
}

// List returns the space's pages
func (s *Source) List(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.SourceItem, error) {
	c, err := config(cfg)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	var pages pageList
	resp, err := s.request(ctx, c).
		SetQueryParams(map[string]string{
			"spaceKey": c.SpaceKey,
			"type":     "page",
			"limit":    strconv.Itoa(limit),
			"expand":   "version",
		}).
		SetResult(&pages).
		Get(endpoint(c, "/content"))
	if err != nil {
		return nil, connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return nil, connector.ResponseError(collaborator, resp)
	}

	items := make([]domain.SourceItem, 0, len(pages.Results))
	for _, p := range pages.Results {
		items = append(items, domain.SourceItem{
			ExternalID: p.ID,
			Name:       p.Title,
			Kind:       "wiki_page",
			UpdatedAt:  p.Version.When,
		})
	}
	return items, nil
}

// Fetch returns one page's storage body as plain text
func (s *Source) Fetch(ctx context.Context, cfg domain.BindingConfig, externalID string) (*domain.SourceDocument, error) {
	c, err := config(cfg)
	if err != nil {
		return nil, err
	}

	var p page
	resp, err := s.request(ctx, c).
		SetQueryParam("expand", "body.storage,version").
		SetResult(&p).
		Get(endpoint(c, "/content/"+externalID))
	if err != nil {
		return nil, connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return nil, connector.ResponseError(collaborator, resp)
	}

	text, err := textutil.HTMLToText(p.Body.Storage.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to convert page body: %w", err)
	}

	return &domain.SourceDocument{
		SourceItem: domain.SourceItem{
			ExternalID: p.ID,
			Name:       p.Title,
			Kind:       "wiki_page",
			UpdatedAt:  p.Version.When,
		},
		Content: text,
		Metadata: map[string]any{
			"version": p.Version.Number,
			"url":     p.Links.WebUI,
			"space":   c.SpaceKey,
		},
	}, nil
}
