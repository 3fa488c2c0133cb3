// Package notion reads pages from a Notion database.
package notion

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
	collaborator   = "notion"
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
	maxPageSize    = 100
)

// Source implements domain.Source for doc_store bindings
type Source struct {
	client *resty.Client
}

var _ domain.Source = (*Source)(nil)

// NewSource creates a Notion source. An empty baseURL selects the public API.
func NewSource(baseURL string) *Source {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Source{
		client: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Notion-Version", apiVersion).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
	}
}

// Type returns the binding type served
func (s *Source) Type() domain.BindingType {
	return domain.BindingDocStore
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type property struct {
	Type  string     `json:"type"`
	Title []richText `json:"title"`
}

type page struct {
	ID             string              `json:"id"`
	URL            string              `json:"url"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Properties     map[string]property `json:"properties"`
}

func (p page) title() string {
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return joinText(prop.Title)
		}
	}
	return ""
}

type queryResult struct {
	Results []page `json:"results"`
}

type textBlock struct {
	RichText []richText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

type block struct {
	Type             string     `json:"type"`
	Paragraph        *textBlock `json:"paragraph"`
	Heading1         *textBlock `json:"heading_1"`
	Heading2         *textBlock `json:"heading_2"`
	Heading3         *textBlock `json:"heading_3"`
	BulletedListItem *textBlock `json:"bulleted_list_item"`
	NumberedListItem *textBlock `json:"numbered_list_item"`
	ToDo             *textBlock `json:"to_do"`
	Quote            *textBlock `json:"quote"`
	Callout          *textBlock `json:"callout"`
	Code             *textBlock `json:"code"`
}

type blockList struct {
	Results []block `json:"results"`
}

func config(cfg domain.BindingConfig) (domain.DocStoreConfig, error) {
	c, ok := cfg.(domain.DocStoreConfig)
	if !ok {
		return c, domain.NewValidationError("config", "doc_store binding requires a collection config")
	}
	if c.Token == "" {
		return c, domain.NewCollaboratorError(collaborator, domain.CodeUnauthorized, fmt.Errorf("token is required"))
	}
	if c.DatabaseID == "" {
		return c, domain.NewValidationError("database_id", "field is required")
	}
	return c, nil
}

func (s *Source) request(ctx context.Context, c domain.DocStoreConfig) *resty.Request {
	return s.client.R().
		SetContext(ctx).
		SetAuthToken(c.Token).
		ForceContentType("application/json")
}

// Check verifies the database is shared with the integration
func (s *Source) Check(ctx context.Context, cfg domain.BindingConfig) error {
	c, err := config(cfg)
	if err != nil {
		return err
	}

	resp, err := s.request(ctx, c).Get("/databases/" + c.DatabaseID)
	if err != nil {
		return connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return connector.ResponseError(collaborator, resp)
	}
	return nil
}

// List returns the database's pages, most recently edited first
func (s *Source) List(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.SourceItem, error) {
	c, err := config(cfg)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	body := map[string]any{
		"page_size": limit,
		"sorts": []map[string]string{
			{"timestamp": "last_edited_time", "direction": "descending"},
		},
	}

	var result queryResult
	resp, err := s.request(ctx, c).
		SetBody(body).
		SetResult(&result).
		Post("/databases/" + c.DatabaseID + "/query")
	if err != nil {
		return nil, connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return nil, connector.ResponseError(collaborator, resp)
	}

	items := make([]domain.SourceItem, 0, len(result.Results))
	for _, p := range result.Results {
		items = append(items, domain.SourceItem{
			ExternalID: p.ID,
			Name:       p.title(),
			Kind:       "page",
			UpdatedAt:  p.LastEditedTime,
		})
	}
	return items, nil
}

// Fetch returns a page's top-level blocks as plain text
func (s *Source) Fetch(ctx context.Context, cfg domain.BindingConfig, externalID string) (*domain.SourceDocument, error) {
	c, err := config(cfg)
	if err != nil {
		return nil, err
	}

	var p page
	resp, err := s.request(ctx, c).SetResult(&p).Get("/pages/" + externalID)
	if err != nil {
		return nil, connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return nil, connector.ResponseError(collaborator, resp)
	}

	var blocks blockList
	resp, err = s.request(ctx, c).
		SetQueryParam("page_size", fmt.Sprint(maxPageSize)).
		SetResult(&blocks).
		Get("/blocks/" + externalID + "/children")
	if err != nil {
		return nil, connector.TransportError(collaborator, err)
	}
	if resp.IsError() {
		return nil, connector.ResponseError(collaborator, resp)
	}

	return &domain.SourceDocument{
		SourceItem: domain.SourceItem{
			ExternalID: p.ID,
			Name:       p.title(),
			Kind:       "page",
			UpdatedAt:  p.LastEditedTime,
		},
		Content:  renderBlocks(blocks.Results),
		Metadata: map[string]any{"url": p.URL},
	}, nil
}

func renderBlocks(blocks []block) string {
	var lines []string
	for _, b := range blocks {
		switch {
		case b.Heading1 != nil:
			lines = append(lines, "# "+joinText(b.Heading1.RichText))
		case b.Heading2 != nil:
			lines = append(lines, "## "+joinText(b.Heading2.RichText))
		case b.Heading3 != nil:
			lines = append(lines, "### "+joinText(b.Heading3.RichText))
		case b.BulletedListItem != nil:
			lines = append(lines, "- "+joinText(b.BulletedListItem.RichText))
		case b.NumberedListItem != nil:
			lines = append(lines, "1. "+joinText(b.NumberedListItem.RichText))
		case b.ToDo != nil:
			mark := " "
			if b.ToDo.Checked {
				mark = "x"
			}
			lines = append(lines, fmt.Sprintf("- [%s] %s", mark, joinText(b.ToDo.RichText)))
		case b.Quote != nil:
			lines = append(lines, "> "+joinText(b.Quote.RichText))
		case b.Paragraph != nil:
			lines = append(lines, joinText(b.Paragraph.RichText))
		case b.Callout != nil:
			lines = append(lines, joinText(b.Callout.RichText))
		case b.Code != nil:
			lines = append(lines, joinText(b.Code.RichText))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func joinText(parts []richText) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.PlainText)
	}
	return b.String()
}
