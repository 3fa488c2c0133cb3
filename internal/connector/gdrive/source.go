// Package gdrive reads files from a Google Drive folder.
package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/Rrens/workspace-insights/internal/connector"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/textutil"
)

const (
	collaborator = "drive"
	maxListed    = 100
	maxDownload  = 20 << 20

	mimeGoogleDoc    = "application/vnd.google-apps.document"
	mimeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	mimeGoogleSlides = "application/vnd.google-apps.presentation"
	mimeFolder       = "application/vnd.google-apps.folder"
	mimePDF          = "application/pdf"
	mimeHTML         = "text/html"
)

const fileFields = "id,name,mimeType,modifiedTime,webViewLink"

// Source implements domain.Source for drive bindings
type Source struct {
	oauth *oauth2.Config
	opts  []option.ClientOption
}

var _ domain.Source = (*Source)(nil)

// NewSource creates a Drive source. oauthCfg refreshes expired tokens and may be nil.
func NewSource(oauthCfg *oauth2.Config, opts ...option.ClientOption) *Source {
	return &Source{oauth: oauthCfg, opts: opts}
}

// Type returns the binding type served
func (s *Source) Type() domain.BindingType {
	return domain.BindingDrive
}

func (s *Source) service(ctx context.Context, cfg domain.BindingConfig) (*drive.Service, domain.DriveConfig, error) {
	c, ok := cfg.(domain.DriveConfig)
	if !ok {
		return nil, c, domain.NewValidationError("config", "drive binding requires a drive config")
	}

	opts, err := connector.GoogleOptions(ctx, collaborator, s.oauth, c.AccessToken, c.RefreshToken, s.opts)
	if err != nil {
		return nil, c, err
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, c, fmt.Errorf("failed to create drive client: %w", err)
	}
	return svc, c, nil
}

// Check reads the bound folder, or the account when no folder is set
func (s *Source) Check(ctx context.Context, cfg domain.BindingConfig) error {
	svc, c, err := s.service(ctx, cfg)
	if err != nil {
		return err
	}

	if c.FolderID == "" {
		_, err = svc.About.Get().Fields("user").Context(ctx).Do()
	} else {
		_, err = svc.Files.Get(c.FolderID).Fields("id").Context(ctx).Do()
	}
	if err != nil {
		return connector.GoogleError(collaborator, err)
	}
	return nil
}

// List returns the folder's files, most recently modified first
func (s *Source) List(ctx context.Context, cfg domain.BindingConfig, limit int) ([]domain.SourceItem, error) {
	svc, c, err := s.service(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxListed {
		limit = maxListed
	}

	q := fmt.Sprintf("trashed = false and mimeType != '%s'", mimeFolder)
	if c.FolderID != "" {
		q = fmt.Sprintf("'%s' in parents and %s", strings.ReplaceAll(c.FolderID, "'", `\'`), q)
	}

	list, err := svc.Files.List().
		Q(q).
		OrderBy("modifiedTime desc").
		PageSize(int64(limit)).
		Fields("files(" + fileFields + ")").
		Context(ctx).
		Do()
	if err != nil {
		return nil, connector.GoogleError(collaborator, err)
	}

	items := make([]domain.SourceItem, 0, len(list.Files))
	for _, f := range list.Files {
		items = append(items, domain.SourceItem{
			ExternalID: f.Id,
			Name:       f.Name,
			Kind:       kindOf(f.MimeType),
			UpdatedAt:  modified(f.ModifiedTime),
		})
	}
	return items, nil
}

// Fetch downloads one file and converts it to text.
// Google documents are exported; PDF and HTML files are converted.
func (s *Source) Fetch(ctx context.Context, cfg domain.BindingConfig, externalID string) (*domain.SourceDocument, error) {
	svc, _, err := s.service(ctx, cfg)
	if err != nil {
		return nil, err
	}

	f, err := svc.Files.Get(externalID).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, connector.GoogleError(collaborator, err)
	}

	content, err := s.content(ctx, svc, f)
	if err != nil {
		return nil, err
	}

	return &domain.SourceDocument{
		SourceItem: domain.SourceItem{
			ExternalID: f.Id,
			Name:       f.Name,
			Kind:       kindOf(f.MimeType),
			UpdatedAt:  modified(f.ModifiedTime),
		},
		Content: content,
		Metadata: map[string]any{
			"mime_type": f.MimeType,
			"url":       f.WebViewLink,
		},
	}, nil
}

func (s *Source) content(ctx context.Context, svc *drive.Service, f *drive.File) (string, error) {
	switch {
	case f.MimeType == mimeGoogleDoc || f.MimeType == mimeGoogleSlides:
		return s.read(svc.Files.Export(f.Id, "text/plain").Context(ctx).Download())
	case f.MimeType == mimeGoogleSheet:
		return s.read(svc.Files.Export(f.Id, "text/csv").Context(ctx).Download())
	}

	if !supported(f.MimeType) {
		return "", domain.NewValidationError("external_id", fmt.Sprintf("unsupported file type %q", f.MimeType))
	}

	raw, err := s.read(svc.Files.Get(f.Id).Context(ctx).Download())
	if err != nil {
		return "", err
	}

	switch {
	case f.MimeType == mimePDF:
		text, err := textutil.PDFToText(bytes.NewReader([]byte(raw)), int64(len(raw)))
		if err != nil {
			return "", domain.NewValidationError("external_id", err.Error())
		}
		return text, nil
	case f.MimeType == mimeHTML:
		return textutil.HTMLToText(raw)
	default:
		return raw, nil
	}
}

func (s *Source) read(resp *http.Response, err error) (string, error) {
	if err != nil {
		return "", connector.GoogleError(collaborator, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return "", connector.TransportError(collaborator, err)
	}
	return string(data), nil
}

func supported(mimeType string) bool {
	return mimeType == mimePDF ||
		mimeType == "application/json" ||
		strings.HasPrefix(mimeType, "text/")
}

func kindOf(mimeType string) string {
	switch {
	case mimeType == mimeGoogleDoc, mimeType == mimeHTML:
		return "document"
	case mimeType == mimeGoogleSheet, mimeType == "text/csv":
		return "spreadsheet"
	case mimeType == mimeGoogleSlides:
		return "presentation"
	case mimeType == mimePDF:
		return "pdf"
	case mimeType == "text/markdown":
		return "markdown"
	case strings.HasPrefix(mimeType, "text/"):
		return "text"
	default:
		return "file"
	}
}

func modified(rfc3339 string) time.Time {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return time.Time{}
	}
	return t
}
