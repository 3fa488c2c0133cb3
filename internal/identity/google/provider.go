// Package google implements sign-in through Google's OAuth 2.0 endpoints.
package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	oauthapi "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/Rrens/workspace-insights/internal/config"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/metrics"
)

const collaborator = "google_identity"

// Provider implements domain.IdentityProvider
type Provider struct {
	oauth    *oauth2.Config
	endpoint string
}

var _ domain.IdentityProvider = (*Provider)(nil)

// Option customizes a Provider
type Option func(*Provider)

// WithEndpoints overrides the OAuth endpoints and the userinfo API root
func WithEndpoints(authURL, tokenURL, apiURL string) Option {
	return func(p *Provider) {
		p.oauth.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
		p.endpoint = apiURL
	}
}

// NewProvider creates a Google identity provider
func NewProvider(cfg config.GoogleConfig, opts ...Option) *Provider {
	p := &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     googleoauth.Endpoint,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsConfigured reports whether client credentials are present
func (p *Provider) IsConfigured() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != ""
}

// OAuthConfig returns the client config, shared with connectors that refresh
// stored Google tokens
func (p *Provider) OAuthConfig() *oauth2.Config {
	return p.oauth
}

// AuthCodeURL returns the consent page URL carrying state
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades an authorization code for the user's profile
func (p *Provider) Exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error) {
	identity, err := p.exchange(ctx, code)
	metrics.ObserveCollaborator(collaborator, err)
	return identity, err
}

func (p *Provider) exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error) {
	if !p.IsConfigured() {
		return nil, domain.NewCollaboratorError(collaborator, domain.CodeNotConfigured, errors.New("google sign-in is not configured"))
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, domain.NewCollaboratorError(collaborator, domain.CodeForStatus(re.Response.StatusCode), err)
		}
		return nil, domain.NewCollaboratorError(collaborator, domain.CodeUnauthorized, fmt.Errorf("failed to exchange code: %w", err))
	}

	opts := []option.ClientOption{option.WithTokenSource(p.oauth.TokenSource(ctx, token))}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}

	svc, err := oauthapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, domain.NewCollaboratorError(collaborator, domain.CodeUpstreamError, fmt.Errorf("failed to fetch userinfo: %w", err))
	}
	if info.Id == "" {
		return nil, domain.NewCollaboratorError(collaborator, domain.CodeUpstreamError, errors.New("userinfo has no subject"))
	}

	return &domain.ExternalIdentity{
		Subject:     info.Id,
		Email:       info.Email,
		DisplayName: info.Name,
		AvatarURL:   info.Picture,
	}, nil
}
