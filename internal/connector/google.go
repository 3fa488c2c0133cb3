package connector

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// GoogleOptions builds client options for a binding's stored Google tokens.
// When oauthCfg is set an expired access token is refreshed with the refresh token.
func GoogleOptions(ctx context.Context, collaborator string, oauthCfg *oauth2.Config, accessToken, refreshToken string, extra []option.ClientOption) ([]option.ClientOption, error) {
	if accessToken == "" && (refreshToken == "" || oauthCfg == nil) {
		return nil, domain.NewCollaboratorError(collaborator, domain.CodeUnauthorized, errMissingToken)
	}

	token := &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken, TokenType: "Bearer"}

	var ts oauth2.TokenSource = oauth2.StaticTokenSource(token)
	if oauthCfg != nil && refreshToken != "" {
		ts = oauthCfg.TokenSource(ctx, token)
	}

	opts := make([]option.ClientOption, 0, len(extra)+1)
	opts = append(opts, option.WithTokenSource(ts))
	return append(opts, extra...), nil
}
