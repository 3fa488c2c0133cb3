package connector

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/Rrens/workspace-insights/internal/domain"
)

var errMissingToken = errors.New("binding has no access or refresh token")

// ResponseError converts a failed REST response into a CollaboratorError.
// A 404 becomes domain.ErrNotFound.
func ResponseError(collaborator string, resp *resty.Response) error {
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s: %w", collaborator, domain.ErrNotFound)
	}

	body := strings.TrimSpace(resp.String())
	if len(body) > 300 {
		body = body[:300]
	}
	err := fmt.Errorf("%s returned status %d", collaborator, resp.StatusCode())
	if body != "" {
		err = fmt.Errorf("%s returned status %d: %s", collaborator, resp.StatusCode(), body)
	}
	return domain.NewCollaboratorError(collaborator, domain.CodeForStatus(resp.StatusCode()), err)
}

// TransportError wraps a failed round trip
func TransportError(collaborator string, err error) error {
	return domain.NewCollaboratorError(collaborator, domain.CodeUpstreamError, fmt.Errorf("request failed: %w", err))
}

// GoogleError converts a Google API client error. A 403 surfaces as
// insufficient_scope so the caller can re-consent.
func GoogleError(collaborator string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return domain.NewCollaboratorError(collaborator, domain.CodeUnauthorized, fmt.Errorf("failed to refresh token: %w", err))
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return TransportError(collaborator, err)
	}

	if apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w", collaborator, domain.ErrNotFound)
	}

	// Google reports quota exhaustion as 403 too
	code := domain.CodeForStatus(apiErr.Code)
	if apiErr.Code == http.StatusForbidden && isRateLimit(apiErr) {
		code = domain.CodeRateLimited
	}

	return domain.NewCollaboratorError(collaborator, code, apiErr)
}

func isRateLimit(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
			return true
		}
	}
	return false
}
