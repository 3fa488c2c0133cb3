package handler

import (
	"net/http"
	"net/url"

	"github.com/Rrens/workspace-insights/internal/api/middleware"
	"github.com/Rrens/workspace-insights/internal/api/response"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/service"
)

// AuthHandler handles sign-in endpoints
type AuthHandler struct {
	authService *service.AuthService
	redirectURL string
}

// NewAuthHandler creates a new auth handler. When redirectURL is set the
// callback sends the browser there with the token in the URL fragment;
// otherwise it answers with JSON.
func NewAuthHandler(authService *service.AuthService, redirectURL string) *AuthHandler {
	return &AuthHandler{authService: authService, redirectURL: redirectURL}
}

// Login redirects the browser to the identity provider
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	target, err := h.authService.BeginSignIn()
	if err != nil {
		response.Err(w, r, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Callback completes sign-in with the provider's state and code
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		response.Err(w, r, domain.NewValidationError("code", "sign-in was not completed: "+reason))
		return
	}

	signIn, err := h.authService.CompleteSignIn(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if h.redirectURL != "" {
		fragment := url.Values{"token": {signIn.Token}}
		http.Redirect(w, r, h.redirectURL+"#"+fragment.Encode(), http.StatusFound)
		return
	}

	response.OK(w, signIn)
}

// Logout ends the caller's session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.BearerToken(r)); err != nil {
		response.Err(w, r, err)
		return
	}

	response.NoContent(w)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Me(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, user)
}
