package handler

import (
	"net/http"

	"github.com/Rrens/workspace-insights/internal/api/middleware"
	"github.com/Rrens/workspace-insights/internal/api/response"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/service"
)

// SuggestionHandler handles suggestion endpoints
type SuggestionHandler struct {
	suggestionService *service.SuggestionService
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestionService *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// Regenerate replaces a workspace's suggestions
func (h *SuggestionHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	suggestions, err := h.suggestionService.Regenerate(r.Context(), middleware.GetIdentity(r.Context()), workspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, suggestions)
}

// List handles listing a workspace's suggestions
func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	suggestions, err := h.suggestionService.List(r.Context(), middleware.GetIdentity(r.Context()), workspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, suggestions)
}

// Delete dismisses a suggestion
func (h *SuggestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	suggestionID, err := idParam(r, ParamSuggestionID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.suggestionService.Delete(r.Context(), middleware.GetIdentity(r.Context()), suggestionID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.NoContent(w)
}

// Accept turns a suggestion into a widget
func (h *SuggestionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	suggestionID, err := idParam(r, ParamSuggestionID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.SuggestionAccept
	if err := decodeOptional(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	widget, err := h.suggestionService.Accept(r.Context(), middleware.GetIdentity(r.Context()), suggestionID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Created(w, widget)
}
