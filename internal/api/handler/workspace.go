package handler

import (
	"net/http"

	"github.com/Rrens/workspace-insights/internal/api/middleware"
	"github.com/Rrens/workspace-insights/internal/api/response"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/service"
)

// WorkspaceHandler handles workspace endpoints
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
	chatService      *service.ChatService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceService *service.WorkspaceService, chatService *service.ChatService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService, chatService: chatService}
}

// Create handles workspace creation
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.WorkspaceCreate
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	workspace, err := h.workspaceService.Create(r.Context(), middleware.GetIdentity(r.Context()), input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Created(w, workspace)
}

// List handles listing the workspaces visible to the caller
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.workspaceService.List(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, workspaces)
}

// Get handles getting a workspace with its bindings, artifacts and suggestions
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	workspace, err := h.workspaceService.Get(r.Context(), middleware.GetIdentity(r.Context()), workspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, workspace)
}

// Update handles updating a workspace
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.WorkspaceUpdate
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	workspace, err := h.workspaceService.Update(r.Context(), middleware.GetIdentity(r.Context()), workspaceID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, workspace)
}

// Delete handles deleting a workspace
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.workspaceService.Delete(r.Context(), middleware.GetIdentity(r.Context()), workspaceID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.NoContent(w)
}

// Chat answers a message grounded in the workspace context
func (h *WorkspaceHandler) Chat(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.ChatRequest
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	reply, err := h.chatService.Chat(r.Context(), middleware.GetIdentity(r.Context()), workspaceID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, reply)
}
