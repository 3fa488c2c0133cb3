package handler

import (
	"net/http"

	"github.com/Rrens/workspace-insights/internal/api/middleware"
	"github.com/Rrens/workspace-insights/internal/api/response"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/service"
)

// BindingHandler handles source binding endpoints
type BindingHandler struct {
	bindingService    *service.BindingService
	artifactService   *service.ArtifactService
	actionItemService *service.ActionItemService
}

// NewBindingHandler creates a new binding handler
func NewBindingHandler(
	bindingService *service.BindingService,
	artifactService *service.ArtifactService,
	actionItemService *service.ActionItemService,
) *BindingHandler {
	return &BindingHandler{
		bindingService:    bindingService,
		artifactService:   artifactService,
		actionItemService: actionItemService,
	}
}

// List handles listing a workspace's bindings
func (h *BindingHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	bindings, err := h.bindingService.List(r.Context(), middleware.GetIdentity(r.Context()), workspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, bindings)
}

// Create handles binding creation
func (h *BindingHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.BindingCreate
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	binding, err := h.bindingService.Create(r.Context(), middleware.GetIdentity(r.Context()), workspaceID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Created(w, binding)
}

// Get handles getting a binding by ID
func (h *BindingHandler) Get(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	binding, err := h.bindingService.Get(r.Context(), middleware.GetIdentity(r.Context()), bindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, binding)
}

// Update handles updating a binding
func (h *BindingHandler) Update(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.BindingUpdate
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	binding, err := h.bindingService.Update(r.Context(), middleware.GetIdentity(r.Context()), bindingID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, binding)
}

// Delete handles deleting a binding
func (h *BindingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.bindingService.Delete(r.Context(), middleware.GetIdentity(r.Context()), bindingID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.NoContent(w)
}

// Test checks the binding against its source and reports the new status
func (h *BindingHandler) Test(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	binding, err := h.bindingService.Test(r.Context(), middleware.GetIdentity(r.Context()), bindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, binding)
}

// Browse lists the items available in the binding's source
func (h *BindingHandler) Browse(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	limit, err := intQuery(r, "limit")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	items, err := h.artifactService.Browse(r.Context(), middleware.GetIdentity(r.Context()), bindingID, limit)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, items)
}

// ActionItems extracts action items from the binding's recent messages
func (h *BindingHandler) ActionItems(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	limit, err := intQuery(r, "limit")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	items, err := h.actionItemService.Extract(r.Context(), middleware.GetIdentity(r.Context()), bindingID, limit)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, items)
}
