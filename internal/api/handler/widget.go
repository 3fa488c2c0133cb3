package handler

import (
	"net/http"

	"github.com/Rrens/workspace-insights/internal/api/middleware"
	"github.com/Rrens/workspace-insights/internal/api/response"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/service"
)

// WidgetHandler handles widget endpoints
type WidgetHandler struct {
	widgetService *service.WidgetService
}

// NewWidgetHandler creates a new widget handler
func NewWidgetHandler(widgetService *service.WidgetService) *WidgetHandler {
	return &WidgetHandler{widgetService: widgetService}
}

// List handles listing a workspace's widgets in display order
func (h *WidgetHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	widgets, err := h.widgetService.List(r.Context(), middleware.GetIdentity(r.Context()), workspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, widgets)
}

// Create handles widget creation
func (h *WidgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.WidgetCreate
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	widget, err := h.widgetService.Create(r.Context(), middleware.GetIdentity(r.Context()), workspaceID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Created(w, widget)
}

// Get handles getting a widget by ID
func (h *WidgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	widgetID, err := idParam(r, ParamWidgetID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	widget, err := h.widgetService.Get(r.Context(), middleware.GetIdentity(r.Context()), widgetID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, widget)
}

// Patch handles a partial widget update
func (h *WidgetHandler) Patch(w http.ResponseWriter, r *http.Request) {
	widgetID, err := idParam(r, ParamWidgetID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.WidgetPatch
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	widget, err := h.widgetService.Patch(r.Context(), middleware.GetIdentity(r.Context()), widgetID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, widget)
}

// Delete handles deleting a widget
func (h *WidgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	widgetID, err := idParam(r, ParamWidgetID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.widgetService.Delete(r.Context(), middleware.GetIdentity(r.Context()), widgetID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.NoContent(w)
}

// Reorder applies a batch of widget positions atomically
func (h *WidgetHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var input domain.WidgetReorder
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.widgetService.Reorder(r.Context(), middleware.GetIdentity(r.Context()), input); err != nil {
		response.Err(w, r, err)
		return
	}

	response.NoContent(w)
}

// Refresh regenerates a widget's content from its artifact
func (h *WidgetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	widgetID, err := idParam(r, ParamWidgetID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	widget, err := h.widgetService.Refresh(r.Context(), middleware.GetIdentity(r.Context()), widgetID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, widget)
}
