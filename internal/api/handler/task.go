package handler

import (
	"net/http"

	"github.com/Rrens/workspace-insights/internal/api/middleware"
	"github.com/Rrens/workspace-insights/internal/api/response"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/service"
)

// TaskHandler handles task endpoints
type TaskHandler struct {
	taskService       *service.TaskService
	actionItemService *service.ActionItemService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService, actionItemService *service.ActionItemService) *TaskHandler {
	return &TaskHandler{taskService: taskService, actionItemService: actionItemService}
}

// List handles listing a workspace's tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	tasks, err := h.taskService.List(r.Context(), middleware.GetIdentity(r.Context()), workspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, tasks)
}

// Create handles task creation
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.TaskCreate
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	task, err := h.taskService.Create(r.Context(), middleware.GetIdentity(r.Context()), workspaceID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Created(w, task)
}

// Promote turns an extracted action item into a task
func (h *TaskHandler) Promote(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := idParam(r, ParamWorkspaceID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.ActionItemPromote
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	task, err := h.actionItemService.Promote(r.Context(), middleware.GetIdentity(r.Context()), workspaceID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Created(w, task)
}

// Patch handles a partial task update
func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	taskID, err := idParam(r, ParamTaskID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.TaskPatch
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	task, err := h.taskService.Patch(r.Context(), middleware.GetIdentity(r.Context()), taskID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, task)
}

// Delete handles deleting a task
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := idParam(r, ParamTaskID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.taskService.Delete(r.Context(), middleware.GetIdentity(r.Context()), taskID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.NoContent(w)
}
