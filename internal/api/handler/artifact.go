package handler

import (
	"errors"
	"net/http"

	"github.com/Rrens/workspace-insights/internal/api/middleware"
	"github.com/Rrens/workspace-insights/internal/api/response"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/service"
)

// multipart bodies above this size spill to temporary files
const uploadMemory = 8 << 20

// ArtifactHandler handles artifact endpoints
type ArtifactHandler struct {
	artifactService   *service.ArtifactService
	actionItemService *service.ActionItemService
	maxUploadBytes    int64
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(
	artifactService *service.ArtifactService,
	actionItemService *service.ActionItemService,
	maxUploadBytes int64,
) *ArtifactHandler {
	return &ArtifactHandler{
		artifactService:   artifactService,
		actionItemService: actionItemService,
		maxUploadBytes:    maxUploadBytes,
	}
}

// List handles listing a binding's artifacts
func (h *ArtifactHandler) List(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	artifacts, err := h.artifactService.List(r.Context(), middleware.GetIdentity(r.Context()), bindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, artifacts)
}

// Create handles storing a caller-supplied artifact
func (h *ArtifactHandler) Create(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.ArtifactCreate
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	artifact, err := h.artifactService.Create(r.Context(), middleware.GetIdentity(r.Context()), bindingID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Created(w, artifact)
}

// Import fetches one item from the binding's source and stores it
func (h *ArtifactHandler) Import(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var input domain.ArtifactImport
	if err := decode(r, &input); err != nil {
		response.Err(w, r, err)
		return
	}

	artifact, err := h.artifactService.Import(r.Context(), middleware.GetIdentity(r.Context()), bindingID, input)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Created(w, artifact)
}

// Upload stores a multipart file as an artifact
func (h *ArtifactHandler) Upload(w http.ResponseWriter, r *http.Request) {
	bindingID, err := idParam(r, ParamBindingID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+uploadMemory)
	}

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Err(w, r, domain.NewValidationError("file", "file is too large"))
			return
		}
		response.Err(w, r, domain.NewValidationError("file", "invalid multipart body"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Err(w, r, domain.NewValidationError("file", "no file uploaded"))
		return
	}
	defer file.Close()

	artifact, err := h.artifactService.Upload(r.Context(), middleware.GetIdentity(r.Context()), bindingID, header.Filename, file)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.Created(w, artifact)
}

// Get handles getting an artifact by ID
func (h *ArtifactHandler) Get(w http.ResponseWriter, r *http.Request) {
	artifactID, err := idParam(r, ParamArtifactID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	artifact, err := h.artifactService.Get(r.Context(), middleware.GetIdentity(r.Context()), artifactID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, artifact)
}

// Delete handles deleting an artifact
func (h *ArtifactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	artifactID, err := idParam(r, ParamArtifactID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.artifactService.Delete(r.Context(), middleware.GetIdentity(r.Context()), artifactID); err != nil {
		response.Err(w, r, err)
		return
	}

	response.NoContent(w)
}

// Summarize returns a generated summary of the artifact content
func (h *ArtifactHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	artifactID, err := idParam(r, ParamArtifactID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	summary, err := h.artifactService.Summarize(r.Context(), middleware.GetIdentity(r.Context()), artifactID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, map[string]string{"summary": summary})
}

// ActionItems extracts action items from the artifact content
func (h *ArtifactHandler) ActionItems(w http.ResponseWriter, r *http.Request) {
	artifactID, err := idParam(r, ParamArtifactID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	items, err := h.actionItemService.ExtractArtifact(r.Context(), middleware.GetIdentity(r.Context()), artifactID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, items)
}
