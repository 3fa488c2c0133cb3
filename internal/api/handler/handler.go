// Package handler adapts HTTP requests onto the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// Route parameter names
const (
	ParamWorkspaceID  = "workspaceID"
	ParamBindingID    = "bindingID"
	ParamArtifactID   = "artifactID"
	ParamSuggestionID = "suggestionID"
	ParamWidgetID     = "widgetID"
	ParamTaskID       = "taskID"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON body into v
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("", "invalid request body")
	}
	return nil
}

// decodeOptional is decode that accepts an empty body
func decodeOptional(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("", "invalid request body")
	}
	return nil
}

// idParam parses a UUID route parameter
func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "invalid ID")
	}
	return id, nil
}

// intQuery parses an optional non-negative integer query parameter
func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}
