// Package suggestion derives the recommended actions for a workspace from
// what is connected to it. Generation is a pure function of its inputs.
package suggestion

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Rrens/workspace-insights/internal/domain"
)

// Generate returns the suggestions for a workspace: binding templates in
// binding order, then artifact templates in artifact order. Position is the
// index in the result. IDs and timestamps are left for the caller to stamp.
func Generate(workspaceID uuid.UUID, bindings []domain.SourceBinding, artifacts []domain.Artifact) []domain.Suggestion {
	out := []domain.Suggestion{}

	for _, b := range bindings {
		bindingID := b.ID
		name := ""
		if b.Config != nil {
			name = b.Config.DisplayName()
		}

		for _, t := range bindingTemplates[b.Type] {
			config := t.config()
			config["source_type"] = string(b.Type)
			out = append(out, domain.Suggestion{
				WorkspaceID:     workspaceID,
				SourceBindingID: &bindingID,
				Title:           t.Title,
				Description:     t.describe(name),
				ActionKind:      t.ActionKind,
				ActionConfig:    config,
			})
		}
	}

	for _, a := range artifacts {
		artifactID := a.ID
		bindingID := a.SourceBindingID

		for _, t := range artifactFamilies[strings.ToLower(a.Kind)] {
			config := t.config()
			config["artifact_kind"] = a.Kind
			out = append(out, domain.Suggestion{
				WorkspaceID:     workspaceID,
				SourceBindingID: &bindingID,
				ArtifactID:      &artifactID,
				Title:           t.Title,
				Description:     t.describe(a.Name),
				ActionKind:      t.ActionKind,
				ActionConfig:    config,
			})
		}
	}

	for i := range out {
		out[i].Position = i
	}
	return out
}

// config returns a fresh action_config carrying widget_kind
func (t template) config() map[string]any {
	config := make(map[string]any, len(t.Config)+2)
	for k, v := range t.Config {
		config[k] = v
	}
	config["widget_kind"] = t.WidgetKind
	return config
}

func (t template) describe(name string) string {
	if strings.TrimSpace(name) == "" {
		return t.Fallback
	}
	return fmt.Sprintf(t.Description, name)
}
