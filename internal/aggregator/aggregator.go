// Package aggregator renders a workspace and its sources as plain-text
// context for the chat collaborator.
package aggregator

import (
	"fmt"
	"strings"

	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/textutil"
)

// MaxArtifactRunes bounds the content included per artifact
const MaxArtifactRunes = 10000

const truncatedMarker = "[... truncated]"

// Build renders the context block for a workspace
func Build(ws *domain.Workspace, bindings []domain.SourceBinding, artifacts []domain.Artifact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Workspace: %s\n", ws.Name)
	if desc := strings.TrimSpace(ws.Description); desc != "" {
		fmt.Fprintf(&b, "Description: %s\n", desc)
	}

	if len(bindings) > 0 {
		b.WriteString("\nConnected sources:\n")
		for _, binding := range bindings {
			fmt.Fprintf(&b, "- %s: %s", binding.Type, binding.Name)
			if binding.Config != nil {
				if name := binding.Config.DisplayName(); name != "" {
					fmt.Fprintf(&b, " (%s: %s)", binding.Config.DisplayField(), name)
				}
			}
			b.WriteString("\n")
		}
	}

	if len(artifacts) > 0 {
		b.WriteString("\nArtifacts:\n")
		for _, a := range artifacts {
			fmt.Fprintf(&b, "\n### %s (%s)\n", a.Name, a.Kind)
			if !a.HasContent() {
				continue
			}
			content, cut := textutil.TruncateRunes(*a.Content, MaxArtifactRunes)
			b.WriteString(content)
			if cut {
				b.WriteString("\n" + truncatedMarker)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
