package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/blueprint/pkg/domain"
)

// Overlay contains editor state to highlight on the diagram.
type Overlay struct {
	Selected string
	Changed  []string
}

// GenerateMermaid produces a Mermaid flowchart of the canvas layer stack, top to bottom.
// Shapes follow the section layout:
// - Header/Footer: ([Stadium])
// - Grid: [[Subroutine]]
// - Column: [/Parallelogram/]
// - Default: [Rectangle]
// Sections with a visibility condition are reached through a dotted, labelled edge.
func GenerateMermaid(c *domain.Canvas, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if c == nil {
		return sb.String()
	}

	prev := ""
	for _, sec := range c.Sections {
		safeID := sanitizeMermaidID(sec.ID)

		opener, closer := "[", "]"
		switch {
		case sec.Type == domain.SectionTypeHeader || sec.Type == domain.SectionTypeFooter:
			opener, closer = "([", "])"
		case sec.LayoutType == domain.LayoutGrid:
			opener, closer = "[[", "]]"
		case sec.LayoutType == domain.LayoutColumn:
			opener, closer = "[/", "/]"
		}

		label := sec.Type
		if sec.LayoutType == domain.LayoutGrid && sec.LayoutConfig.Columns != nil {
			label = fmt.Sprintf("%s <br/> %d cols", label, *sec.LayoutConfig.Columns)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)

		if prev != "" {
			arrow := "-->"
			if sec.VisibilityCondition != nil && *sec.VisibilityCondition != "" {
				arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(*sec.VisibilityCondition))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", prev, arrow, safeID)
		}
		prev = safeID
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef changed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Changed {
			// Changed IDs may include sections removed since.
			if c.IndexOf(id) < 0 {
				continue
			}
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s changed;\n", safeID)
			}
		}

		if overlay.Selected != "" && c.IndexOf(overlay.Selected) >= 0 {
			fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.Selected))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return "s_" + s
}
