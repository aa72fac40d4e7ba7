package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/blueprint/pkg/domain"
)

// Outline renders the studio state as a markdown document: the layer stack in
// order, the history position, and any pending notices.
func Outline(st domain.StudioState) string {
	var sb strings.Builder
	c := st.Canvas
	if c == nil {
		return "# No canvas open\n"
	}

	title := c.Title
	if title == "" {
		title = c.ID
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "`%s` · store **%s** · page **%s** · %s", c.ID, c.StoreID, c.PageTypeID, c.Status)
	if st.Unsaved {
		sb.WriteString(" · *unsaved changes*")
	}
	sb.WriteString("\n\n")

	if len(c.Sections) == 0 {
		sb.WriteString("_This canvas has no sections yet._\n")
	} else {
		sb.WriteString("| # | Section | Layout | Size | Align |\n")
		sb.WriteString("|---|---------|--------|------|-------|\n")
		for _, sec := range c.Sections {
			name := sec.Type
			if sec.ID == st.Selected {
				name = "**" + name + "** ◀"
			}
			fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n",
				sec.Order+1, name, layoutLabel(sec), sizeLabel(sec.Dimensions), sec.Alignment)
		}
	}

	if st.Length > 0 {
		fmt.Fprintf(&sb, "\nHistory %d/%d", st.Position+1, st.Length)
		var moves []string
		if st.CanUndo {
			moves = append(moves, "undo")
		}
		if st.CanRedo {
			moves = append(moves, "redo")
		}
		if len(moves) > 0 {
			fmt.Fprintf(&sb, " (%s available)", strings.Join(moves, ", "))
		}
		sb.WriteString("\n")
	}

	if len(st.Notices) > 0 {
		sb.WriteString("\n## Notices\n\n")
		for _, n := range st.Notices {
			fmt.Fprintf(&sb, "- **%s** %s\n", n.Level, n.Message)
		}
	}
	return sb.String()
}

func layoutLabel(sec domain.Section) string {
	label := string(sec.LayoutType)
	cfg := sec.LayoutConfig
	if cfg.Columns != nil && cfg.Rows != nil {
		return fmt.Sprintf("%s %d×%d", label, *cfg.Columns, *cfg.Rows)
	}
	if cfg.Columns != nil {
		return fmt.Sprintf("%s %d cols", label, *cfg.Columns)
	}
	return label
}

func sizeLabel(d domain.Dimensions) string {
	return d.Width + " × " + d.Height
}

// Catalog renders a list of section templates grouped by section type.
func Catalog(templates []domain.SectionTemplate) string {
	byType := map[string][]domain.SectionTemplate{}
	for _, tpl := range templates {
		byType[tpl.SectionType] = append(byType[tpl.SectionType], tpl)
	}
	types := make([]string, 0, len(byType))
	for typ := range byType {
		types = append(types, typ)
	}
	sort.Strings(types)

	var sb strings.Builder
	sb.WriteString("# Section templates\n")
	for _, typ := range types {
		fmt.Fprintf(&sb, "\n## %s\n\n", typ)
		for _, tpl := range byType[typ] {
			fmt.Fprintf(&sb, "- `%s` %s (%s)\n", tpl.ID, tpl.Name, tpl.LayoutType)
		}
	}
	return sb.String()
}
