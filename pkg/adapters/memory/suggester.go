package memory

import (
	"context"
	"strings"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/proposal"
)

// Suggester implements ports.LayoutSuggester with deterministic rules.
// It stands in for a real layout suggestion service in demos and tests.
type Suggester struct{}

// NewSuggester creates a rule-based suggester.
func NewSuggester() *Suggester {
	return &Suggester{}
}

// Suggest returns one descriptor per desired section label.
// Labels that look like known section kinds get matching layout hints.
func (s *Suggester) Suggest(ctx context.Context, req domain.LayoutRequest) ([]domain.SectionDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.SectionDescriptor, 0, len(req.DesiredSections))
	for _, label := range req.DesiredSections {
		d := domain.SectionDescriptor{
			Type:  proposal.TypeFromLabel(label),
			Label: label,
		}

		lower := strings.ToLower(label)
		switch {
		case strings.Contains(lower, "header"), strings.Contains(lower, "footer"):
			d.Height = domain.Ptr(domain.DefaultFixedHeight)
		case strings.Contains(lower, "grid"), strings.Contains(lower, "gallery"), strings.Contains(lower, "product"):
			d.LayoutType = domain.Ptr(string(domain.LayoutGrid))
			d.Columns = domain.Ptr(columnsFor(req.LayoutStyle))
		case strings.Contains(lower, "hero"), strings.Contains(lower, "banner"):
			d.Alignment = domain.Ptr(string(domain.AlignCenter))
		}

		if req.ContentFocus != "" {
			d.Style = map[string]string{"data-focus": req.ContentFocus}
		}
		out = append(out, d)
	}
	return out, nil
}

func columnsFor(style string) int {
	switch strings.ToLower(style) {
	case "minimal":
		return 2
	case "dense", "catalog":
		return 4
	default:
		return 3
	}
}
