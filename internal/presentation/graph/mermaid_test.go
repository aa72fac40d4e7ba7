package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/blueprint/internal/presentation/graph"
	"github.com/aretw0/blueprint/pkg/domain"
)

func canvasOf(sections ...domain.Section) *domain.Canvas {
	c := &domain.Canvas{ID: "c1", Sections: sections}
	c.Reindex()
	return c
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		canvas   *domain.Canvas
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Fixed Sections Are Stadiums",
			canvas: canvasOf(
				domain.Section{ID: "h", Type: domain.SectionTypeHeader},
				domain.Section{ID: "f", Type: domain.SectionTypeFooter},
			),
			contains: []string{`s_h(["Header"])`, `s_f(["Footer"])`, "s_h --> s_f"},
		},
		{
			name: "Layout Shapes",
			canvas: canvasOf(
				domain.Section{ID: "g", Type: "ProductGrid", LayoutType: domain.LayoutGrid, LayoutConfig: domain.LayoutConfig{Columns: domain.Ptr(3)}},
				domain.Section{ID: "c", Type: "HeroBanner", LayoutType: domain.LayoutColumn},
				domain.Section{ID: "r", Type: "Testimonials", LayoutType: domain.LayoutRow},
			),
			contains: []string{
				`s_g[["ProductGrid <br/> 3 cols"]]`,
				`s_c[/"HeroBanner"/]`,
				`s_r["Testimonials"]`,
			},
		},
		{
			name: "ID Sanitization",
			canvas: canvasOf(
				domain.Section{ID: "0b1e-4c.x/y", Type: "Custom"},
			),
			contains: []string{`s_0b1e_4c_x_y["Custom"]`},
		},
		{
			name: "Visibility Condition Edge",
			canvas: canvasOf(
				domain.Section{ID: "a", Type: "Header"},
				domain.Section{ID: "b", Type: "Promo", VisibilityCondition: domain.Ptr(`user.segment == "vip"`)},
			),
			contains: []string{`s_a -. "user.segment == 'vip'" .-> s_b`},
		},
		{
			name: "Overlay",
			canvas: canvasOf(
				domain.Section{ID: "a", Type: "Header"},
				domain.Section{ID: "b", Type: "Footer"},
			),
			overlay:  &graph.Overlay{Selected: "b", Changed: []string{"a", "a", "gone"}},
			contains: []string{"class s_a changed;", "class s_b selected;"},
			excludes: []string{"class s_gone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.canvas, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, bad)
				}
			}
			if strings.Count(got, "class s_a changed;") > 1 {
				t.Errorf("changed class applied twice:\n%v", got)
			}
		})
	}
}

func TestGenerateMermaid_NilCanvas(t *testing.T) {
	if got := graph.GenerateMermaid(nil, nil); got != "graph TD\n" {
		t.Errorf("GenerateMermaid(nil) = %q", got)
	}
}
