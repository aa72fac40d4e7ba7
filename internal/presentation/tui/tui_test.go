package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/blueprint"
	"github.com/aretw0/blueprint/pkg/adapters/memory"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutline_NoCanvas(t *testing.T) {
	assert.Equal(t, "# No canvas open\n", Outline(domain.StudioState{}))
}

func TestOutline_Studio(t *testing.T) {
	studio := blueprint.New()
	ctx := context.Background()
	_, err := studio.Open(ctx, "demo-store", "home")
	require.NoError(t, err)
	_, err = studio.AddSection(ctx, domain.AddSectionRequest{Type: "Header"})
	require.NoError(t, err)
	c, err := studio.AddSection(ctx, domain.AddSectionRequest{Type: "ProductGrid", TemplateID: domain.Ptr("grid-3")})
	require.NoError(t, err)
	require.NoError(t, studio.Select(c.Sections[1].ID))

	out := Outline(studio.State())

	assert.Contains(t, out, "store **demo-store**")
	assert.Contains(t, out, "*unsaved changes*")
	assert.Contains(t, out, "| 1 | Header |")
	assert.Contains(t, out, "| 2 | **ProductGrid** ◀ | grid 3")
	assert.Contains(t, out, "History 3/3 (undo available)")
	assert.NotContains(t, out, "## Notices")
}

func TestOutline_EmptyCanvasAndNotices(t *testing.T) {
	st := domain.StudioState{
		Canvas: domain.NewCanvas("c1", "demo-store", "home", time.Time{}),
		Notices: []domain.Notice{{
			ID: "n1", Level: domain.NoticeWarning, Code: domain.NoticeAutosaveFailed, Message: "draft not saved",
		}},
	}

	out := Outline(st)
	assert.Contains(t, out, "_This canvas has no sections yet._")
	assert.Contains(t, out, "- **warning** draft not saved")
}

func TestCatalog(t *testing.T) {
	templates, err := memory.DefaultCatalog().SectionTemplates(context.Background())
	require.NoError(t, err)

	out := Catalog(templates)
	assert.True(t, strings.HasPrefix(out, "# Section templates\n"))
	assert.Contains(t, out, "`grid-3`")
}

func TestWrite_NonTerminalIsRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "# Title\n"))
	assert.Equal(t, "# Title\n", buf.String())
	assert.False(t, IsTerminal(&buf))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[", "no escape codes when not writing to a terminal")
}
