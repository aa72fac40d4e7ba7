package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCanvas() *Canvas {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCanvas("canvas-1", "store-1", "home", now)
	c.Title = "Home"
	c.ThemeID = Ptr("dark")
	c.Sections = []Section{
		{
			ID:         "header",
			Type:       SectionTypeHeader,
			Dimensions: Dimensions{Width: DefaultWidth, Height: DefaultFixedHeight},
			LayoutType: LayoutRow,
			Style:      map[string]string{"background": "#fff"},
			Advanced:   map[string]Value{"sticky": Bool(true)},
			Alignment:  AlignLeft,
		},
		{
			ID:           "grid",
			Type:         "ProductGrid",
			Dimensions:   Dimensions{Width: DefaultWidth, Height: DefaultHeight},
			Order:        1,
			LayoutType:   LayoutGrid,
			LayoutConfig: LayoutConfig{Columns: Ptr(3)},
			Width:        Ptr(WidthFull),
			Alignment:    AlignCenter,
		},
	}
	return c
}

func TestCanvas_CloneIsDeep(t *testing.T) {
	c := sampleCanvas()
	cp := c.Clone()

	cp.Sections[0].Style["background"] = "#000"
	*cp.Sections[1].LayoutConfig.Columns = 4
	*cp.ThemeID = "light"

	assert.Equal(t, "#fff", c.Sections[0].Style["background"])
	assert.Equal(t, 3, *c.Sections[1].LayoutConfig.Columns)
	assert.Equal(t, "dark", *c.ThemeID)
}

func TestCanvas_EqualIgnoresUpdatedAt(t *testing.T) {
	c := sampleCanvas()
	cp := c.Clone()
	cp.UpdatedAt = cp.UpdatedAt.Add(time.Hour)

	assert.True(t, c.Equal(cp))

	cp.Sections[0].Type = "Banner"
	assert.False(t, c.Equal(cp))
}

func TestCanvas_Validate(t *testing.T) {
	c := sampleCanvas()
	require.NoError(t, c.Validate())

	dup := c.Clone()
	dup.Sections[1].ID = "header"
	assert.ErrorIs(t, dup.Validate(), ErrDuplicateSection)
	assert.ErrorIs(t, dup.Validate(), ErrInvalidSnapshot)

	badLayout := c.Clone()
	badLayout.Sections[0].LayoutType = "diagonal"
	assert.ErrorIs(t, badLayout.Validate(), ErrInvalidSnapshot)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	c := sampleCanvas()

	data, err := MarshalSnapshot(c)
	require.NoError(t, err)

	parsed, err := ParseSnapshot(data)
	require.NoError(t, err)

	assert.True(t, c.Equal(parsed))
	assert.True(t, c.UpdatedAt.Equal(parsed.UpdatedAt))
}

func TestParseSnapshot_RepairsOrder(t *testing.T) {
	c := sampleCanvas()
	c.Sections[0].Order = 7
	c.Sections[1].Order = 7

	data, err := MarshalSnapshot(c)
	require.NoError(t, err)

	parsed, err := ParseSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, 0, parsed.Sections[0].Order)
	assert.Equal(t, 1, parsed.Sections[1].Order)
}

func TestParseSnapshot_RejectsGarbage(t *testing.T) {
	_, err := ParseSnapshot([]byte(`{"id": 12}`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestSectionPatch_ApplyKeepsIdentity(t *testing.T) {
	s := sampleCanvas().Sections[1]
	patch := SectionPatch{
		Type:      Ptr("FeaturedGrid"),
		Alignment: Ptr(AlignRight),
	}

	out := patch.Apply(s)
	assert.Equal(t, s.ID, out.ID)
	assert.Equal(t, s.Order, out.Order)
	assert.Equal(t, "FeaturedGrid", out.Type)
	assert.Equal(t, AlignRight, out.Alignment)
	assert.Equal(t, LayoutGrid, out.LayoutType)
}

func TestSectionPatch_Merge(t *testing.T) {
	first := SectionPatch{Dimensions: &Dimensions{Width: "50%", Height: "auto"}}
	second := SectionPatch{Dimensions: &Dimensions{Width: "60%", Height: "auto"}, Content: Ptr("{}")}

	merged := first.Merge(second)
	assert.Equal(t, "60%", merged.Dimensions.Width)
	assert.Equal(t, "{}", *merged.Content)
	assert.False(t, merged.IsEmpty())
	assert.True(t, SectionPatch{}.IsEmpty())
}

func TestDefaultHeightFor(t *testing.T) {
	assert.Equal(t, "64px", DefaultHeightFor("Header"))
	assert.Equal(t, "64px", DefaultHeightFor("Footer"))
	assert.Equal(t, "auto", DefaultHeightFor("HeroBanner"))
}
