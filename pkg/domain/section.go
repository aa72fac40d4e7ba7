package domain

import (
	"maps"
)

// LayoutType defines how a section lays out its children.
type LayoutType string

const (
	LayoutRow    LayoutType = "row"
	LayoutColumn LayoutType = "column"
	LayoutGrid   LayoutType = "grid"
	LayoutCustom LayoutType = "custom"
)

// Valid reports whether l is one of the known layout types.
func (l LayoutType) Valid() bool {
	switch l {
	case LayoutRow, LayoutColumn, LayoutGrid, LayoutCustom:
		return true
	}
	return false
}

// Alignment defines the horizontal alignment of a section.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Valid reports whether a is one of the known alignments.
func (a Alignment) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// Section types with a fixed default height.
const (
	SectionTypeHeader = "Header"
	SectionTypeFooter = "Footer"
)

const (
	DefaultFixedHeight = "64px"
	DefaultHeight      = "auto"
	DefaultWidth       = "100%"
	WidthFull          = "full"
)

// Dimensions holds CSS-like size values ("100%", "auto", "64px").
type Dimensions struct {
	Width     string  `json:"width"`
	Height    string  `json:"height"`
	MinWidth  *string `json:"minWidth,omitempty"`
	MinHeight *string `json:"minHeight,omitempty"`
}

// LayoutConfig holds optional grid parameters.
type LayoutConfig struct {
	Columns *int `json:"columns,omitempty"`
	Rows    *int `json:"rows,omitempty"`
}

// Section is the atomic page block.
// Order is derived from the section's position in Canvas.Sections and is never
// authoritative on its own.
type Section struct {
	ID                  string            `json:"id"`
	Type                string            `json:"type"`
	Dimensions          Dimensions        `json:"dimensions"`
	Order               int               `json:"order"`
	LayoutType          LayoutType        `json:"layoutType"`
	LayoutConfig        LayoutConfig      `json:"layoutConfig"`
	Width               *string           `json:"width,omitempty"`
	Style               map[string]string `json:"style"`
	Advanced            map[string]Value  `json:"advanced"`
	VisibilityCondition *string           `json:"visibility_condition,omitempty"`
	Content             *string           `json:"content,omitempty"`
	Alignment           Alignment         `json:"alignment"`
}

// DefaultHeightFor returns the initial height for a new section of the given type.
func DefaultHeightFor(sectionType string) string {
	if sectionType == SectionTypeHeader || sectionType == SectionTypeFooter {
		return DefaultFixedHeight
	}
	return DefaultHeight
}

// Clone returns a deep copy of the section. Nil maps stay nil.
func (s Section) Clone() Section {
	s.Dimensions.MinWidth = clonePtr(s.Dimensions.MinWidth)
	s.Dimensions.MinHeight = clonePtr(s.Dimensions.MinHeight)
	s.LayoutConfig.Columns = clonePtr(s.LayoutConfig.Columns)
	s.LayoutConfig.Rows = clonePtr(s.LayoutConfig.Rows)
	s.Width = clonePtr(s.Width)
	s.VisibilityCondition = clonePtr(s.VisibilityCondition)
	s.Content = clonePtr(s.Content)
	if s.Style != nil {
		s.Style = maps.Clone(s.Style)
	}
	s.Advanced = cloneValues(s.Advanced)
	return s
}

// SectionPatch is a shallow partial update. Nil fields are left untouched.
// It has no ID or Order field: identity and position cannot be patched.
type SectionPatch struct {
	Type                *string           `json:"type,omitempty"`
	Dimensions          *Dimensions       `json:"dimensions,omitempty"`
	LayoutType          *LayoutType       `json:"layoutType,omitempty"`
	LayoutConfig        *LayoutConfig     `json:"layoutConfig,omitempty"`
	Width               *string           `json:"width,omitempty"`
	Style               map[string]string `json:"style,omitempty"`
	Advanced            map[string]Value  `json:"advanced,omitempty"`
	VisibilityCondition *string           `json:"visibility_condition,omitempty"`
	Content             *string           `json:"content,omitempty"`
	Alignment           *Alignment        `json:"alignment,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p SectionPatch) IsEmpty() bool {
	return p.Type == nil && p.Dimensions == nil && p.LayoutType == nil &&
		p.LayoutConfig == nil && p.Width == nil && p.Style == nil &&
		p.Advanced == nil && p.VisibilityCondition == nil && p.Content == nil &&
		p.Alignment == nil
}

// Merge folds next into p; fields set in next win.
func (p SectionPatch) Merge(next SectionPatch) SectionPatch {
	if next.Type != nil {
		p.Type = next.Type
	}
	if next.Dimensions != nil {
		p.Dimensions = next.Dimensions
	}
	if next.LayoutType != nil {
		p.LayoutType = next.LayoutType
	}
	if next.LayoutConfig != nil {
		p.LayoutConfig = next.LayoutConfig
	}
	if next.Width != nil {
		p.Width = next.Width
	}
	if next.Style != nil {
		p.Style = next.Style
	}
	if next.Advanced != nil {
		p.Advanced = next.Advanced
	}
	if next.VisibilityCondition != nil {
		p.VisibilityCondition = next.VisibilityCondition
	}
	if next.Content != nil {
		p.Content = next.Content
	}
	if next.Alignment != nil {
		p.Alignment = next.Alignment
	}
	return p
}

// Apply returns a copy of s with the patch applied. ID and Order are preserved.
func (p SectionPatch) Apply(s Section) Section {
	out := s.Clone()
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Dimensions != nil {
		d := *p.Dimensions
		d.MinWidth = clonePtr(d.MinWidth)
		d.MinHeight = clonePtr(d.MinHeight)
		out.Dimensions = d
	}
	if p.LayoutType != nil {
		out.LayoutType = *p.LayoutType
	}
	if p.LayoutConfig != nil {
		out.LayoutConfig = LayoutConfig{
			Columns: clonePtr(p.LayoutConfig.Columns),
			Rows:    clonePtr(p.LayoutConfig.Rows),
		}
	}
	if p.Width != nil {
		out.Width = clonePtr(p.Width)
	}
	if p.Style != nil {
		out.Style = maps.Clone(p.Style)
	}
	if p.Advanced != nil {
		out.Advanced = cloneValues(p.Advanced)
	}
	if p.VisibilityCondition != nil {
		out.VisibilityCondition = clonePtr(p.VisibilityCondition)
	}
	if p.Content != nil {
		out.Content = clonePtr(p.Content)
	}
	if p.Alignment != nil {
		out.Alignment = *p.Alignment
	}
	return out
}

// Ptr returns a pointer to v. Handy for optional fields.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
