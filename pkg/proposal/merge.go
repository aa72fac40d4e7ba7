// Package proposal turns loosely-typed layout suggestions into canvas sections.
package proposal

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/aretw0/blueprint/pkg/domain"
)

// FallbackType is used when neither a type nor a label is available.
const FallbackType = "Section"

// LabelKey is the Advanced key recording the label a section was proposed under.
const LabelKey = "ai_label"

// NewID returns a section ID namespaced by page type, insertion index and timestamp.
// The result never collides with a key in taken; a numeric suffix is added if needed.
func NewID(pageType string, index int, now time.Time, taken map[string]struct{}) string {
	ns := strings.ToLower(strings.TrimSpace(pageType))
	if ns == "" {
		ns = "page"
	}
	id := fmt.Sprintf("%s-%d-%d", ns, index, now.UnixMilli())
	if _, ok := taken[id]; !ok {
		return id
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// TypeFromLabel turns a free-text label ("hero banner") into a section type ("HeroBanner").
func TypeFromLabel(label string) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		runes := []rune(word)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	if b.Len() == 0 {
		return FallbackType
	}
	return b.String()
}

// Merge returns a copy of canvas with one new section per descriptor appended.
// Existing sections are never modified. Omitted or invalid descriptor fields fall
// back to defaults (100%/auto, row, full, left).
// An empty proposal wraps domain.ErrInvalidProposal.
func Merge(canvas *domain.Canvas, pageType string, descriptors []domain.SectionDescriptor, now time.Time) (*domain.Canvas, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("%w: no sections proposed", domain.ErrInvalidProposal)
	}

	out := canvas.Clone()
	taken := make(map[string]struct{}, len(out.Sections)+len(descriptors))
	for _, s := range out.Sections {
		taken[s.ID] = struct{}{}
	}

	base := len(out.Sections)
	for i, d := range descriptors {
		s := synthesize(d)
		s.ID = NewID(pageType, base+i, now, taken)
		s.Order = base + i
		taken[s.ID] = struct{}{}
		out.Sections = append(out.Sections, s)
	}
	return out, nil
}

// Fallback returns a copy of canvas with exactly one best-effort section appended,
// derived from the first requested label.
func Fallback(canvas *domain.Canvas, pageType string, labels []string, now time.Time) *domain.Canvas {
	var d domain.SectionDescriptor
	if len(labels) > 0 {
		d.Label = labels[0]
	}
	out, _ := Merge(canvas, pageType, []domain.SectionDescriptor{d}, now)
	return out
}

func synthesize(d domain.SectionDescriptor) domain.Section {
	typ := strings.TrimSpace(d.Type)
	if typ == "" {
		typ = TypeFromLabel(d.Label)
	}

	s := domain.Section{
		Type: typ,
		Dimensions: domain.Dimensions{
			Width:  domain.DefaultWidth,
			Height: domain.DefaultHeight,
		},
		LayoutType: domain.LayoutRow,
		Width:      domain.Ptr(domain.WidthFull),
		Style:      map[string]string{},
		Advanced:   map[string]domain.Value{},
		Alignment:  domain.AlignLeft,
	}

	if d.Width != nil && *d.Width != "" {
		s.Dimensions.Width = *d.Width
	}
	if d.Height != nil && *d.Height != "" {
		s.Dimensions.Height = *d.Height
	}
	if d.LayoutType != nil {
		if lt := domain.LayoutType(*d.LayoutType); lt.Valid() {
			s.LayoutType = lt
		}
	}
	if d.Alignment != nil {
		if a := domain.Alignment(*d.Alignment); a.Valid() {
			s.Alignment = a
		}
	}
	if d.Columns != nil && *d.Columns > 0 {
		s.LayoutConfig.Columns = domain.Ptr(*d.Columns)
	}
	if d.Rows != nil && *d.Rows > 0 {
		s.LayoutConfig.Rows = domain.Ptr(*d.Rows)
	}
	for k, v := range d.Style {
		s.Style[k] = v
	}
	if d.Content != nil {
		s.Content = domain.Ptr(*d.Content)
	}
	if d.Label != "" {
		s.Advanced[LabelKey] = domain.String(d.Label)
	}
	return s
}
