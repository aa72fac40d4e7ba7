// Package layers keeps the explicit display order of a canvas (the layer order)
// in step with the position of its sections.
//
// The Coordinator is not safe for concurrent use; the studio serializes access.
package layers

import (
	"fmt"
	"slices"

	"github.com/aretw0/blueprint/pkg/domain"
)

// Coordinator maintains the layer order: the top-to-bottom sequence of section IDs.
// After every reconcile the layer order is a permutation of the canvas section IDs
// and each section's Order equals its index.
type Coordinator struct {
	order []string
}

// New creates a Coordinator seeded from the given canvas (may be nil).
func New(canvas *domain.Canvas) *Coordinator {
	c := &Coordinator{}
	c.Reset(canvas)
	return c
}

// Order returns a copy of the current layer order.
func (c *Coordinator) Order() []string {
	return slices.Clone(c.order)
}

// Reset replaces the layer order with the array order of canvas.
// Used when a snapshot arrives from outside the coordinator (load, undo, redo, import).
func (c *Coordinator) Reset(canvas *domain.Canvas) {
	if canvas == nil {
		c.order = nil
		return
	}
	c.order = canvas.SectionIDs()
}

// Sync recomputes the layer order after sections were added or removed without
// going through the coordinator. Untouched IDs keep their relative order, IDs that
// disappeared are dropped and new IDs are appended in array order.
func (c *Coordinator) Sync(canvas *domain.Canvas) {
	present := make(map[string]struct{}, len(canvas.Sections))
	for _, s := range canvas.Sections {
		present[s.ID] = struct{}{}
	}

	next := make([]string, 0, len(canvas.Sections))
	kept := make(map[string]struct{}, len(c.order))
	for _, id := range c.order {
		if _, ok := present[id]; !ok {
			continue
		}
		if _, dup := kept[id]; dup {
			continue
		}
		kept[id] = struct{}{}
		next = append(next, id)
	}
	for _, s := range canvas.Sections {
		if _, ok := kept[s.ID]; !ok {
			kept[s.ID] = struct{}{}
			next = append(next, s.ID)
		}
	}
	c.order = next
}

// Apply returns a copy of canvas with its sections arranged by the layer order and
// every Order field repaired from the new position.
// The layer order is synced first, so Apply never drops or invents sections.
func (c *Coordinator) Apply(canvas *domain.Canvas) *domain.Canvas {
	c.Sync(canvas)

	out := canvas.Clone()
	index := make(map[string]int, len(c.order))
	for i, id := range c.order {
		index[id] = i
	}
	// Stable sort keeps array position authoritative for any tie.
	slices.SortStableFunc(out.Sections, func(a, b domain.Section) int {
		return index[a.ID] - index[b.ID]
	})
	out.Reindex()
	return out
}

// Reorder moves the section at index from to index to, as a drag-and-drop would.
// from == to returns an unchanged copy.
func (c *Coordinator) Reorder(canvas *domain.Canvas, from, to int) (*domain.Canvas, error) {
	c.Sync(canvas)

	n := len(c.order)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: reorder %d -> %d with %d sections", domain.ErrIndexOutOfRange, from, to, n)
	}

	id := c.order[from]
	next := slices.Delete(slices.Clone(c.order), from, from+1)
	next = slices.Insert(next, to, id)
	c.order = next

	return c.Apply(canvas), nil
}

// MoveUp swaps the section with its neighbor toward the top (index 0).
// It reports false, with no change, when the section is already first.
func (c *Coordinator) MoveUp(canvas *domain.Canvas, id string) (*domain.Canvas, bool, error) {
	return c.swap(canvas, id, -1)
}

// MoveDown swaps the section with its neighbor toward the bottom.
// It reports false, with no change, when the section is already last.
func (c *Coordinator) MoveDown(canvas *domain.Canvas, id string) (*domain.Canvas, bool, error) {
	return c.swap(canvas, id, 1)
}

func (c *Coordinator) swap(canvas *domain.Canvas, id string, step int) (*domain.Canvas, bool, error) {
	c.Sync(canvas)

	i := slices.Index(c.order, id)
	if i < 0 {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrSectionNotFound, id)
	}
	j := i + step
	if j < 0 || j >= len(c.order) {
		return canvas, false, nil
	}

	c.order[i], c.order[j] = c.order[j], c.order[i]
	return c.Apply(canvas), true, nil
}

// Consistent reports whether the layer order is a permutation of the canvas section
// IDs matching their array positions, with every Order field equal to its index.
func (c *Coordinator) Consistent(canvas *domain.Canvas) bool {
	if len(c.order) != len(canvas.Sections) {
		return false
	}
	for i, s := range canvas.Sections {
		if c.order[i] != s.ID || s.Order != i {
			return false
		}
	}
	return true
}
