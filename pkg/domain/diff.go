package domain

import (
	"reflect"
	"slices"
)

// CanvasDiff represents the changes between two canvas snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type CanvasDiff struct {
	// CanvasID is always present to identify the target.
	CanvasID string `json:"canvas_id"`

	// Added holds sections whose IDs are new.
	Added []Section `json:"added,omitempty"`

	// Removed holds IDs that no longer exist.
	Removed []string `json:"removed,omitempty"`

	// Changed holds sections present in both snapshots whose content differs.
	// Order-only changes are reported through Order, not here.
	Changed []Section `json:"changed,omitempty"`

	// Order is the full new ID sequence, present only when it changed.
	Order []string `json:"order,omitempty"`

	Title  *string       `json:"title,omitempty"`
	Status *CanvasStatus `json:"status,omitempty"`
}

// Diff calculates the difference between oldCanvas and newCanvas.
// If oldCanvas is nil, or belongs to another canvas, the diff represents the
// entire newCanvas (initial load). It returns nil when nothing changed.
func Diff(oldCanvas, newCanvas *Canvas) *CanvasDiff {
	if newCanvas == nil {
		return nil
	}
	if oldCanvas != nil && oldCanvas.ID != newCanvas.ID {
		oldCanvas = nil
	}

	diff := &CanvasDiff{CanvasID: newCanvas.ID}

	if oldCanvas == nil || oldCanvas.Title != newCanvas.Title {
		diff.Title = &newCanvas.Title
	}
	if oldCanvas == nil || oldCanvas.Status != newCanvas.Status {
		diff.Status = &newCanvas.Status
	}

	previous := make(map[string]Section)
	if oldCanvas != nil {
		for _, s := range oldCanvas.Sections {
			previous[s.ID] = s
		}
	}

	current := make(map[string]struct{}, len(newCanvas.Sections))
	for _, s := range newCanvas.Sections {
		current[s.ID] = struct{}{}
		old, existed := previous[s.ID]
		if !existed {
			diff.Added = append(diff.Added, s.Clone())
			continue
		}
		// Compare content with order neutralized
		old.Order = s.Order
		if !reflect.DeepEqual(old, s) {
			diff.Changed = append(diff.Changed, s.Clone())
		}
	}

	if oldCanvas != nil {
		for _, s := range oldCanvas.Sections {
			if _, ok := current[s.ID]; !ok {
				diff.Removed = append(diff.Removed, s.ID)
			}
		}
	}

	newOrder := newCanvas.SectionIDs()
	if oldCanvas == nil || !slices.Equal(oldCanvas.SectionIDs(), newOrder) {
		diff.Order = newOrder
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *CanvasDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Changed) == 0 &&
		d.Order == nil &&
		d.Title == nil &&
		d.Status == nil
}

// ChangedIDs returns the IDs of added and modified sections, in that order.
func (d *CanvasDiff) ChangedIDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.Added)+len(d.Changed))
	for _, s := range d.Added {
		ids = append(ids, s.ID)
	}
	for _, s := range d.Changed {
		ids = append(ids, s.ID)
	}
	return ids
}
