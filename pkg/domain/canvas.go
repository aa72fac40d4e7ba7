package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// CanvasStatus defines the publication state of a canvas.
type CanvasStatus string

const (
	StatusDraft     CanvasStatus = "draft"
	StatusPublished CanvasStatus = "published"
)

// Valid reports whether s is a known status.
func (s CanvasStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Canvas is the page-level document under edit.
// A Canvas value is treated as immutable once committed to history:
// every mutation works on a Clone.
type Canvas struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	StoreID      string           `json:"storeId"`
	PageTypeID   string           `json:"pageTypeId"`
	Status       CanvasStatus     `json:"status"`
	Sections     []Section        `json:"sections"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	ThemeID      *string          `json:"themeId,omitempty"`
	TemplateID   *string          `json:"templateId,omitempty"`
	CanvasConfig map[string]Value `json:"canvasConfig,omitempty"`
}

// DefaultCanvasID derives a stable canvas ID from the page identity.
// It is used when no canonical canvas could be fetched, so that offline drafts
// written for the page can still be found on the next load.
func DefaultCanvasID(storeID, pageTypeID string) string {
	return storeID + "-" + pageTypeID
}

// NewCanvas creates a minimal empty draft canvas.
func NewCanvas(id, storeID, pageTypeID string, now time.Time) *Canvas {
	return &Canvas{
		ID:         id,
		StoreID:    storeID,
		PageTypeID: pageTypeID,
		Status:     StatusDraft,
		Sections:   []Section{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// DraftKey returns the local storage key for a canvas draft.
func DraftKey(canvasID string) string {
	return "canvas-draft-" + canvasID
}

// Clone returns a deep copy of the canvas.
func (c *Canvas) Clone() *Canvas {
	if c == nil {
		return nil
	}
	out := *c
	if c.Sections != nil {
		out.Sections = make([]Section, len(c.Sections))
		for i, s := range c.Sections {
			out.Sections[i] = s.Clone()
		}
	}
	out.ThemeID = clonePtr(c.ThemeID)
	out.TemplateID = clonePtr(c.TemplateID)
	out.CanvasConfig = cloneValues(c.CanvasConfig)
	return &out
}

// Equal reports whether two canvases hold the same document.
// UpdatedAt is a modification stamp, not content, and is ignored.
func (c *Canvas) Equal(o *Canvas) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.ID != o.ID || c.Title != o.Title || c.StoreID != o.StoreID ||
		c.PageTypeID != o.PageTypeID || c.Status != o.Status {
		return false
	}
	if !c.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if !reflect.DeepEqual(c.ThemeID, o.ThemeID) || !reflect.DeepEqual(c.TemplateID, o.TemplateID) {
		return false
	}
	if len(c.CanvasConfig) != len(o.CanvasConfig) || (len(c.CanvasConfig) > 0 && !reflect.DeepEqual(c.CanvasConfig, o.CanvasConfig)) {
		return false
	}
	if len(c.Sections) != len(o.Sections) {
		return false
	}
	for i := range c.Sections {
		if !reflect.DeepEqual(c.Sections[i], o.Sections[i]) {
			return false
		}
	}
	return true
}

// IndexOf returns the position of the section with the given ID, or -1.
func (c *Canvas) IndexOf(id string) int {
	for i, s := range c.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Section returns a copy of the section with the given ID.
func (c *Canvas) Section(id string) (Section, bool) {
	i := c.IndexOf(id)
	if i < 0 {
		return Section{}, false
	}
	return c.Sections[i].Clone(), true
}

// SectionIDs returns the section IDs in array order.
func (c *Canvas) SectionIDs() []string {
	ids := make([]string, len(c.Sections))
	for i, s := range c.Sections {
		ids[i] = s.ID
	}
	return ids
}

// Reindex sets every section's Order to its array index.
// Array position is authoritative; stored Order values are repaired.
func (c *Canvas) Reindex() {
	for i := range c.Sections {
		c.Sections[i].Order = i
	}
}

// Validate checks the structural invariants of the canvas.
func (c *Canvas) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: canvas id is empty", ErrInvalidSnapshot)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSnapshot, c.Status)
	}
	seen := make(map[string]struct{}, len(c.Sections))
	for i, s := range c.Sections {
		if s.ID == "" {
			return fmt.Errorf("%w: section %d has no id", ErrInvalidSnapshot, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: %w: %s", ErrInvalidSnapshot, ErrDuplicateSection, s.ID)
		}
		seen[s.ID] = struct{}{}
		if !s.LayoutType.Valid() {
			return fmt.Errorf("%w: section %s has unknown layout type %q", ErrInvalidSnapshot, s.ID, s.LayoutType)
		}
		if !s.Alignment.Valid() {
			return fmt.Errorf("%w: section %s has unknown alignment %q", ErrInvalidSnapshot, s.ID, s.Alignment)
		}
	}
	return nil
}

// MarshalSnapshot serializes the canvas verbatim.
func MarshalSnapshot(c *Canvas) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal canvas: %w", err)
	}
	return data, nil
}

// ParseSnapshot decodes and validates a serialized canvas.
// Section order values are repaired from array position.
func ParseSnapshot(data []byte) (*Canvas, error) {
	var c Canvas
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if c.Sections == nil {
		c.Sections = []Section{}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Reindex()
	return &c, nil
}
