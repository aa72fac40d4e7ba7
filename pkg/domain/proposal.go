package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LayoutRequest describes the page shape sent to a layout suggestion service.
type LayoutRequest struct {
	PageType        string   `json:"pageType"`
	DesiredSections []string `json:"desiredSections"`
	LayoutStyle     string   `json:"layoutStyle,omitempty"`
	ContentFocus    string   `json:"contentFocus,omitempty"`
}

// SectionDescriptor is a loosely-typed candidate section returned by a layout
// suggestion service. Every field is optional; defaults are applied on merge.
type SectionDescriptor struct {
	Type       string            `json:"type,omitempty"`
	Label      string            `json:"label,omitempty"`
	Width      *string           `json:"width,omitempty"`
	Height     *string           `json:"height,omitempty"`
	LayoutType *string           `json:"layoutType,omitempty"`
	Columns    *int              `json:"columns,omitempty"`
	Rows       *int              `json:"rows,omitempty"`
	Alignment  *string           `json:"alignment,omitempty"`
	Style      map[string]string `json:"style,omitempty"`
	Content    *string           `json:"content,omitempty"`
}

// ParseDescriptors decodes a layout proposal payload.
// It accepts a bare JSON array or an object with a "sections" array.
func ParseDescriptors(data []byte) ([]SectionDescriptor, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidProposal)
	}

	var descriptors []SectionDescriptor
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &descriptors); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProposal, err)
		}
	case '{':
		var wrapper struct {
			Sections *[]SectionDescriptor `json:"sections"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProposal, err)
		}
		if wrapper.Sections == nil {
			return nil, fmt.Errorf("%w: missing sections", ErrInvalidProposal)
		}
		descriptors = *wrapper.Sections
	default:
		return nil, fmt.Errorf("%w: unexpected payload", ErrInvalidProposal)
	}
	return descriptors, nil
}
