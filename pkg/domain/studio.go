package domain

// AddSectionRequest describes a new section.
// TemplateID and Width are optional.
type AddSectionRequest struct {
	Type       string  `json:"type"`
	TemplateID *string `json:"templateId,omitempty"`
	Width      *string `json:"width,omitempty"`
}

// StudioState is a read-only summary of an editing session.
type StudioState struct {
	Canvas     *Canvas   `json:"canvas"`
	LayerOrder []string  `json:"layerOrder"`
	Selected   string    `json:"selected,omitempty"`
	Unsaved    bool      `json:"unsaved"`
	Position   int       `json:"position"`
	Length     int       `json:"length"`
	CanUndo    bool      `json:"canUndo"`
	CanRedo    bool      `json:"canRedo"`
	Notices    []Notice  `json:"notices"`
	View       ViewState `json:"view"`
}
