package domain

// DeviceMode selects the preview viewport.
type DeviceMode string

const (
	DeviceDesktop DeviceMode = "desktop"
	DeviceTablet  DeviceMode = "tablet"
	DeviceMobile  DeviceMode = "mobile"
)

// ViewState holds editor chrome toggles.
// It is owned by the caller, shared by reference with the Studio, and never
// recorded in history or drafts.
type ViewState struct {
	Zoom        float64    `json:"zoom"`
	Device      DeviceMode `json:"device"`
	ShowGrid    bool       `json:"showGrid"`
	ShowRulers  bool       `json:"showRulers"`
	SidebarOpen bool       `json:"sidebarOpen"`
}

// NewViewState returns the default editor view.
func NewViewState() *ViewState {
	return &ViewState{
		Zoom:        1,
		Device:      DeviceDesktop,
		SidebarOpen: true,
	}
}
