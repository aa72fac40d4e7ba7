package loam

// Entry kinds understood by the catalog.
const (
	KindStore          = "store"
	KindPageType       = "page_type"
	KindTemplate       = "template"
	KindPageSections   = "page_sections"
	KindSectionContent = "section_content"
)

// EntryMetadata is the frontmatter of a catalog document.
// Which fields apply depends on Kind.
type EntryMetadata struct {
	Kind string `json:"kind" mapstructure:"kind"`
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`

	// template
	SectionType string `json:"section_type" mapstructure:"section_type"`
	// Layout is either a layout type ("grid") or a map with type, columns and rows.
	Layout any `json:"layout" mapstructure:"layout"`

	// page_sections
	PageTypeID   string   `json:"page_type_id" mapstructure:"page_type_id"`
	SectionTypes []string `json:"section_types" mapstructure:"section_types"`

	// section_content
	ContentTypes []string `json:"content_types" mapstructure:"content_types"`
}

type layoutSpec struct {
	Type    string `mapstructure:"type"`
	Columns *int   `mapstructure:"columns"`
	Rows    *int   `mapstructure:"rows"`
}
