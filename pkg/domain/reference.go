package domain

// Store is a storefront that owns pages.
type Store struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
}

// PageType is a kind of page (home, product, checkout...).
type PageType struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
}

// SectionTemplate is a reusable layout preset for a section type.
type SectionTemplate struct {
	ID           string       `json:"id" mapstructure:"id"`
	Name         string       `json:"name" mapstructure:"name"`
	SectionType  string       `json:"sectionType" mapstructure:"section_type"`
	LayoutType   LayoutType   `json:"layoutType" mapstructure:"layout_type"`
	LayoutConfig LayoutConfig `json:"layoutConfig" mapstructure:"layout_config"`
}

// PageSectionMapping lists the section types allowed on a page type.
type PageSectionMapping struct {
	PageTypeID   string   `json:"pageTypeId" mapstructure:"page_type_id"`
	SectionTypes []string `json:"sectionTypes" mapstructure:"section_types"`
}

// SectionContentMapping lists the content types allowed inside a section type.
type SectionContentMapping struct {
	SectionType  string   `json:"sectionType" mapstructure:"section_type"`
	ContentTypes []string `json:"contentTypes" mapstructure:"content_types"`
}
