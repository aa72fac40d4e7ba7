package memory

import (
	"context"
	"slices"

	"github.com/aretw0/blueprint/pkg/domain"
)

// Catalog implements ports.ReferenceData from static in-memory lists.
// It is immutable after construction and therefore safe for concurrent use.
type Catalog struct {
	stores    []domain.Store
	pageTypes []domain.PageType
	templates []domain.SectionTemplate
	pages     map[string][]string
	contents  map[string][]string
}

// CatalogData is the seed for a Catalog.
type CatalogData struct {
	Stores         []domain.Store                 `json:"stores" mapstructure:"stores"`
	PageTypes      []domain.PageType              `json:"pageTypes" mapstructure:"page_types"`
	Templates      []domain.SectionTemplate       `json:"templates" mapstructure:"templates"`
	PageSections   []domain.PageSectionMapping    `json:"pageSections" mapstructure:"page_sections"`
	SectionContent []domain.SectionContentMapping `json:"sectionContent" mapstructure:"section_content"`
}

// NewCatalog creates a Catalog from data.
func NewCatalog(data CatalogData) *Catalog {
	c := &Catalog{
		stores:    slices.Clone(data.Stores),
		pageTypes: slices.Clone(data.PageTypes),
		templates: slices.Clone(data.Templates),
		pages:     make(map[string][]string),
		contents:  make(map[string][]string),
	}
	for _, m := range data.PageSections {
		c.pages[m.PageTypeID] = append(c.pages[m.PageTypeID], m.SectionTypes...)
	}
	for _, m := range data.SectionContent {
		c.contents[m.SectionType] = append(c.contents[m.SectionType], m.ContentTypes...)
	}
	return c
}

// DefaultCatalog returns the demo storefront catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(CatalogData{
		Stores: []domain.Store{
			{ID: "demo-store", Name: "Demo Store"},
		},
		PageTypes: []domain.PageType{
			{ID: "home", Name: "Home"},
			{ID: "product", Name: "Product"},
			{ID: "category", Name: "Category"},
		},
		Templates: []domain.SectionTemplate{
			{ID: "hero-split", Name: "Split Hero", SectionType: "HeroBanner", LayoutType: domain.LayoutColumn, LayoutConfig: domain.LayoutConfig{Columns: domain.Ptr(2)}},
			{ID: "grid-3", Name: "Three Column Grid", SectionType: "ProductGrid", LayoutType: domain.LayoutGrid, LayoutConfig: domain.LayoutConfig{Columns: domain.Ptr(3), Rows: domain.Ptr(2)}},
			{ID: "grid-4", Name: "Four Column Grid", SectionType: "ProductGrid", LayoutType: domain.LayoutGrid, LayoutConfig: domain.LayoutConfig{Columns: domain.Ptr(4)}},
		},
		PageSections: []domain.PageSectionMapping{
			{PageTypeID: "home", SectionTypes: []string{"Header", "HeroBanner", "ProductGrid", "Testimonials", "Footer"}},
			{PageTypeID: "product", SectionTypes: []string{"Header", "ProductDetail", "Reviews", "Footer"}},
			{PageTypeID: "category", SectionTypes: []string{"Header", "Filters", "ProductGrid", "Footer"}},
		},
		SectionContent: []domain.SectionContentMapping{
			{SectionType: "HeroBanner", ContentTypes: []string{"image", "headline", "cta"}},
			{SectionType: "ProductGrid", ContentTypes: []string{"product-card"}},
			{SectionType: "Header", ContentTypes: []string{"logo", "menu", "search"}},
		},
	})
}

func (c *Catalog) Stores(ctx context.Context) ([]domain.Store, error) {
	return slices.Clone(c.stores), nil
}

func (c *Catalog) PageTypes(ctx context.Context) ([]domain.PageType, error) {
	return slices.Clone(c.pageTypes), nil
}

func (c *Catalog) SectionTemplates(ctx context.Context) ([]domain.SectionTemplate, error) {
	return slices.Clone(c.templates), nil
}

// PageSections returns the allowed section types; unknown page types yield an empty list.
func (c *Catalog) PageSections(ctx context.Context, pageTypeID string) ([]string, error) {
	return slices.Clone(c.pages[pageTypeID]), nil
}

func (c *Catalog) SectionContent(ctx context.Context, sectionType string) ([]string, error) {
	return slices.Clone(c.contents[sectionType]), nil
}
