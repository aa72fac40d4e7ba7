package ports

import (
	"context"

	"github.com/aretw0/blueprint/pkg/domain"
)

// CanvasService is the canonical source of truth for canvases.
type CanvasService interface {
	// Fetch returns the canonical canvas for a page.
	// Returns domain.ErrCanvasNotFound when the page has no canvas yet.
	Fetch(ctx context.Context, storeID, pageTypeID string) (*domain.Canvas, error)

	// Save persists the canvas as a draft revision.
	Save(ctx context.Context, canvas *domain.Canvas) error

	// Publish persists the canvas and marks it live.
	Publish(ctx context.Context, canvas *domain.Canvas) error
}

// ReferenceData exposes the read-only catalogs an editing session needs.
type ReferenceData interface {
	Stores(ctx context.Context) ([]domain.Store, error)
	PageTypes(ctx context.Context) ([]domain.PageType, error)
	SectionTemplates(ctx context.Context) ([]domain.SectionTemplate, error)

	// PageSections lists the section types allowed on a page type.
	PageSections(ctx context.Context, pageTypeID string) ([]string, error)

	// SectionContent lists the content kinds allowed inside a section type.
	SectionContent(ctx context.Context, sectionType string) ([]string, error)
}

// LayoutSuggester asks an external service for candidate sections.
// The returned descriptors are untrusted and loosely typed.
type LayoutSuggester interface {
	Suggest(ctx context.Context, req domain.LayoutRequest) ([]domain.SectionDescriptor, error)
}
