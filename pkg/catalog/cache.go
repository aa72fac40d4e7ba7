// Package catalog caches reference data for the lifetime of an editing session.
package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/ports"
)

// Cache implements ports.ReferenceData by memoizing a backend.
// Successful lookups are kept until Invalidate; failures are not cached.
// Safe for concurrent use.
type Cache struct {
	backend ports.ReferenceData

	mu        sync.Mutex
	stores    []domain.Store
	pageTypes []domain.PageType
	templates []domain.SectionTemplate
	pages     map[string][]string
	contents  map[string][]string
	loaded    map[string]bool
}

// New wraps backend in a session cache.
func New(backend ports.ReferenceData) *Cache {
	c := &Cache{backend: backend}
	c.Invalidate()
	return c
}

// Invalidate drops every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores = nil
	c.pageTypes = nil
	c.templates = nil
	c.pages = make(map[string][]string)
	c.contents = make(map[string][]string)
	c.loaded = make(map[string]bool)
}

// memo returns the cached value for key or loads it with fetch.
// The lock is not held while fetching, so concurrent misses may both hit the backend.
func memo[T any](c *Cache, key string, get func() []T, set func([]T), fetch func() ([]T, error)) ([]T, error) {
	c.mu.Lock()
	if c.loaded[key] {
		v := slices.Clone(get())
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := fetch()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	set(slices.Clone(v))
	c.loaded[key] = true
	c.mu.Unlock()
	return v, nil
}

func (c *Cache) Stores(ctx context.Context) ([]domain.Store, error) {
	return memo(c, "stores",
		func() []domain.Store { return c.stores },
		func(v []domain.Store) { c.stores = v },
		func() ([]domain.Store, error) { return c.backend.Stores(ctx) })
}

func (c *Cache) PageTypes(ctx context.Context) ([]domain.PageType, error) {
	return memo(c, "page_types",
		func() []domain.PageType { return c.pageTypes },
		func(v []domain.PageType) { c.pageTypes = v },
		func() ([]domain.PageType, error) { return c.backend.PageTypes(ctx) })
}

func (c *Cache) SectionTemplates(ctx context.Context) ([]domain.SectionTemplate, error) {
	return memo(c, "templates",
		func() []domain.SectionTemplate { return c.templates },
		func(v []domain.SectionTemplate) { c.templates = v },
		func() ([]domain.SectionTemplate, error) { return c.backend.SectionTemplates(ctx) })
}

func (c *Cache) PageSections(ctx context.Context, pageTypeID string) ([]string, error) {
	return memo(c, "page:"+pageTypeID,
		func() []string { return c.pages[pageTypeID] },
		func(v []string) { c.pages[pageTypeID] = v },
		func() ([]string, error) { return c.backend.PageSections(ctx, pageTypeID) })
}

func (c *Cache) SectionContent(ctx context.Context, sectionType string) ([]string, error) {
	return memo(c, "content:"+sectionType,
		func() []string { return c.contents[sectionType] },
		func(v []string) { c.contents[sectionType] = v },
		func() ([]string, error) { return c.backend.SectionContent(ctx, sectionType) })
}

// Template looks up a section template by ID through the cache.
func (c *Cache) Template(ctx context.Context, id string) (domain.SectionTemplate, bool, error) {
	templates, err := c.SectionTemplates(ctx)
	if err != nil {
		return domain.SectionTemplate{}, false, err
	}
	for _, t := range templates {
		if t.ID == id {
			return t, true, nil
		}
	}
	return domain.SectionTemplate{}, false, nil
}
