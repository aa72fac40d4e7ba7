// Package loam serves reference data from a directory of Markdown/YAML
// documents managed by Loam. Each document's frontmatter describes one catalog
// entry (a store, a page type, a section template or an allow-list).
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

// Catalog adapts a Loam repository to ports.ReferenceData.
type Catalog struct {
	Repo *loam.TypedRepository[EntryMetadata]
}

// New creates a new Loam catalog adapter.
func New(repo *loam.TypedRepository[EntryMetadata]) *Catalog {
	return &Catalog{
		Repo: repo,
	}
}

func (c *Catalog) entries(ctx context.Context, kind string) ([]entry, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	var out []entry
	for _, doc := range docs {
		if doc.Data.Kind != kind {
			continue
		}
		id := doc.Data.ID
		if id == "" {
			id = trimExtension(filepath.Base(doc.ID))
		}
		out = append(out, entry{id: id, meta: doc.Data})
	}
	return out, nil
}

type entry struct {
	id   string
	meta EntryMetadata
}

func (e entry) name() string {
	if e.meta.Name != "" {
		return e.meta.Name
	}
	return e.id
}

// Open initializes a read-only Loam repository at dir and wraps it in a Catalog.
func Open(dir string) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across JSON and YAML sources.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[EntryMetadata](repo)), nil
}

// Stores implements ports.ReferenceData.
func (c *Catalog) Stores(ctx context.Context) ([]domain.Store, error) {
	entries, err := c.entries(ctx, KindStore)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Store, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.Store{ID: e.id, Name: e.name()})
	}
	return out, nil
}

// PageTypes implements ports.ReferenceData.
func (c *Catalog) PageTypes(ctx context.Context) ([]domain.PageType, error) {
	entries, err := c.entries(ctx, KindPageType)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PageType, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.PageType{ID: e.id, Name: e.name()})
	}
	return out, nil
}

// SectionTemplates implements ports.ReferenceData.
func (c *Catalog) SectionTemplates(ctx context.Context) ([]domain.SectionTemplate, error) {
	entries, err := c.entries(ctx, KindTemplate)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SectionTemplate, 0, len(entries))
	for _, e := range entries {
		layout, err := decodeLayout(e.meta.Layout)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", e.id, err)
		}
		out = append(out, domain.SectionTemplate{
			ID:          e.id,
			Name:        e.name(),
			SectionType: e.meta.SectionType,
			LayoutType:  domain.LayoutType(layout.Type),
			LayoutConfig: domain.LayoutConfig{
				Columns: layout.Columns,
				Rows:    layout.Rows,
			},
		})
	}
	return out, nil
}

// PageSections implements ports.ReferenceData.
// Several documents may contribute to the same page type.
func (c *Catalog) PageSections(ctx context.Context, pageTypeID string) ([]string, error) {
	entries, err := c.entries(ctx, KindPageSections)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.meta.PageTypeID == pageTypeID {
			out = append(out, e.meta.SectionTypes...)
		}
	}
	return out, nil
}

// SectionContent implements ports.ReferenceData.
func (c *Catalog) SectionContent(ctx context.Context, sectionType string) ([]string, error) {
	entries, err := c.entries(ctx, KindSectionContent)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.meta.SectionType == sectionType {
			out = append(out, e.meta.ContentTypes...)
		}
	}
	return out, nil
}

// decodeLayout accepts "grid" or {type: grid, columns: 3, rows: 2}.
// A missing layout defaults to row.
func decodeLayout(raw any) (layoutSpec, error) {
	spec := layoutSpec{Type: string(domain.LayoutRow)}
	switch v := raw.(type) {
	case nil:
	case string:
		spec.Type = v
	default:
		if err := mapstructure.WeakDecode(v, &spec); err != nil {
			return spec, fmt.Errorf("invalid layout: %w", err)
		}
		if spec.Type == "" {
			spec.Type = string(domain.LayoutRow)
		}
	}
	if !domain.LayoutType(spec.Type).Valid() {
		return spec, fmt.Errorf("unknown layout type %q", spec.Type)
	}
	return spec, nil
}

// Watch reports the IDs of catalog documents as they change.
func (c *Catalog) Watch(ctx context.Context) (<-chan string, error) {
	events, err := c.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
