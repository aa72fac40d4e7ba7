package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/blueprint/pkg/adapters/memory"
	"github.com/aretw0/blueprint/pkg/catalog"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend counts calls and can be switched to fail.
type countingBackend struct {
	*memory.Catalog
	calls int
	fail  bool
}

func (b *countingBackend) SectionTemplates(ctx context.Context) ([]domain.SectionTemplate, error) {
	b.calls++
	if b.fail {
		return nil, errors.New("reference service down")
	}
	return b.Catalog.SectionTemplates(ctx)
}

func (b *countingBackend) PageSections(ctx context.Context, pageTypeID string) ([]string, error) {
	b.calls++
	return b.Catalog.PageSections(ctx, pageTypeID)
}

func TestCache_Memoizes(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{Catalog: memory.DefaultCatalog()}
	cache := catalog.New(backend)

	first, err := cache.SectionTemplates(ctx)
	require.NoError(t, err)
	second, err := cache.SectionTemplates(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.calls)

	_, _ = cache.PageSections(ctx, "home")
	_, _ = cache.PageSections(ctx, "home")
	_, _ = cache.PageSections(ctx, "product")
	assert.Equal(t, 3, backend.calls, "each page type is cached separately")
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{Catalog: memory.DefaultCatalog(), fail: true}
	cache := catalog.New(backend)

	_, err := cache.SectionTemplates(ctx)
	require.Error(t, err)

	backend.fail = false
	templates, err := cache.SectionTemplates(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, templates)
	assert.Equal(t, 2, backend.calls)
}

func TestCache_TemplateAndInvalidate(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{Catalog: memory.DefaultCatalog()}
	cache := catalog.New(backend)

	tpl, ok, err := cache.Template(ctx, "grid-3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.LayoutGrid, tpl.LayoutType)

	_, ok, err = cache.Template(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	cache.Invalidate()
	_, _ = cache.SectionTemplates(ctx)
	assert.Equal(t, 2, backend.calls)
}
