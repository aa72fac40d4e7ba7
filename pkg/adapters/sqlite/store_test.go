package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/blueprint/pkg/adapters/sqlite"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/ports"
	"github.com/aretw0/blueprint/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.CanvasService = (*sqlite.CanvasService)(nil)

func open(t *testing.T, path string, opts ...sqlite.Option) *sqlite.CanvasService {
	t.Helper()
	svc, err := sqlite.Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestCanvasService_Contract(t *testing.T) {
	tests.CanvasServiceContractTest(t, open(t, ":memory:"), "demo-store", "home")
}

func TestCanvasService_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "blueprint.db")
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := domain.NewCanvas("c1", "demo-store", "product", now)
	c.ThemeID = domain.Ptr("dark")
	c.CanvasConfig = map[string]domain.Value{"maxWidth": domain.String("1200px")}
	c.Sections = []domain.Section{
		{ID: "s1", Type: "Header", Dimensions: domain.Dimensions{Width: "100%", Height: "64px"}, LayoutType: domain.LayoutRow, Alignment: domain.AlignLeft, Style: map[string]string{"color": "red"}},
	}

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, c))
	require.NoError(t, first.Close())

	second := open(t, path)
	got, err := second.Fetch(ctx, "demo-store", "product")
	require.NoError(t, err)
	assert.True(t, got.Equal(c), "got %+v", got)
	assert.True(t, got.UpdatedAt.Equal(now))
}

func TestCanvasService_PublishStampsAndForcesStatus(t *testing.T) {
	published := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)
	svc := open(t, ":memory:", sqlite.WithClock(func() time.Time { return published }))
	ctx := context.Background()

	c := domain.NewCanvas("c1", "demo-store", "home", published.Add(-time.Hour))
	require.NoError(t, svc.Save(ctx, c))

	_, ok, err := svc.PublishedAt(ctx, "demo-store", "home")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Publish(ctx, c))
	got, err := svc.Fetch(ctx, "demo-store", "home")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status)

	at, ok, err := svc.PublishedAt(ctx, "demo-store", "home")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(published))

	// A later draft save keeps the last publish time.
	require.NoError(t, svc.Save(ctx, c))
	at, ok, err = svc.PublishedAt(ctx, "demo-store", "home")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(published))
}

func TestCanvasService_RejectsInvalidCanvas(t *testing.T) {
	svc := open(t, ":memory:")
	c := domain.NewCanvas("", "demo-store", "home", time.Now())
	assert.ErrorIs(t, svc.Save(context.Background(), c), domain.ErrInvalidSnapshot)

	_, err := svc.Fetch(context.Background(), "demo-store", "home")
	assert.ErrorIs(t, err, domain.ErrCanvasNotFound)
}
