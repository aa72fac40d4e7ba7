package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/blueprint/pkg/adapters/sqlite"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "blueprint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: error
drafts:
  backend: file
  dir: `+filepath.Join(dir, "drafts")+`
canvas:
  backend: sqlite
  path: `+filepath.Join(dir, "canvas.db")+`
`), 0644))
	return path
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	require.NoError(t, serveCmd.ParseFlags([]string{"--addr", ":9999", "--metrics=false"}))
	require.NoError(t, rootCmd.PersistentFlags().Set("config", cfgPath))
	require.NoError(t, rootCmd.PersistentFlags().Set("log-format", "json"))
	t.Cleanup(func() {
		rootCmd.PersistentFlags().Set("config", "")
		rootCmd.PersistentFlags().Set("log-format", "text")
	})

	cfg, err := loadConfig(serveCmd)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.False(t, cfg.Server.Metrics)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.Canvas.Backend)
}

func TestImportExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	c := domain.NewCanvas("demo-store-home", "demo-store", "home", time.Now())
	c.Sections = []domain.Section{{
		ID: "hero", Type: "HeroBanner",
		Dimensions: domain.Dimensions{Width: "100%", Height: "auto"},
		LayoutType: domain.LayoutRow, Alignment: domain.AlignLeft,
	}}
	data, err := domain.MarshalSnapshot(c)
	require.NoError(t, err)
	in := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(in, data, 0644))

	run(t, "validate", in)
	run(t, "--config", cfgPath, "import", in, "--publish")

	svc, err := sqlite.Open(filepath.Join(dir, "canvas.db"))
	require.NoError(t, err)
	stored, err := svc.Fetch(context.Background(), "demo-store", "home")
	require.NoError(t, err)
	require.NoError(t, svc.Close())
	assert.Equal(t, domain.StatusPublished, stored.Status)
	assert.Equal(t, []string{"hero"}, stored.SectionIDs())

	out := filepath.Join(dir, "out.json")
	run(t, "--config", cfgPath, "export", "demo-store", "home", "-o", out)
	exported, err := os.ReadFile(out)
	require.NoError(t, err)
	roundTrip, err := domain.ParseSnapshot(exported)
	require.NoError(t, err)
	assert.Equal(t, []string{"hero"}, roundTrip.SectionIDs())
}

func TestValidateSnapshot(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id":"c","sections":[{"id":"a"},{"id":"a"}]}`), 0644))

	assert.ErrorIs(t, validateSnapshot(bad), domain.ErrInvalidSnapshot)
	assert.Error(t, validateSnapshot(filepath.Join(dir, "missing.json")))
}
