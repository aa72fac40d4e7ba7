package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blueprint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
log:
  level: debug
  format: json
history:
  limit: "20"
drafts:
  backend: redis
  addr: redis:6379
  ttl: 24h
canvas:
  backend: sqlite
  path: /var/lib/blueprint/canvas.db
catalog:
  backend: loam
  dir: ./templates
  watch: true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.Metrics, "unset keys keep their defaults")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 20, cfg.History.Limit)
	assert.Equal(t, BackendRedis, cfg.Drafts.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Drafts.TTL)
	assert.Equal(t, "blueprint:draft:", cfg.Drafts.Prefix)
	assert.Equal(t, BackendSQLite, cfg.Canvas.Backend)
	assert.Equal(t, "./templates", cfg.Catalog.Dir)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, BackendMemory, cfg.AI.Backend)
}

func TestParse_JSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"ai":{"backend":"remote","url":"http://ai.local"}}`), ".json")
	require.NoError(t, err)
	assert.Equal(t, "http://ai.local", cfg.AI.URL)
}

func TestParse_TOML(t *testing.T) {
	cfg, err := Parse([]byte(`
[log]
format = "pretty"

[drafts]
backend = "file"
dir = "/tmp/drafts"
prune_schedule = "@hourly"
max_age = "72h"
`), ".toml")
	require.NoError(t, err)
	assert.Equal(t, "pretty", cfg.Log.Format)
	assert.Equal(t, BackendFile, cfg.Drafts.Backend)
	assert.Equal(t, "@hourly", cfg.Drafts.PruneSchedule)
	assert.Equal(t, 72*time.Hour, cfg.Drafts.MaxAge)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "server:\n  adress: x\n",
		"unknown backend":    "drafts:\n  backend: s3\n",
		"remote without url": "canvas:\n  backend: remote\n",
		"loam without dir":   "catalog:\n  backend: loam\n",
		"bad duration":       "drafts:\n  ttl: soon\n",
		"negative limit":     "history:\n  limit: -1\n",
		"bad log format":     "log:\n  format: xml\n",
		"malformed yaml":     "server: [\n",
		"short key":          "drafts:\n  encryption_key: c2hvcnQ=\n",
		"bad redact pattern": "drafts:\n  redact: ['(']\n",
		"bad prune schedule": "drafts:\n  prune_schedule: every tuesday\n",
		"prune without age":  "drafts:\n  prune_schedule: '@daily'\n  max_age: 0s\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), ".yaml")
			assert.Error(t, err)
		})
	}
}

func TestDraftsConfig_Keys(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	cfg, err := Parse([]byte("drafts:\n  encryption_key: "+key+"\n  fallback_keys: ["+key+"]\n  redact: [token]\n"), ".yaml")
	require.NoError(t, err)

	active, fallback, err := cfg.Drafts.Keys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	assert.Len(t, fallback, 1)
	assert.Equal(t, []string{"token"}, cfg.Drafts.Redact)

	active, _, err = Default().Drafts.Keys()
	require.NoError(t, err)
	assert.Nil(t, active)
}
