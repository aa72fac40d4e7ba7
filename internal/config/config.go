// Package config loads the blueprint.yaml file that selects which adapters back a Studio.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when no --config flag is given.
const DefaultPath = "blueprint.yaml"

// Backend names shared by the adapter sections.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendLoam   = "loam"
	BackendRemote = "remote"
)

// Config is the typed form of blueprint.yaml.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	History HistoryConfig `mapstructure:"history"`
	Drafts  DraftsConfig  `mapstructure:"drafts"`
	Canvas  CanvasConfig  `mapstructure:"canvas"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	AI      AIConfig      `mapstructure:"ai"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json | pretty
}

type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

type DraftsConfig struct {
	Backend  string        `mapstructure:"backend"`
	Dir      string        `mapstructure:"dir"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	MaxBytes int           `mapstructure:"max_bytes"`

	// EncryptionKey is a base64 AES-256 key; drafts are stored encrypted when set.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
	// Redact lists key patterns whose values are masked before a draft is written.
	Redact []string `mapstructure:"redact"`

	// PruneSchedule is a cron expression for the stale-draft sweep run by serve.
	PruneSchedule string        `mapstructure:"prune_schedule"`
	MaxAge        time.Duration `mapstructure:"max_age"`
}

// Keys decodes the encryption keys. It returns nil keys when encryption is off.
func (c DraftsConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if c.EncryptionKey == "" {
		return nil, nil, nil
	}
	decode := func(s string) ([]byte, error) {
		k, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid config: drafts encryption key: %w", err)
		}
		if len(k) != 32 {
			return nil, fmt.Errorf("invalid config: drafts encryption key must be 32 bytes, got %d", len(k))
		}
		return k, nil
	}
	if active, err = decode(c.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for _, s := range c.FallbackKeys {
		k, err := decode(s)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, k)
	}
	return active, fallback, nil
}

type CanvasConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	URL     string `mapstructure:"url"`
}

type CatalogConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	URL     string `mapstructure:"url"`
	Watch   bool   `mapstructure:"watch"`
}

type AIConfig struct {
	Backend string `mapstructure:"backend"`
	URL     string `mapstructure:"url"`
}

// Default returns a configuration that runs entirely in memory.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080", Metrics: true},
		Log:     LogConfig{Level: "info", Format: "text"},
		History: HistoryConfig{Limit: 50},
		Drafts: DraftsConfig{
			Backend: BackendMemory,
			Dir:     ".blueprint/drafts",
			Addr:    "localhost:6379",
			Prefix:  "blueprint:draft:",
			MaxAge:  30 * 24 * time.Hour,
		},
		Canvas:  CanvasConfig{Backend: BackendMemory, Path: ".blueprint/canvas.db"},
		Catalog: CatalogConfig{Backend: BackendMemory},
		AI:      AIConfig{Backend: BackendMemory},
	}
}

// Load reads a YAML, JSON or TOML configuration file on top of the defaults.
// A missing file at DefaultPath is not an error; an explicitly named one is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes raw configuration bytes. ext selects JSON for ".json", TOML for ".toml"
// and YAML otherwise.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()

	raw := map[string]any{}
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse config json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse config toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse config yaml: %w", err)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks backend names and the settings each backend requires.
func (c Config) Validate() error {
	check := func(section, backend string, allowed ...string) error {
		for _, a := range allowed {
			if backend == a {
				return nil
			}
		}
		return fmt.Errorf("invalid config: %s.backend %q (want one of %s)", section, backend, strings.Join(allowed, ", "))
	}

	if err := check("drafts", c.Drafts.Backend, BackendMemory, BackendFile, BackendRedis); err != nil {
		return err
	}
	if err := check("canvas", c.Canvas.Backend, BackendMemory, BackendSQLite, BackendRemote); err != nil {
		return err
	}
	if err := check("catalog", c.Catalog.Backend, BackendMemory, BackendLoam, BackendRemote); err != nil {
		return err
	}
	if err := check("ai", c.AI.Backend, BackendMemory, BackendRemote); err != nil {
		return err
	}

	switch {
	case c.Canvas.Backend == BackendRemote && c.Canvas.URL == "":
		return fmt.Errorf("invalid config: canvas.url is required for the remote backend")
	case c.Catalog.Backend == BackendRemote && c.Catalog.URL == "":
		return fmt.Errorf("invalid config: catalog.url is required for the remote backend")
	case c.Catalog.Backend == BackendLoam && c.Catalog.Dir == "":
		return fmt.Errorf("invalid config: catalog.dir is required for the loam backend")
	case c.AI.Backend == BackendRemote && c.AI.URL == "":
		return fmt.Errorf("invalid config: ai.url is required for the remote backend")
	case c.History.Limit < 0:
		return fmt.Errorf("invalid config: history.limit must not be negative")
	case c.Drafts.PruneSchedule != "" && c.Drafts.MaxAge <= 0:
		return fmt.Errorf("invalid config: drafts.max_age must be positive when prune_schedule is set")
	}

	if _, _, err := c.Drafts.Keys(); err != nil {
		return err
	}
	if c.Drafts.PruneSchedule != "" {
		if _, err := cron.ParseStandard(c.Drafts.PruneSchedule); err != nil {
			return fmt.Errorf("invalid config: drafts.prune_schedule: %w", err)
		}
	}
	for _, p := range c.Drafts.Redact {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid config: drafts.redact pattern %q: %w", p, err)
		}
	}

	switch c.Log.Format {
	case "text", "json", "pretty":
	default:
		return fmt.Errorf("invalid config: log.format %q (want text, json or pretty)", c.Log.Format)
	}
	return nil
}
