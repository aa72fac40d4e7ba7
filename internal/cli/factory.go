// Package cli wires a Studio and its adapters from a Config for the blueprint commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/blueprint"
	"github.com/aretw0/blueprint/internal/adapters/file"
	"github.com/aretw0/blueprint/internal/config"
	"github.com/aretw0/blueprint/internal/logging"
	httpAdapter "github.com/aretw0/blueprint/pkg/adapters/http"
	loamAdapter "github.com/aretw0/blueprint/pkg/adapters/loam"
	"github.com/aretw0/blueprint/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/blueprint/pkg/adapters/redis"
	"github.com/aretw0/blueprint/pkg/adapters/sqlite"
	"github.com/aretw0/blueprint/pkg/draft"
	"github.com/aretw0/blueprint/pkg/observability"
	"github.com/aretw0/blueprint/pkg/persistence/middleware"
	"github.com/aretw0/blueprint/pkg/ports"
	"github.com/robfig/cron/v3"
)

// Runtime is a Studio plus the adapters that back it.
type Runtime struct {
	Studio  *blueprint.Studio
	Metrics *observability.Metrics
	Logger  *slog.Logger

	// Catalog is set only for the loam catalog backend.
	Catalog *loamAdapter.Catalog

	cfg     config.Config
	drafts  ports.DraftStore
	closers []io.Closer
}

// NewLogger builds the application logger described by cfg.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	level := logging.ParseLevel(cfg.Level)
	switch cfg.Format {
	case "json":
		return logging.NewJSON(level)
	case "pretty":
		return logging.NewPretty(level)
	}
	return logging.New(level)
}

// Build creates a Runtime from cfg. Callers must Close it.
func Build(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	rt := &Runtime{
		Metrics: observability.NewMetrics(),
		Logger:  logger,
		cfg:     cfg,
	}

	drafts, err := rt.draftStore()
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.drafts = drafts
	canvases, err := rt.canvasService()
	if err != nil {
		rt.Close()
		return nil, err
	}
	reference, err := rt.referenceData()
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Studio = blueprint.New(
		blueprint.WithLogger(logger),
		blueprint.WithDraftStore(drafts),
		blueprint.WithCanvasService(canvases),
		blueprint.WithReferenceData(reference),
		blueprint.WithLayoutSuggester(rt.suggester()),
		blueprint.WithHistoryLimit(cfg.History.Limit),
		blueprint.WithLifecycleHooks(rt.Metrics.Hooks()),
		blueprint.WithLifecycleHooks(observability.LogHooks(logger)),
	)

	logger.Debug("studio ready",
		"drafts", cfg.Drafts.Backend,
		"canvas", cfg.Canvas.Backend,
		"catalog", cfg.Catalog.Backend,
		"ai", cfg.AI.Backend,
	)
	return rt, nil
}

func (rt *Runtime) draftStore() (ports.DraftStore, error) {
	store, err := rt.baseDraftStore()
	if err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if len(rt.cfg.Drafts.Redact) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(rt.cfg.Drafts.Redact))
	}
	active, fallback, err := rt.cfg.Drafts.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	return middleware.Chain(store, mws...), nil
}

func (rt *Runtime) baseDraftStore() (ports.DraftStore, error) {
	c := rt.cfg.Drafts
	switch c.Backend {
	case config.BackendFile:
		return file.New(c.Dir), nil
	case config.BackendRedis:
		opts := []redisAdapter.Option{redisAdapter.WithTTL(c.TTL)}
		if c.Prefix != "" {
			opts = append(opts, redisAdapter.WithPrefix(c.Prefix))
		}
		if c.MaxBytes > 0 {
			opts = append(opts, redisAdapter.WithMaxBytes(c.MaxBytes))
		}
		store := redisAdapter.New(c.Addr, c.Password, c.DB, opts...)
		rt.closers = append(rt.closers, store)
		return store, nil
	default:
		if c.MaxBytes > 0 {
			return memory.NewStore(memory.WithQuota(c.MaxBytes)), nil
		}
		return memory.NewStore(), nil
	}
}

func (rt *Runtime) canvasService() (ports.CanvasService, error) {
	c := rt.cfg.Canvas
	switch c.Backend {
	case config.BackendSQLite:
		svc, err := sqlite.Open(c.Path)
		if err != nil {
			return nil, fmt.Errorf("error opening canvas database: %w", err)
		}
		rt.closers = append(rt.closers, svc)
		return svc, nil
	case config.BackendRemote:
		return httpAdapter.NewClient(c.URL), nil
	default:
		return memory.NewCanvasService(), nil
	}
}

func (rt *Runtime) referenceData() (ports.ReferenceData, error) {
	c := rt.cfg.Catalog
	switch c.Backend {
	case config.BackendLoam:
		cat, err := loamAdapter.Open(c.Dir)
		if err != nil {
			return nil, fmt.Errorf("error opening template catalog: %w", err)
		}
		rt.Catalog = cat
		return cat, nil
	case config.BackendRemote:
		return httpAdapter.NewClient(c.URL), nil
	default:
		return memory.DefaultCatalog(), nil
	}
}

func (rt *Runtime) suggester() ports.LayoutSuggester {
	if rt.cfg.AI.Backend == config.BackendRemote {
		return httpAdapter.NewClient(rt.cfg.AI.URL)
	}
	return memory.NewSuggester()
}

// WatchCatalog drops cached reference data whenever the loam template directory changes.
// It returns immediately when the catalog is not loam-backed or watching is disabled,
// and otherwise blocks until ctx is cancelled.
func (rt *Runtime) WatchCatalog(ctx context.Context) error {
	if rt.Catalog == nil || !rt.cfg.Catalog.Watch {
		return nil
	}
	changes, err := rt.Catalog.Watch(ctx)
	if err != nil {
		return err
	}
	rt.Logger.Info("watching template catalog", "dir", rt.cfg.Catalog.Dir)
	for name := range changes {
		rt.Logger.Info("template catalog changed", "entry", name)
		rt.Studio.RefreshReference()
	}
	return nil
}

// PruneDrafts removes drafts not touched within drafts.max_age.
func (rt *Runtime) PruneDrafts(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-rt.cfg.Drafts.MaxAge)
	removed, err := draft.New(rt.drafts, draft.WithLogger(rt.Logger)).Prune(ctx, cutoff)
	if err != nil {
		return removed, err
	}
	rt.Logger.Info("pruned stale drafts", "removed", removed, "cutoff", cutoff)
	return removed, nil
}

// SchedulePruning runs PruneDrafts on drafts.prune_schedule until ctx is cancelled.
// It returns immediately when no schedule is configured.
func (rt *Runtime) SchedulePruning(ctx context.Context) error {
	spec := rt.cfg.Drafts.PruneSchedule
	if spec == "" {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := rt.PruneDrafts(ctx); err != nil {
			rt.Logger.Error("draft pruning failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}
	c.Start()
	rt.Logger.Info("draft pruning scheduled", "schedule", spec, "max_age", rt.cfg.Drafts.MaxAge)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Close releases every adapter that holds a connection or file handle.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
