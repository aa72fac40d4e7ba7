package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Studio collectors.
type Metrics struct {
	registry *prometheus.Registry

	commits      *prometheus.CounterVec
	historyMoves *prometheus.CounterVec
	autosaves    *prometheus.CounterVec
	draftBytes   prometheus.Histogram
	notices      *prometheus.CounterVec
	sections     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on a private registry.
// Go runtime and process collectors are included.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_commits_total",
				Help: "Total number of snapshots committed to history",
			},
			[]string{"operation"},
		),
		historyMoves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_history_moves_total",
				Help: "Total number of effective undo and redo steps",
			},
			[]string{"direction"},
		),
		autosaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_autosaves_total",
				Help: "Total number of local draft writes",
			},
			[]string{"result"},
		),
		draftBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blueprint_draft_bytes",
				Help:    "Size of serialized drafts",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			},
		),
		notices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_notices_total",
				Help: "Total number of notices raised",
			},
			[]string{"code", "level"},
		),
		sections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "blueprint_canvas_sections",
				Help: "Number of sections on the canvas under edit",
			},
		),
	}
	m.registry.MustRegister(
		m.commits, m.historyMoves, m.autosaves, m.draftBytes, m.notices, m.sections,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that record metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			m.commits.WithLabelValues(e.Operation).Inc()
			m.sections.Set(float64(e.Sections))
		},
		OnUndo: func(_ context.Context, e *domain.HistoryEvent) {
			m.historyMoves.WithLabelValues("undo").Inc()
			m.observeCanvas(e.Canvas)
		},
		OnRedo: func(_ context.Context, e *domain.HistoryEvent) {
			m.historyMoves.WithLabelValues("redo").Inc()
			m.observeCanvas(e.Canvas)
		},
		OnAutosave: func(_ context.Context, e *domain.AutosaveEvent) {
			if e.Err != nil {
				m.autosaves.WithLabelValues("error").Inc()
				return
			}
			m.autosaves.WithLabelValues("ok").Inc()
			m.draftBytes.Observe(float64(e.Bytes))
		},
		OnNotice: func(_ context.Context, n *domain.Notice) {
			m.notices.WithLabelValues(string(n.Code), string(n.Level)).Inc()
		},
	}
}

func (m *Metrics) observeCanvas(c *domain.Canvas) {
	if c != nil {
		m.sections.Set(float64(len(c.Sections)))
	}
}

// LogHooks returns lifecycle hooks that write an audit log line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			logger.InfoContext(ctx, "commit",
				"canvas_id", e.CanvasID,
				"operation", e.Operation,
				"position", e.Position,
				"sections", e.Sections,
			)
		},
		OnUndo: func(ctx context.Context, e *domain.HistoryEvent) {
			logger.InfoContext(ctx, "undo", "canvas_id", e.CanvasID, "position", e.Position)
		},
		OnRedo: func(ctx context.Context, e *domain.HistoryEvent) {
			logger.InfoContext(ctx, "redo", "canvas_id", e.CanvasID, "position", e.Position)
		},
		OnAutosave: func(ctx context.Context, e *domain.AutosaveEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "autosave_failed", "canvas_id", e.CanvasID, "key", e.Key, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "autosave", "canvas_id", e.CanvasID, "key", e.Key, "bytes", e.Bytes)
		},
		OnNotice: func(ctx context.Context, n *domain.Notice) {
			logger.InfoContext(ctx, "notice",
				"canvas_id", n.CanvasID,
				"code", n.Code,
				"level", n.Level,
			)
		},
	}
}
