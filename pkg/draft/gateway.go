// Package draft persists local canvas drafts and resolves them against the
// canonical copy when a page is opened.
package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/blueprint/internal/logging"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/ports"
)

// Gateway writes drafts to a DraftStore under domain.DraftKey and decides
// whether a stored draft should replace the canonical canvas on load.
type Gateway struct {
	store  ports.DraftStore
	logger *slog.Logger
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger configures a logger for the Gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a Gateway backed by store.
func New(store ports.DraftStore, opts ...Option) *Gateway {
	g := &Gateway{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolution is the outcome of resolving a draft against the canonical canvas.
type Resolution struct {
	// Canvas is the snapshot that should seed history.
	Canvas *domain.Canvas
	// Restored is true when a local draft won over the canonical canvas.
	Restored bool
}

// Autosave serializes canvas and stores it under its draft key.
// It returns the number of bytes written. Write failures wrap domain.ErrPersistenceQuota.
func (g *Gateway) Autosave(ctx context.Context, canvas *domain.Canvas) (int, error) {
	data, err := domain.MarshalSnapshot(canvas)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrPersistenceQuota, err)
	}
	if err := g.store.Set(ctx, domain.DraftKey(canvas.ID), data); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrPersistenceQuota, err)
	}
	return len(data), nil
}

// Load returns the stored draft for a canvas.
// Returns domain.ErrDraftNotFound if there is none.
func (g *Gateway) Load(ctx context.Context, canvasID string) (*domain.Canvas, error) {
	data, err := g.store.Get(ctx, domain.DraftKey(canvasID))
	if err != nil {
		return nil, err
	}
	return domain.ParseSnapshot(data)
}

// Resolve picks between canonical and the stored draft for the same canvas ID.
// The draft wins only if its UpdatedAt is strictly after the canonical one.
// A stale, unreadable or foreign draft is left in place and the canonical canvas wins.
func (g *Gateway) Resolve(ctx context.Context, canonical *domain.Canvas) Resolution {
	draft, err := g.Load(ctx, canonical.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrDraftNotFound) {
			g.logger.Warn("Ignoring unreadable draft",
				"canvas_id", canonical.ID,
				"err", err,
			)
		}
		return Resolution{Canvas: canonical}
	}

	if draft.ID != canonical.ID {
		g.logger.Warn("Ignoring draft for another canvas",
			"canvas_id", canonical.ID,
			"draft_id", draft.ID,
		)
		return Resolution{Canvas: canonical}
	}

	if !draft.UpdatedAt.After(canonical.UpdatedAt) {
		g.logger.Debug("Keeping canonical canvas over stale draft",
			"canvas_id", canonical.ID,
			"draft_updated_at", draft.UpdatedAt,
			"canonical_updated_at", canonical.UpdatedAt,
		)
		return Resolution{Canvas: canonical}
	}

	g.logger.Info("Restoring newer local draft",
		"canvas_id", canonical.ID,
		"sections", len(draft.Sections),
	)
	return Resolution{Canvas: draft, Restored: true}
}

// Clear deletes the stored draft for a canvas.
func (g *Gateway) Clear(ctx context.Context, canvasID string) error {
	if err := g.store.Delete(ctx, domain.DraftKey(canvasID)); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// Prune deletes drafts whose UpdatedAt is before cutoff and returns how many were removed.
// Unreadable drafts are kept; they may belong to a key that is no longer configured.
func (g *Gateway) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	keys, err := g.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list drafts: %w", err)
	}

	removed := 0
	for _, key := range keys {
		canvasID, ok := strings.CutPrefix(key, domain.DraftKey(""))
		if !ok {
			continue
		}
		draft, err := g.Load(ctx, canvasID)
		if err != nil {
			if !errors.Is(err, domain.ErrDraftNotFound) {
				g.logger.Warn("Skipping unreadable draft", "key", key, "err", err)
			}
			continue
		}
		if !draft.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := g.Clear(ctx, canvasID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
