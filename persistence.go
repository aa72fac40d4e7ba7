package blueprint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/history"
	"github.com/aretw0/blueprint/pkg/layers"
)

// Open loads the canvas for a page and makes it the active document.
//
// The canonical canvas is fetched from the CanvasService; a local draft for the
// same canvas wins only if it is strictly newer. If the fetch fails, an empty
// draft canvas is synthesized so editing can continue offline; the failure is
// reported as a notice, not as an error. Opening the page that is already active
// returns the current canvas unchanged.
func (s *Studio) Open(ctx context.Context, storeID, pageTypeID string) (*domain.Canvas, error) {
	s.mu.Lock()
	if s.history != nil && s.storeID == storeID && s.pageTypeID == pageTypeID {
		cur := s.history.Current()
		s.mu.Unlock()
		return cur, nil
	}
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	canonical, fetchErr := s.fetchCanonical(ctx, storeID, pageTypeID)
	res := s.gateway.Resolve(ctx, canonical)
	_, refErr := s.reference.SectionTemplates(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("Discarding stale load", "store_id", storeID, "page_type_id", pageTypeID)
		return nil, domain.ErrStaleResponse
	}

	s.storeID = storeID
	s.pageTypeID = pageTypeID
	s.history = history.New(res.Canvas, s.historyOpt...)
	s.layers = layers.New(res.Canvas)
	s.baseline = canonical
	s.selected = ""
	s.notices = nil

	s.logger.Info("Opened canvas",
		"canvas_id", res.Canvas.ID,
		"sections", len(res.Canvas.Sections),
		"restored", res.Restored,
	)

	if fetchErr != nil {
		s.notifyLocked(ctx, domain.NoticeWarning, domain.NoticeFetchFailed,
			"The page could not be loaded. You are editing an empty draft.")
	}
	if refErr != nil {
		s.logger.Warn("Reference data unavailable", "err", refErr)
		s.notifyLocked(ctx, domain.NoticeWarning, domain.NoticeReferenceFailed,
			"Section templates could not be loaded.")
	}
	if res.Restored {
		s.notifyLocked(ctx, domain.NoticeInfo, domain.NoticeDraftRestored,
			"Unsaved changes from a previous session were restored.")
	}

	return s.history.Current(), nil
}

// fetchCanonical returns the canonical canvas, or an empty default canvas when
// none exists. The returned error is non-nil only for real failures (unreachable
// service or a malformed canvas), which the caller surfaces as a notice.
func (s *Studio) fetchCanonical(ctx context.Context, storeID, pageTypeID string) (*domain.Canvas, error) {
	canvas, err := s.canvases.Fetch(ctx, storeID, pageTypeID)
	if err == nil {
		if canvas.Sections == nil {
			canvas.Sections = []domain.Section{}
		}
		if err = canvas.Validate(); err == nil {
			canvas.Reindex()
			return canvas, nil
		}
	}

	if !errors.Is(err, domain.ErrCanvasNotFound) {
		s.logger.Warn("Canonical fetch failed, using default canvas",
			"store_id", storeID,
			"page_type_id", pageTypeID,
			"err", err,
		)
		err = fmt.Errorf("%w: %w", domain.ErrTransientFetch, err)
	} else {
		err = nil
	}

	// A synthesized canvas has never been saved; its zero UpdatedAt lets any
	// local draft for the page win conflict resolution.
	def := domain.NewCanvas(domain.DefaultCanvasID(storeID, pageTypeID), storeID, pageTypeID, s.clock().UTC().Round(0))
	def.UpdatedAt = time.Time{}
	return def, err
}

// Save persists the current canvas to the CanvasService.
// On success the local draft is deleted and the unsaved flag clears.
func (s *Studio) Save(ctx context.Context) (*domain.Canvas, error) {
	snap, gen, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	if err := s.canvases.Save(ctx, snap); err != nil {
		s.failRemote(ctx, gen, snap.ID, "save", err)
		return nil, fmt.Errorf("%w: save canvas: %w", domain.ErrTransientFetch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, domain.ErrStaleResponse
	}

	s.baseline = snap
	s.settleDraftLocked(ctx)
	s.notifyLocked(ctx, domain.NoticeInfo, domain.NoticeSaved, "Changes saved.")
	s.logger.Info("Saved canvas", "canvas_id", snap.ID)
	return s.history.Current(), nil
}

// Publish persists the current canvas as published.
// The status change is committed as one history entry once the service accepts it.
func (s *Studio) Publish(ctx context.Context) (*domain.Canvas, error) {
	snap, gen, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	snap.Status = domain.StatusPublished

	if err := s.canvases.Publish(ctx, snap); err != nil {
		s.failRemote(ctx, gen, snap.ID, "publish", err)
		return nil, fmt.Errorf("%w: publish canvas: %w", domain.ErrTransientFetch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, domain.ErrStaleResponse
	}

	next := s.history.Peek().Clone()
	next.Status = domain.StatusPublished
	s.commitLocked(ctx, OpPublish, next)

	s.baseline = snap
	s.settleDraftLocked(ctx)
	s.notifyLocked(ctx, domain.NoticeInfo, domain.NoticePublished, "Page published.")
	s.logger.Info("Published canvas", "canvas_id", snap.ID)
	return s.history.Current(), nil
}

// snapshot captures the current canvas and load generation for a remote call.
func (s *Studio) snapshot() (*domain.Canvas, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return nil, 0, domain.ErrNoCanvas
	}
	return s.history.Current(), s.generation, nil
}

// failRemote records a failed save or publish, unless the session moved on.
func (s *Studio) failRemote(ctx context.Context, gen uint64, canvasID, op string, err error) {
	s.logger.Error("Remote "+op+" failed", "canvas_id", canvasID, "err", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.notifyLocked(ctx, domain.NoticeError, domain.NoticeSaveFailed,
		fmt.Sprintf("The %s request failed. Your changes are kept locally.", op))
}

// settleDraftLocked deletes the local draft after a successful save. Edits made
// while the save was in flight are still unsaved, so they are written back.
func (s *Studio) settleDraftLocked(ctx context.Context) {
	cur := s.history.Peek()
	if err := s.gateway.Clear(ctx, cur.ID); err != nil {
		s.logger.Warn("Failed to clear draft", "canvas_id", cur.ID, "err", err)
	}
	if s.unsavedLocked() {
		s.autosaveLocked(ctx)
	}
}

// ExportSnapshot serializes the current canvas verbatim.
func (s *Studio) ExportSnapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return nil, domain.ErrNoCanvas
	}
	return domain.MarshalSnapshot(s.history.Peek())
}

// ImportSnapshot replaces the current canvas with a serialized one.
//
// Importing the active canvas commits the snapshot as one history entry.
// Importing a different canvas starts a new session for it with fresh history.
// A malformed snapshot is rejected with domain.ErrInvalidSnapshot and a notice;
// the current canvas is left untouched.
func (s *Studio) ImportSnapshot(ctx context.Context, data []byte) (*domain.Canvas, error) {
	imported, err := domain.ParseSnapshot(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.notifyLocked(ctx, domain.NoticeWarning, domain.NoticeImportRejected,
			"The snapshot could not be imported: "+err.Error())
		return nil, err
	}

	if s.history != nil && s.history.Peek().ID == imported.ID {
		s.layers.Reset(imported)
		return s.commitLocked(ctx, OpImport, imported), nil
	}

	s.generation++
	imported.UpdatedAt = s.stamp(time.Time{})
	s.storeID = imported.StoreID
	s.pageTypeID = imported.PageTypeID
	s.history = history.New(imported, s.historyOpt...)
	s.layers = layers.New(imported)
	s.baseline = nil
	s.selected = ""
	s.notices = nil

	s.logger.Info("Imported canvas", "canvas_id", imported.ID, "sections", len(imported.Sections))

	if s.hooks.OnCommit != nil {
		s.hooks.OnCommit(ctx, &domain.CommitEvent{
			EventBase: domain.EventBase{Timestamp: imported.UpdatedAt, Type: domain.EventCommit, CanvasID: imported.ID},
			Operation: OpImport,
			Sections:  len(imported.Sections),
			Canvas:    s.history.Peek(),
		})
	}
	s.autosaveLocked(ctx)
	return s.history.Current(), nil
}
