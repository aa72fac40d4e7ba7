package blueprint

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/blueprint/pkg/domain"
)

// Operation names reported in CommitEvent.Operation.
const (
	OpAddSection    = "add_section"
	OpDeleteSection = "delete_section"
	OpUpdateSection = "update_section"
	OpReorder       = "reorder"
	OpMoveUp        = "move_up"
	OpMoveDown      = "move_down"
	OpImport        = "import"
	OpAIProposal    = "ai_proposal"
	OpPublish       = "publish"
)

// mutate runs fn against the current snapshot and commits the result.
// fn must not modify its argument.
func (s *Studio) mutate(ctx context.Context, op string, fn func(cur *domain.Canvas) (*domain.Canvas, error)) (*domain.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history == nil {
		return nil, domain.ErrNoCanvas
	}
	next, err := fn(s.history.Peek())
	if err != nil {
		return nil, err
	}
	return s.commitLocked(ctx, op, next), nil
}

// commitLocked reconciles next with the layer order, stamps it and pushes it to
// history. An unchanged canvas is not committed. It returns a copy of the current snapshot.
func (s *Studio) commitLocked(ctx context.Context, op string, next *domain.Canvas) *domain.Canvas {
	cur := s.history.Peek()
	next = s.layers.Apply(next)

	if cur.Equal(next) {
		return s.history.Current()
	}

	next.UpdatedAt = s.stamp(cur.UpdatedAt)
	s.history.Commit(next)
	s.layers.Reset(next)

	s.logger.Debug("Committed snapshot",
		"canvas_id", next.ID,
		"operation", op,
		"position", s.history.Position(),
	)

	if s.hooks.OnCommit != nil {
		s.hooks.OnCommit(ctx, &domain.CommitEvent{
			EventBase: domain.EventBase{Timestamp: next.UpdatedAt, Type: domain.EventCommit, CanvasID: next.ID},
			Operation: op,
			Position:  s.history.Position(),
			Sections:  len(next.Sections),
			Canvas:    s.history.Peek(),
		})
	}

	s.autosaveLocked(ctx)
	return s.history.Current()
}

// stamp returns a modification time strictly after prev, so a draft written
// after an edit always sorts after the canonical copy it started from.
func (s *Studio) stamp(prev time.Time) time.Time {
	now := s.clock().UTC().Round(0)
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

// autosaveLocked writes the current snapshot as a local draft.
// Failures are logged and surfaced as a notice, never returned.
//
// A snapshot reached by undo or redo can be older than the canonical copy while
// still differing from it. Its draft is written from a copy stamped after the
// canonical copy so it wins the next load; the history snapshot keeps its time.
func (s *Studio) autosaveLocked(ctx context.Context) {
	cur := s.history.Peek()
	draft := cur
	if s.baseline != nil && !cur.UpdatedAt.After(s.baseline.UpdatedAt) && s.unsavedLocked() {
		draft = cur.Clone()
		draft.UpdatedAt = s.stamp(s.baseline.UpdatedAt)
	}
	n, err := s.gateway.Autosave(ctx, draft)

	if s.hooks.OnAutosave != nil {
		s.hooks.OnAutosave(ctx, &domain.AutosaveEvent{
			EventBase: domain.EventBase{Timestamp: s.clock().UTC(), Type: domain.EventAutosave, CanvasID: cur.ID},
			Key:       domain.DraftKey(cur.ID),
			Bytes:     n,
			Err:       err,
		})
	}

	if err != nil {
		s.logger.Warn("Autosave failed",
			"canvas_id", cur.ID,
			"err", err,
		)
		if !s.hasNoticeLocked(domain.NoticeAutosaveFailed) {
			s.notifyLocked(ctx, domain.NoticeWarning, domain.NoticeAutosaveFailed,
				"Local draft could not be saved; unsaved changes will be lost if you leave the page.")
		}
	}
}

// AddSection appends a new section.
// Header and Footer sections default to a fixed height; other types grow with content.
// When TemplateID names a known template, its layout settings are copied.
func (s *Studio) AddSection(ctx context.Context, req domain.AddSectionRequest) (*domain.Canvas, error) {
	if req.Type == "" {
		return nil, fmt.Errorf("section type is required")
	}
	var tpl *domain.SectionTemplate
	if req.TemplateID != nil {
		tpl = s.lookupTemplate(ctx, *req.TemplateID)
	}
	return s.mutate(ctx, OpAddSection, func(cur *domain.Canvas) (*domain.Canvas, error) {
		section := domain.Section{
			ID:   s.freshSectionID(cur),
			Type: req.Type,
			Dimensions: domain.Dimensions{
				Width:  domain.DefaultWidth,
				Height: domain.DefaultHeightFor(req.Type),
			},
			Order:      len(cur.Sections),
			LayoutType: domain.LayoutRow,
			Style:      map[string]string{},
			Advanced:   map[string]domain.Value{},
			Alignment:  domain.AlignLeft,
		}
		if req.Width != nil {
			section.Width = domain.Ptr(*req.Width)
		}
		if tpl != nil {
			section.LayoutType = tpl.LayoutType
			section.LayoutConfig = domain.LayoutConfig{
				Columns: clonePtr(tpl.LayoutConfig.Columns),
				Rows:    clonePtr(tpl.LayoutConfig.Rows),
			}
		}

		next := cur.Clone()
		next.Sections = append(next.Sections, section)
		return next, nil
	})
}

// DeleteSection removes a section and clears the selection if it pointed at it.
func (s *Studio) DeleteSection(ctx context.Context, id string) (*domain.Canvas, error) {
	next, err := s.mutate(ctx, OpDeleteSection, func(cur *domain.Canvas) (*domain.Canvas, error) {
		i := cur.IndexOf(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrSectionNotFound, id)
		}
		next := cur.Clone()
		next.Sections = append(next.Sections[:i], next.Sections[i+1:]...)
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()
	return next, nil
}

// UpdateSection shallow-merges patch into a section. ID and order are never changed.
// A patch that leaves the section unchanged produces no history entry.
func (s *Studio) UpdateSection(ctx context.Context, id string, patch domain.SectionPatch) (*domain.Canvas, error) {
	return s.mutate(ctx, OpUpdateSection, func(cur *domain.Canvas) (*domain.Canvas, error) {
		i := cur.IndexOf(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrSectionNotFound, id)
		}
		next := cur.Clone()
		next.Sections[i] = patch.Apply(next.Sections[i])
		return next, nil
	})
}

// Reorder moves the section at index from to index to (drag and drop).
func (s *Studio) Reorder(ctx context.Context, from, to int) (*domain.Canvas, error) {
	return s.mutate(ctx, OpReorder, func(cur *domain.Canvas) (*domain.Canvas, error) {
		return s.layers.Reorder(cur, from, to)
	})
}

// MoveUp swaps a section with its neighbor toward the top. No-op at the top.
func (s *Studio) MoveUp(ctx context.Context, id string) (*domain.Canvas, error) {
	return s.mutate(ctx, OpMoveUp, func(cur *domain.Canvas) (*domain.Canvas, error) {
		next, _, err := s.layers.MoveUp(cur, id)
		return next, err
	})
}

// MoveDown swaps a section with its neighbor toward the bottom. No-op at the bottom.
func (s *Studio) MoveDown(ctx context.Context, id string) (*domain.Canvas, error) {
	return s.mutate(ctx, OpMoveDown, func(cur *domain.Canvas) (*domain.Canvas, error) {
		next, _, err := s.layers.MoveDown(cur, id)
		return next, err
	})
}

// Undo restores the previous snapshot. It is a no-op at the oldest snapshot.
func (s *Studio) Undo(ctx context.Context) (*domain.Canvas, error) {
	return s.step(ctx, domain.EventUndo)
}

// Redo re-applies the next snapshot. It is a no-op at the newest snapshot.
func (s *Studio) Redo(ctx context.Context) (*domain.Canvas, error) {
	return s.step(ctx, domain.EventRedo)
}

func (s *Studio) step(ctx context.Context, dir domain.EventType) (*domain.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history == nil {
		return nil, domain.ErrNoCanvas
	}

	var moved bool
	hook := s.hooks.OnRedo
	if dir == domain.EventUndo {
		moved = s.history.Undo()
		hook = s.hooks.OnUndo
	} else {
		moved = s.history.Redo()
	}
	if !moved {
		return s.history.Current(), nil
	}

	cur := s.history.Peek()
	s.layers.Reset(cur)
	if s.selected != "" && cur.IndexOf(s.selected) < 0 {
		s.selected = ""
	}

	if hook != nil {
		hook(ctx, &domain.HistoryEvent{
			EventBase: domain.EventBase{Timestamp: s.clock().UTC(), Type: dir, CanvasID: cur.ID},
			Position:  s.history.Position(),
			Canvas:    cur,
		})
	}

	s.autosaveLocked(ctx)
	return s.history.Current(), nil
}

// freshSectionID returns a generated ID not used by any section of c.
func (s *Studio) freshSectionID(c *domain.Canvas) string {
	id := s.newID()
	if id == "" {
		id = "section"
	}
	candidate := id
	for n := 1; c.IndexOf(candidate) >= 0; n++ {
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	return candidate
}

// lookupTemplate resolves a template through the reference cache. It must be
// called without s.mu held. An unknown id or a failed lookup yields nil, and a
// failed lookup also raises a reference notice.
func (s *Studio) lookupTemplate(ctx context.Context, id string) *domain.SectionTemplate {
	tpl, ok, err := s.reference.Template(ctx, id)
	if err != nil {
		referenceResult[domain.SectionTemplate](ctx, s, nil, err)
		return nil
	}
	if !ok {
		s.logger.Debug("Unknown section template", "template_id", id)
		return nil
	}
	return &tpl
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
