package blueprint

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/blueprint/pkg/domain"
)

// ErrInteractionClosed is returned when an ended or cancelled interaction is used.
var ErrInteractionClosed = errors.New("interaction already closed")

// Interaction buffers continuous updates to one section (a resize drag, a slider)
// and commits them as a single history entry when it ends.
type Interaction struct {
	studio    *Studio
	sectionID string
	canvasID  string

	mu     sync.Mutex
	patch  domain.SectionPatch
	closed bool
}

// BeginInteraction starts buffering updates for a section.
func (s *Studio) BeginInteraction(sectionID string) (*Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history == nil {
		return nil, domain.ErrNoCanvas
	}
	cur := s.history.Peek()
	if cur.IndexOf(sectionID) < 0 {
		return nil, domain.ErrSectionNotFound
	}
	return &Interaction{studio: s, sectionID: sectionID, canvasID: cur.ID}, nil
}

// Update folds patch into the buffer. Nothing is committed.
func (i *Interaction) Update(patch domain.SectionPatch) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return ErrInteractionClosed
	}
	i.patch = i.patch.Merge(patch)
	return nil
}

// Preview returns the section as it would look if the interaction ended now.
func (i *Interaction) Preview() (domain.Section, error) {
	i.mu.Lock()
	patch := i.patch
	i.mu.Unlock()

	cur, err := i.studio.Canvas()
	if err != nil {
		return domain.Section{}, err
	}
	sec, ok := cur.Section(i.sectionID)
	if !ok {
		return domain.Section{}, domain.ErrSectionNotFound
	}
	return patch.Apply(sec), nil
}

// End commits the buffered updates as one history entry.
// An empty buffer commits nothing. If the active canvas changed since the
// interaction began, the buffer is discarded with domain.ErrStaleResponse.
func (i *Interaction) End(ctx context.Context) (*domain.Canvas, error) {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return nil, ErrInteractionClosed
	}
	i.closed = true
	patch := i.patch
	i.mu.Unlock()

	return i.studio.mutate(ctx, OpUpdateSection, func(cur *domain.Canvas) (*domain.Canvas, error) {
		if cur.ID != i.canvasID {
			return nil, domain.ErrStaleResponse
		}
		idx := cur.IndexOf(i.sectionID)
		if idx < 0 {
			return nil, domain.ErrSectionNotFound
		}
		if patch.IsEmpty() {
			return cur, nil
		}
		next := cur.Clone()
		next.Sections[idx] = patch.Apply(next.Sections[idx])
		return next, nil
	})
}

// Cancel discards the buffered updates.
func (i *Interaction) Cancel() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	i.patch = domain.SectionPatch{}
}
