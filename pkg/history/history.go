// Package history implements a linear undo/redo stack of immutable canvas snapshots.
//
// History is strictly linear: committing after an undo discards the redo branch.
// A Manager is not safe for concurrent use; the studio serializes access.
package history

import (
	"github.com/aretw0/blueprint/pkg/domain"
)

// Manager holds the snapshot list and the current position.
type Manager struct {
	snapshots []*domain.Canvas
	position  int
	limit     int
}

// Option configures the Manager.
type Option func(*Manager)

// WithLimit caps the number of retained snapshots. Oldest entries are dropped first.
// Values below 2 disable the cap.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n >= 2 {
			m.limit = n
		}
	}
}

// New creates a Manager seeded with a single snapshot at position 0.
func New(initial *domain.Canvas, opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset(initial)
	return m
}

// Reset discards all history and seeds it with a single snapshot.
func (m *Manager) Reset(initial *domain.Canvas) {
	m.snapshots = []*domain.Canvas{initial.Clone()}
	m.position = 0
}

// Commit pushes next as the new current snapshot.
// It reports false, leaving history untouched, when next equals the current snapshot.
// Otherwise the redo branch is discarded before appending.
func (m *Manager) Commit(next *domain.Canvas) bool {
	if next == nil || m.snapshots[m.position].Equal(next) {
		return false
	}

	m.snapshots = append(m.snapshots[:m.position+1], next.Clone())
	// Drop references beyond len so truncated snapshots can be collected.
	clear(m.snapshots[len(m.snapshots):cap(m.snapshots)])
	m.position = len(m.snapshots) - 1

	if m.limit > 0 && len(m.snapshots) > m.limit {
		drop := len(m.snapshots) - m.limit
		m.snapshots = append([]*domain.Canvas(nil), m.snapshots[drop:]...)
		m.position -= drop
	}
	return true
}

// Undo steps back one snapshot. It is a no-op at the oldest snapshot.
func (m *Manager) Undo() bool {
	if m.position == 0 {
		return false
	}
	m.position--
	return true
}

// Redo steps forward one snapshot. It is a no-op at the newest snapshot.
func (m *Manager) Redo() bool {
	if m.position >= len(m.snapshots)-1 {
		return false
	}
	m.position++
	return true
}

// Current returns a copy of the snapshot at the current position.
func (m *Manager) Current() *domain.Canvas {
	return m.snapshots[m.position].Clone()
}

// Peek returns the snapshot at the current position without copying.
// Callers must not mutate it.
func (m *Manager) Peek() *domain.Canvas {
	return m.snapshots[m.position]
}

// Position returns the 0-based index of the current snapshot.
func (m *Manager) Position() int { return m.position }

// Len returns the number of retained snapshots.
func (m *Manager) Len() int { return len(m.snapshots) }

// CanUndo reports whether Undo would move.
func (m *Manager) CanUndo() bool { return m.position > 0 }

// CanRedo reports whether Redo would move.
func (m *Manager) CanRedo() bool { return m.position < len(m.snapshots)-1 }
