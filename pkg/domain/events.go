package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommit   EventType = "commit"
	EventUndo     EventType = "undo"
	EventRedo     EventType = "redo"
	EventAutosave EventType = "autosave"
	EventNotice   EventType = "notice"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	CanvasID  string    `json:"canvas_id"`
}

// CommitEvent is emitted when a new snapshot enters history.
type CommitEvent struct {
	EventBase
	Operation string `json:"operation"`
	Position  int    `json:"position"`
	Sections  int    `json:"sections"`

	// Canvas is the committed snapshot. Hooks must treat it as read-only.
	Canvas *Canvas `json:"-"`
}

// HistoryEvent is emitted when undo or redo moves the history position.
type HistoryEvent struct {
	EventBase
	Position int `json:"position"`

	// Canvas is the snapshot now current. Hooks must treat it as read-only.
	Canvas *Canvas `json:"-"`
}

// AutosaveEvent is emitted after every local draft write attempt.
type AutosaveEvent struct {
	EventBase
	Key   string `json:"key"`
	Bytes int    `json:"bytes"`
	Err   error  `json:"-"`
}

// LifecycleHooks defines callbacks for studio observability.
// Hooks run synchronously on the mutating goroutine and must not call back into the Studio.
type LifecycleHooks struct {
	OnCommit   func(context.Context, *CommitEvent)
	OnUndo     func(context.Context, *HistoryEvent)
	OnRedo     func(context.Context, *HistoryEvent)
	OnAutosave func(context.Context, *AutosaveEvent)
	OnNotice   func(context.Context, *Notice)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommit:   chain(h.OnCommit, other.OnCommit),
		OnUndo:     chain(h.OnUndo, other.OnUndo),
		OnRedo:     chain(h.OnRedo, other.OnRedo),
		OnAutosave: chain(h.OnAutosave, other.OnAutosave),
		OnNotice:   chain(h.OnNotice, other.OnNotice),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
