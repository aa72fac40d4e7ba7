package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/blueprint/pkg/domain"
)

// allCanvases subscribes to every canvas the session opens.
const allCanvases = "*"

// Event is a single server-sent event.
type Event struct {
	Name string
	Data string
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{} // CanvasID -> Set of Channels
	logger      *slog.Logger

	lastMu sync.Mutex
	last   *domain.Canvas
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      slog.Default(),
	}
}

func (sm *StreamManager) Subscribe(canvasID string) (chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 10)
	if _, ok := sm.subscribers[canvasID]; !ok {
		sm.subscribers[canvasID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[canvasID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[canvasID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, canvasID)
			}
		}
	}
}

// Broadcast sends ev to the subscribers of canvasID and to global subscribers.
func (sm *StreamManager) Broadcast(canvasID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "canvas_id", canvasID, "event", ev.Name, "payload_size", len(ev.Data))

	for _, key := range []string{canvasID, allCanvases} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- ev:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "canvas_id", canvasID)
			}
		}
	}
}

// Hooks returns lifecycle hooks that turn snapshot changes into diff events
// and forward notices.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			sm.publishDiff(e.Canvas)
		},
		OnUndo: func(_ context.Context, e *domain.HistoryEvent) {
			sm.publishDiff(e.Canvas)
		},
		OnRedo: func(_ context.Context, e *domain.HistoryEvent) {
			sm.publishDiff(e.Canvas)
		},
		OnNotice: func(_ context.Context, n *domain.Notice) {
			if data, err := json.Marshal(n); err == nil {
				sm.Broadcast(n.CanvasID, Event{Name: "notice", Data: string(data)})
			}
		},
	}
}

func (sm *StreamManager) publishDiff(canvas *domain.Canvas) {
	if canvas == nil {
		return
	}
	sm.lastMu.Lock()
	diff := domain.Diff(sm.last, canvas)
	sm.last = canvas.Clone()
	sm.lastMu.Unlock()

	if diff == nil {
		sm.logger.Debug("StreamManager: No diff calculated", "canvas_id", canvas.ID)
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("StreamManager: Diff encode failed", "err", err)
		return
	}
	sm.Broadcast(canvas.ID, Event{Name: "diff", Data: string(data)})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	canvasID := r.URL.Query().Get("canvas_id")
	if canvasID == "" {
		canvasID = allCanvases
	}
	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to canvas updates", "canvas_id", canvasID)
	ch, cancel := s.Streams.Subscribe(canvasID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "canvas_id", canvasID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Name == "diff" && !matchesWatch(ev.Data, watchList) {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}

// matchesWatch reports whether a diff touches any watched field.
// An empty watch list matches everything.
func matchesWatch(data string, watchList []string) bool {
	if len(watchList) == 0 {
		return true
	}
	var diff domain.CanvasDiff
	if err := json.Unmarshal([]byte(data), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "sections":
			if len(diff.Added) > 0 || len(diff.Removed) > 0 || len(diff.Changed) > 0 {
				return true
			}
		case "order":
			if diff.Order != nil {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		case "title":
			if diff.Title != nil {
				return true
			}
		}
	}
	return false
}
