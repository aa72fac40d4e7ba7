package memory

import (
	"context"
	"sync"

	"github.com/aretw0/blueprint/pkg/domain"
)

// CanvasService implements ports.CanvasService in memory.
// Canvases are keyed by page identity and copied on every read and write.
type CanvasService struct {
	canvases map[string]*domain.Canvas
	mu       sync.RWMutex
}

// NewCanvasService creates a service pre-populated with seed canvases.
func NewCanvasService(seed ...*domain.Canvas) *CanvasService {
	svc := &CanvasService{
		canvases: make(map[string]*domain.Canvas),
	}
	for _, c := range seed {
		svc.canvases[pageKey(c.StoreID, c.PageTypeID)] = c.Clone()
	}
	return svc
}

func pageKey(storeID, pageTypeID string) string {
	return storeID + "/" + pageTypeID
}

// Fetch returns a copy of the stored canvas.
func (s *CanvasService) Fetch(ctx context.Context, storeID, pageTypeID string) (*domain.Canvas, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.canvases[pageKey(storeID, pageTypeID)]
	if !ok {
		return nil, domain.ErrCanvasNotFound
	}
	return c.Clone(), nil
}

// Save stores a copy of canvas.
func (s *CanvasService) Save(ctx context.Context, canvas *domain.Canvas) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvases[pageKey(canvas.StoreID, canvas.PageTypeID)] = canvas.Clone()
	return nil
}

// Publish stores a copy of canvas marked as published.
func (s *CanvasService) Publish(ctx context.Context, canvas *domain.Canvas) error {
	c := canvas.Clone()
	c.Status = domain.StatusPublished

	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvases[pageKey(c.StoreID, c.PageTypeID)] = c
	return nil
}
