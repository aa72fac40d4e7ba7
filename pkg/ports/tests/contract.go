package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/ports"
)

// CanvasServiceContractTest is a reusable test suite that verifies if an adapter complies with ports.CanvasService.
// The service must start empty for the given page identity.
func CanvasServiceContractTest(t *testing.T, svc ports.CanvasService, storeID, pageTypeID string) {
	t.Helper()
	ctx := context.Background()

	// 1. Fetch (NotFound)
	t.Run("Fetch_NotFound", func(t *testing.T) {
		_, err := svc.Fetch(ctx, storeID, pageTypeID)
		if !errors.Is(err, domain.ErrCanvasNotFound) {
			t.Fatalf("expected ErrCanvasNotFound, got %v", err)
		}
	})

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	canvas := domain.NewCanvas(domain.DefaultCanvasID(storeID, pageTypeID), storeID, pageTypeID, now)
	canvas.Title = "Contract"
	canvas.Sections = []domain.Section{
		{ID: "a", Type: "Header", Dimensions: domain.Dimensions{Width: "100%", Height: "64px"}, LayoutType: domain.LayoutRow, Alignment: domain.AlignLeft},
		{ID: "b", Type: "Hero", Dimensions: domain.Dimensions{Width: "100%", Height: "auto"}, Order: 1, LayoutType: domain.LayoutGrid, Alignment: domain.AlignCenter},
	}

	// 2. Save then Fetch
	t.Run("Save_Fetch", func(t *testing.T) {
		if err := svc.Save(ctx, canvas); err != nil {
			t.Fatalf("unexpected error saving: %v", err)
		}
		got, err := svc.Fetch(ctx, storeID, pageTypeID)
		if err != nil {
			t.Fatalf("unexpected error fetching: %v", err)
		}
		if !got.Equal(canvas) {
			t.Errorf("fetched canvas differs from saved one:\n got %+v\nwant %+v", got, canvas)
		}
	})

	// 3. Save replaces sections
	t.Run("Save_ReplacesSections", func(t *testing.T) {
		next := canvas.Clone()
		next.Sections = next.Sections[1:]
		next.Reindex()
		if err := svc.Save(ctx, next); err != nil {
			t.Fatalf("unexpected error saving: %v", err)
		}
		got, err := svc.Fetch(ctx, storeID, pageTypeID)
		if err != nil {
			t.Fatalf("unexpected error fetching: %v", err)
		}
		if len(got.Sections) != 1 || got.Sections[0].ID != "b" || got.Sections[0].Order != 0 {
			t.Errorf("expected only section b at index 0, got %+v", got.Sections)
		}
	})

	// 4. Publish
	t.Run("Publish", func(t *testing.T) {
		pub := canvas.Clone()
		pub.Status = domain.StatusPublished
		if err := svc.Publish(ctx, pub); err != nil {
			t.Fatalf("unexpected error publishing: %v", err)
		}
		got, err := svc.Fetch(ctx, storeID, pageTypeID)
		if err != nil {
			t.Fatalf("unexpected error fetching: %v", err)
		}
		if got.Status != domain.StatusPublished {
			t.Errorf("expected status published, got %s", got.Status)
		}
	})
}
