package ports

import (
	"context"

	"github.com/aretw0/blueprint/pkg/domain"
)

// Editor is the driving port: the mutation API of an editing session.
// It is implemented by blueprint.Studio and consumed by the HTTP and MCP adapters.
type Editor interface {
	Open(ctx context.Context, storeID, pageTypeID string) (*domain.Canvas, error)
	Canvas() (*domain.Canvas, error)
	State() domain.StudioState

	AddSection(ctx context.Context, req domain.AddSectionRequest) (*domain.Canvas, error)
	DeleteSection(ctx context.Context, id string) (*domain.Canvas, error)
	UpdateSection(ctx context.Context, id string, patch domain.SectionPatch) (*domain.Canvas, error)
	Reorder(ctx context.Context, from, to int) (*domain.Canvas, error)
	MoveUp(ctx context.Context, id string) (*domain.Canvas, error)
	MoveDown(ctx context.Context, id string) (*domain.Canvas, error)
	Undo(ctx context.Context) (*domain.Canvas, error)
	Redo(ctx context.Context) (*domain.Canvas, error)

	Save(ctx context.Context) (*domain.Canvas, error)
	Publish(ctx context.Context) (*domain.Canvas, error)
	ExportSnapshot() ([]byte, error)
	ImportSnapshot(ctx context.Context, data []byte) (*domain.Canvas, error)
	ApplyAIProposal(ctx context.Context, req domain.LayoutRequest) (*domain.Canvas, error)

	Select(id string) error
	DismissNotice(id string) bool
	AllowedSections(ctx context.Context) []string
	Templates(ctx context.Context) []domain.SectionTemplate

	// Observe subscribes to lifecycle events.
	Observe(hooks domain.LifecycleHooks)
}
