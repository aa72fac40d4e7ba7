package ports

import (
	"context"
)

// DraftStore defines the interface for persisting local canvas drafts.
// Values are opaque serialized snapshots keyed by domain.DraftKey.
type DraftStore interface {
	// Get retrieves the raw draft stored under key.
	// Returns domain.ErrDraftNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes the draft. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all stored draft keys.
	List(ctx context.Context) ([]string, error)
}
