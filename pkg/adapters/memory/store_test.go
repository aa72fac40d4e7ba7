package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/blueprint/pkg/adapters/memory"
	"github.com/aretw0/blueprint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunDraftStoreContract(t, store)
}

func TestMemoryStore_Quota(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(memory.WithQuota(8))

	require.NoError(t, store.Set(ctx, "a", []byte("12345")))
	assert.ErrorIs(t, store.Set(ctx, "b", []byte("12345")), memory.ErrQuotaExceeded)

	// Replacing a key only counts the delta.
	require.NoError(t, store.Set(ctx, "a", []byte("12345678")))

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Set(ctx, "b", []byte("12345")))
}
