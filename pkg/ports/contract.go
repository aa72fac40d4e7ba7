package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDraftStoreContract runs a suite of tests to verify that a DraftStore implementation
// adheres to the defined interface contract.
func RunDraftStoreContract(t *testing.T, store DraftStore) {
	ctx := context.Background()
	key := domain.DraftKey("contract-" + time.Now().Format("20060102150405"))

	t.Run("Set and Get", func(t *testing.T) {
		payload := []byte(`{"id":"contract","sections":[]}`)

		err := store.Set(ctx, key, payload)
		require.NoError(t, err, "Set should not return error")

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, payload, loaded)
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte(`{"v":1}`)))
		require.NoError(t, store.Set(ctx, key, []byte(`{"v":2}`)))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(loaded))
	})

	t.Run("Returned Bytes Are Isolated", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte(`{"v":3}`)))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		loaded[0] = 'X'

		again, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"v":3}`, string(again))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, key+"-missing")
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte(`{}`)))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound, "Get after Delete should return ErrDraftNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		_ = store.Set(ctx, k1, []byte(`{}`))
		_ = store.Set(ctx, k2, []byte(`{}`))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
