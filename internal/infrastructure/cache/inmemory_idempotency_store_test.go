package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	fresh, err := store.MarkProcessed(ctx, "QA12345")
	require.NoError(t, err)
	assert.True(t, fresh)

	// Second claim on the same transaction is a duplicate
	fresh, err = store.MarkProcessed(ctx, "QA12345")
	require.NoError(t, err)
	assert.False(t, fresh)

	// Different transaction is independent
	fresh, err = store.MarkProcessed(ctx, "QA67890")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	fresh, err := store.MarkProcessed(ctx, "QA12345")
	require.NoError(t, err)
	require.True(t, fresh)

	require.NoError(t, store.Release(ctx, "QA12345"))

	// Released IDs can be claimed again, so gateway retries succeed
	fresh, err = store.MarkProcessed(ctx, "QA12345")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	fresh, err := store.MarkProcessed(ctx, "QA12345")
	require.NoError(t, err)
	require.True(t, fresh)

	time.Sleep(20 * time.Millisecond)

	fresh, err = store.MarkProcessed(ctx, "QA12345")
	require.NoError(t, err)
	assert.True(t, fresh)
}
