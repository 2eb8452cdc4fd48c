package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdempotencyStoreRoundTrip(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	ctx := context.Background()

	_, ok, err := store.Lookup(ctx, "create", "key-1")
	require.NoError(t, err)
	assert.False(t, ok, "lookup before store should miss")

	response := []byte(`{"id":"sess-1","status":"requires_confirmation"}`)
	require.NoError(t, store.Store(ctx, "create", "key-1", response))

	cached, ok, err := store.Lookup(ctx, "create", "key-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, response, cached)
}

func TestMemoryIdempotencyStoreEmptyKeyAlwaysMisses(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "create", "", []byte("ignored")))

	_, ok, err := store.Lookup(ctx, "create", "")
	require.NoError(t, err)
	assert.False(t, ok, "empty keys opt out of idempotency")
}

func TestMemoryIdempotencyStoreScopesByEndpoint(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "create", "shared-key", []byte("create-response")))
	require.NoError(t, store.Store(ctx, "complete", "shared-key", []byte("complete-response")))

	fromCreate, ok, err := store.Lookup(ctx, "create", "shared-key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("create-response"), fromCreate)

	fromComplete, ok, err := store.Lookup(ctx, "complete", "shared-key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("complete-response"), fromComplete)
}
