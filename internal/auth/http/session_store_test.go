package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SetAndGet", func(t *testing.T) {
		store := NewMemorySessionStore()
		defer func() { require.NoError(t, store.Close()) }()

		require.NoError(t, store.Set(ctx, "sid-1", "secret-1", time.Hour))

		secret, found, err := store.Get(ctx, "sid-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "secret-1", secret)
	})

	t.Run("Success_MissingSessionIsNotAnError", func(t *testing.T) {
		store := NewMemorySessionStore()
		defer func() { require.NoError(t, store.Close()) }()

		secret, found, err := store.Get(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, secret)
	})

	t.Run("Success_ExpiredSecretIsGone", func(t *testing.T) {
		store := NewMemorySessionStore()
		defer func() { require.NoError(t, store.Close()) }()

		require.NoError(t, store.Set(ctx, "sid-1", "secret-1", -time.Second))

		_, found, err := store.Get(ctx, "sid-1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Success_Delete", func(t *testing.T) {
		store := NewMemorySessionStore()
		defer func() { require.NoError(t, store.Close()) }()

		require.NoError(t, store.Set(ctx, "sid-1", "secret-1", time.Hour))
		require.NoError(t, store.Delete(ctx, "sid-1"))

		_, found, err := store.Get(ctx, "sid-1")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

// Close must stop the sweeper goroutine and be safe to call twice.
func TestMemorySessionStore_CloseStopsSweeper(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewMemorySessionStore()
	require.NoError(t, store.Set(context.Background(), "sid-1", "secret-1", time.Hour))

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestNewRedisSessionStore(t *testing.T) {
	t.Run("Success_ValidURL", func(t *testing.T) {
		store, err := NewRedisSessionStore("redis://localhost:6379/0")
		require.NoError(t, err)
		assert.NotNil(t, store)
		assert.NoError(t, store.Close())
	})

	t.Run("Error_InvalidURL", func(t *testing.T) {
		store, err := NewRedisSessionStore("not-a-redis-url")
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}
