package kvstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tixora/payments/internal/domain"
)

func TestMemoryStore_IncrAnchorsTTLToFirstAttempt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	count, err := store.Incr(ctx, "bucket", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	// Later increments must not push the expiry out.
	now = now.Add(50 * time.Second)
	count, err = store.Incr(ctx, "bucket", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	now = now.Add(11 * time.Second)
	count, err = store.Incr(ctx, "bucket", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "window should have reset")
}

func TestMemoryStore_GetSetDel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "k", "v", 0))
	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", val)

	require.NoError(t, store.Del(ctx, "k"))
	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, "session", "data", 30*time.Minute))

	now = now.Add(29 * time.Minute)
	_, err := store.Get(ctx, "session")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "session")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestMemoryStore_SetNX(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	ok, err := store.SetNX(ctx, "marker", "1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.SetNX(ctx, "marker", "2", time.Hour)
	require.NoError(t, err)
	require.False(t, ok)

	val, err := store.Get(ctx, "marker")
	require.NoError(t, err)
	require.Equal(t, "1", val)
}

func TestMemoryStore_ConcurrentIncr(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Incr(ctx, "hot", time.Minute)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := store.Incr(ctx, "hot", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(51), count)
}
