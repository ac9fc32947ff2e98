package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonos/backend/internal/domain/analytics"
)

func snapshotOfSize(n int) analytics.Snapshot {
	return analytics.Snapshot{Payments: make([]analytics.Payment, n)}
}

func TestSnapshotCache_CachesWithinTTL(t *testing.T) {
	cache := NewSnapshotCache()
	defer cache.Stop()

	var loads int32
	load := func(ctx context.Context) (analytics.Snapshot, error) {
		atomic.AddInt32(&loads, 1)
		return snapshotOfSize(3), nil
	}

	for i := 0; i < 5; i++ {
		snap, err := cache.GetOrLoad(context.Background(), "org", load)
		require.NoError(t, err)
		assert.Len(t, snap.Payments, 3)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))

	hits, misses := cache.Stats()
	assert.Equal(t, int64(4), hits)
	assert.Equal(t, int64(1), misses)
}

func TestSnapshotCache_ExpiresAfterTTL(t *testing.T) {
	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	cache := NewSnapshotCache(
		WithSnapshotTTL(time.Minute),
		WithSnapshotClock(clock),
	)
	defer cache.Stop()

	var loads int32
	load := func(ctx context.Context) (analytics.Snapshot, error) {
		atomic.AddInt32(&loads, 1)
		return snapshotOfSize(1), nil
	}

	_, err := cache.GetOrLoad(context.Background(), "org", load)
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	_, err = cache.GetOrLoad(context.Background(), "org", load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
}

func TestSnapshotCache_DeduplicatesConcurrentLoads(t *testing.T) {
	cache := NewSnapshotCache()
	defer cache.Stop()

	var loads int32
	release := make(chan struct{})
	load := func(ctx context.Context) (analytics.Snapshot, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return snapshotOfSize(2), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]analytics.Snapshot, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetOrLoad(context.Background(), "org", load)
		}(i)
	}

	// Let every worker reach the cache before releasing the load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Len(t, results[i].Payments, 2)
	}
}

func TestSnapshotCache_DoesNotCacheErrors(t *testing.T) {
	cache := NewSnapshotCache()
	defer cache.Stop()

	sentinel := errors.New("db down")
	var loads int32
	failing := func(ctx context.Context) (analytics.Snapshot, error) {
		atomic.AddInt32(&loads, 1)
		return analytics.Snapshot{}, sentinel
	}

	_, err := cache.GetOrLoad(context.Background(), "org", failing)
	assert.ErrorIs(t, err, sentinel)

	_, err = cache.GetOrLoad(context.Background(), "org", failing)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	cache := NewSnapshotCache()
	defer cache.Stop()

	var loads int32
	load := func(ctx context.Context) (analytics.Snapshot, error) {
		atomic.AddInt32(&loads, 1)
		return snapshotOfSize(1), nil
	}

	_, err := cache.GetOrLoad(context.Background(), "org", load)
	require.NoError(t, err)

	cache.Invalidate("org")

	_, err = cache.GetOrLoad(context.Background(), "org", load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
}

func TestSnapshotCache_KeysAreIndependent(t *testing.T) {
	cache := NewSnapshotCache()
	defer cache.Stop()

	var loads int32
	load := func(ctx context.Context) (analytics.Snapshot, error) {
		atomic.AddInt32(&loads, 1)
		return snapshotOfSize(1), nil
	}

	_, err := cache.GetOrLoad(context.Background(), "org-a", load)
	require.NoError(t, err)
	_, err = cache.GetOrLoad(context.Background(), "org-b", load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
}
