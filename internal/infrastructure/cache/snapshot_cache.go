package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/salonos/backend/internal/domain/analytics"
)

// Constants for snapshot cache configuration
const (
	defaultSnapshotTTL     = 60 * time.Second
	defaultCleanupInterval = 30 * time.Second
)

// SnapshotCache is a TTL-bounded in-memory cache for analytics snapshots.
// Concurrent callers requesting the same key while a load is in flight
// block on that load instead of issuing their own, so a dashboard opening
// six panels at once costs one repository round trip.
type SnapshotCache struct {
	ttl    time.Duration
	logger *zap.Logger
	nowFn  func() time.Time

	mu      sync.Mutex
	entries map[string]*snapshotEntry

	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// snapshotEntry is one cached load. ready is closed once the load finishes;
// expiresAt stays zero while the load is in flight.
type snapshotEntry struct {
	ready     chan struct{}
	snap      analytics.Snapshot
	err       error
	expiresAt time.Time
}

// SnapshotCacheOption is a functional option for configuring the cache
type SnapshotCacheOption func(*SnapshotCache)

// WithSnapshotTTL sets how long a loaded snapshot stays fresh
func WithSnapshotTTL(ttl time.Duration) SnapshotCacheOption {
	return func(c *SnapshotCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSnapshotLogger sets the logger for the cache
func WithSnapshotLogger(logger *zap.Logger) SnapshotCacheOption {
	return func(c *SnapshotCache) {
		c.logger = logger
	}
}

// WithSnapshotClock overrides the time source, used in tests
func WithSnapshotClock(now func() time.Time) SnapshotCacheOption {
	return func(c *SnapshotCache) {
		c.nowFn = now
	}
}

// NewSnapshotCache creates a new snapshot cache and starts its background
// cleanup goroutine.
func NewSnapshotCache(opts ...SnapshotCacheOption) *SnapshotCache {
	cache := &SnapshotCache{
		ttl:     defaultSnapshotTTL,
		logger:  zap.NewNop(),
		nowFn:   time.Now,
		entries: make(map[string]*snapshotEntry),
		stopCh:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// GetOrLoad returns the cached snapshot for key, or runs load and caches its
// result. Failed loads are never cached. A waiting caller returns early when
// its own context is cancelled; the in-flight load keeps running for the
// leader.
func (c *SnapshotCache) GetOrLoad(ctx context.Context, key string, load func(context.Context) (analytics.Snapshot, error)) (analytics.Snapshot, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && !c.isExpired(entry) {
		c.mu.Unlock()
		select {
		case <-entry.ready:
			if entry.err != nil {
				return analytics.Snapshot{}, entry.err
			}
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("snapshot cache hit", zap.String("key", key))
			return entry.snap, nil
		case <-ctx.Done():
			return analytics.Snapshot{}, ctx.Err()
		}
	}

	entry := &snapshotEntry{ready: make(chan struct{})}
	c.entries[key] = entry
	c.mu.Unlock()

	atomic.AddInt64(&c.misses, 1)
	entry.snap, entry.err = load(ctx)

	c.mu.Lock()
	if entry.err != nil {
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
	} else {
		entry.expiresAt = c.nowFn().Add(c.ttl)
	}
	c.mu.Unlock()
	close(entry.ready)

	return entry.snap, entry.err
}

// Invalidate drops the cached snapshot for key. An in-flight load for the
// key finishes but its result is discarded.
func (c *SnapshotCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.logger.Debug("snapshot cache invalidated", zap.String("key", key))
}

// InvalidateAll drops every cached snapshot.
func (c *SnapshotCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*snapshotEntry)
	c.mu.Unlock()
}

// Stats returns hit and miss counters since startup.
func (c *SnapshotCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop terminates the background cleanup goroutine.
func (c *SnapshotCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

// isExpired must be called with c.mu held. Loading entries are never
// expired.
func (c *SnapshotCache) isExpired(e *snapshotEntry) bool {
	return !e.expiresAt.IsZero() && c.nowFn().After(e.expiresAt)
}

func (c *SnapshotCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if c.isExpired(entry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
