package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// RefreshFunc loads a fresh snapshot from the external source.
type RefreshFunc func(ctx context.Context) ([]syncdomain.Row, error)

type snapshot struct {
	rows      []syncdomain.Row
	fetchedAt time.Time
}

// SnapshotCache holds per-sheet row snapshots with a TTL. A stale or
// missing entry triggers a refresh through the registered loader; reads
// within the TTL are served from memory so repeated diff passes do not
// hammer the external API.
type SnapshotCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	snapshots map[string]*snapshot
	loaders   map[string]RefreshFunc
	logger    *zap.Logger
}

// NewSnapshotCache creates a snapshot cache with the given TTL.
func NewSnapshotCache(ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{
		ttl:       ttl,
		snapshots: make(map[string]*snapshot),
		loaders:   make(map[string]RefreshFunc),
		logger:    logger,
	}
}

// Register associates a loader with a cache key. Get for an unregistered
// key returns shared validation error semantics from the loader lookup.
func (c *SnapshotCache) Register(key string, loader RefreshFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaders[key] = loader
}

// Get returns the cached rows for key, refreshing from the loader when the
// entry is missing or older than the TTL. The returned slice must be
// treated as read-only by callers.
func (c *SnapshotCache) Get(ctx context.Context, key string) ([]syncdomain.Row, error) {
	c.mu.RLock()
	snap, ok := c.snapshots[key]
	if ok && time.Since(snap.fetchedAt) < c.ttl {
		rows := snap.rows
		c.mu.RUnlock()
		return rows, nil
	}
	c.mu.RUnlock()

	return c.refresh(ctx, key)
}

// refresh loads a fresh snapshot and swaps it in atomically. A concurrent
// refresh that already produced a fresh entry wins; the later one is
// discarded to avoid replacing newer data with an older read.
func (c *SnapshotCache) refresh(ctx context.Context, key string) ([]syncdomain.Row, error) {
	c.mu.RLock()
	loader, ok := c.loaders[key]
	c.mu.RUnlock()
	if !ok {
		return nil, syncdomain.NewValidationError("no snapshot loader registered for " + key)
	}

	started := time.Now()
	rows, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.snapshots[key]; ok && existing.fetchedAt.After(started) {
		return existing.rows, nil
	}
	c.snapshots[key] = &snapshot{rows: rows, fetchedAt: time.Now()}
	c.logger.Debug("snapshot refreshed",
		zap.String("key", key),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return rows, nil
}

// Invalidate drops the cached snapshot for key so the next Get refetches.
func (c *SnapshotCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, key)
}

// InvalidateAll drops every cached snapshot.
func (c *SnapshotCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = make(map[string]*snapshot)
}
