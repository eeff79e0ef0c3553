package warp

import (
	"context"
	"image"
	"log/slog"

	"github.com/gogpu/warp/cache"
	"github.com/gogpu/warp/fingerprint"
)

// EngineCache memoises engines by the fingerprint their warp reports.
//
// At most one build per fingerprint runs at a time; concurrent requests for
// the same fingerprint wait for it and share the engine. A build that fails,
// including one cancelled through its context, is not cached and its error
// is returned to every caller that was waiting on it.
//
// EngineCache is safe for concurrent use.
type EngineCache struct {
	engines *cache.ShardedCache[fingerprint.Fingerprint, Engine]
}

// NewEngineCache creates a cache holding up to capacity engines per shard.
// If capacity <= 0, cache.DefaultCapacity is used.
func NewEngineCache(capacity int) *EngineCache {
	return &EngineCache{
		engines: cache.NewShardedKeyed[fingerprint.Fingerprint, Engine](capacity, fingerprint.Hasher, fingerprint.Fingerprint.String),
	}
}

// Engine returns the engine for the tile at tileOrigin, building it with
// w.ComputeEngine only if no engine with the same fingerprint is cached.
func (c *EngineCache) Engine(ctx context.Context, w Warp, tileOrigin image.Point) (Engine, error) {
	key, err := w.HashEngine(ctx, tileOrigin)
	if err != nil {
		return nil, err
	}
	return c.engines.GetOrCompute(key, func() (Engine, error) {
		Logger().Debug("engine cache miss", slog.Any("tile", tileOrigin), slog.String("key", key.String()))
		return w.ComputeEngine(ctx, tileOrigin)
	})
}

// Len returns the number of cached engines.
func (c *EngineCache) Len() int { return c.engines.Len() }

// Stats returns cache statistics.
func (c *EngineCache) Stats() cache.Stats { return c.engines.Stats() }

// Clear drops every cached engine.
func (c *EngineCache) Clear() { c.engines.Clear() }
