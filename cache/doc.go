// Package cache provides a generic sharded LRU cache with single-flight
// construction.
//
// It backs the warp engine cache, where keys are content fingerprints and
// values are immutable per-tile engines:
//
//	c := cache.NewSharded[fingerprint.Fingerprint, warp.Engine](256, fingerprint.Hasher)
//	engine, err := c.GetOrCompute(key, func() (warp.Engine, error) {
//	    return node.ComputeEngine(ctx, tileOrigin)
//	})
//
// # Thread Safety
//
// ShardedCache is safe for concurrent use and must not be copied after
// creation.
package cache
