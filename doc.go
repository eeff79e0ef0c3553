// Package warp computes per-pixel source coordinates for tiled image warps.
//
// # Overview
//
// A warp node answers one question per output pixel: where in the source
// image should the resampler read? The answer is produced by an [Engine],
// an immutable per-tile object built once and then queried for every pixel
// of its tile, possibly from many goroutines at once.
//
// [VectorWarp] drives the mapping from a displacement image: channel "R"
// holds X, "G" holds Y and "A" gates validity. Missing channels fall back to
// zero displacement and full validity, so an engine can always be built.
//
//	w := warp.NewVectorWarp(in, vectors,
//	    warp.WithVectorMode(warp.Relative),
//	    warp.WithVectorUnits(warp.Pixel),
//	)
//	engines := warp.NewEngineCache(0)
//	engine, err := engines.Engine(ctx, w, tileOrigin)
//	if err != nil {
//	    return err
//	}
//	src, ok := engine.Map(f32.Vec2{x + 0.5, y + 0.5})
//	if !ok {
//	    // write black
//	}
//
// # Caching
//
// Every [Warp] can fingerprint the inputs of a tile's engine with HashEngine
// before building it. [EngineCache] memoises engines by that fingerprint and
// builds each one at most once at a time.
//
// # Coordinate System
//
// Pixel (x, y) covers [x, x+1) × [y, y+1). Tiles are [TileSize]×[TileSize]
// blocks whose origins are multiples of TileSize. Channel buffers are stored
// row-major from the tile origin.
package warp
