// Package parallel provides tile-based parallel evaluation infrastructure
// for the warp pipeline.
//
// An output window is divided into the 64x64 tiles engines are built for;
// tiles are evaluated independently on a WorkerPool. Key features:
//
//   - Tiles aligned to warp.TileSize so each tile maps to exactly one engine
//   - Per-worker queues with work stealing
//   - Error collection with early cancellation
package parallel

import (
	"image"

	"github.com/gogpu/warp"
)

// TileOrigins returns the origins of every tile that intersects r, in
// row-major order. Origins are aligned to warp.TileSize, so edge tiles may
// extend past r.
func TileOrigins(r image.Rectangle) []image.Point {
	if r.Empty() {
		return nil
	}
	lo := warp.TileOrigin(r.Min)
	hi := warp.TileOrigin(r.Max.Sub(image.Pt(1, 1)))

	cols := (hi.X-lo.X)/warp.TileSize + 1
	rows := (hi.Y-lo.Y)/warp.TileSize + 1
	origins := make([]image.Point, 0, cols*rows)
	for y := lo.Y; y <= hi.Y; y += warp.TileSize {
		for x := lo.X; x <= hi.X; x += warp.TileSize {
			origins = append(origins, image.Pt(x, y))
		}
	}
	return origins
}

// TileRegion returns the part of the tile at origin that lies inside r.
func TileRegion(origin image.Point, r image.Rectangle) image.Rectangle {
	return warp.TileBound(origin).Intersect(r)
}
