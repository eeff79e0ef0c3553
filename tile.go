package warp

import "image"

// Tile size constants.
const (
	// TileSize is the width and height of a tile in pixels.
	TileSize = 64

	// TilePixels is the number of samples in a full tile buffer.
	TilePixels = TileSize * TileSize
)

// TileBound returns the pixel region [origin, origin+TileSize) covered by the
// tile at origin.
func TileBound(origin image.Point) image.Rectangle {
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(TileSize, TileSize))}
}

// TileOrigin returns the origin of the tile containing pixel p.
// Negative coordinates round towards negative infinity.
func TileOrigin(p image.Point) image.Point {
	return image.Pt(floorTile(p.X), floorTile(p.Y))
}

func floorTile(v int) int {
	if v >= 0 {
		return v / TileSize * TileSize
	}
	return -((-v + TileSize - 1) / TileSize * TileSize)
}

// Index converts pixel p to the linear index of its sample in a row-major
// buffer covering bound. p must lie within bound.
func Index(p image.Point, bound image.Rectangle) int {
	return (p.Y-bound.Min.Y)*bound.Dx() + (p.X - bound.Min.X)
}
