package warp

import (
	"image"
	"sync"
)

// Buffer is an immutable block of channel samples, one per pixel of a tile,
// stored row-major from the tile origin.
//
// Buffers are shared, never copied: the same Buffer may back a source's tile
// cache and any number of engines built from it. Nothing may write to the
// samples after NewBuffer returns.
type Buffer struct {
	samples []float32
}

// NewBuffer wraps samples without copying. The caller hands over ownership
// and must not modify samples afterwards.
func NewBuffer(samples []float32) *Buffer {
	return &Buffer{samples: samples}
}

// Len returns the number of samples.
func (b *Buffer) Len() int { return len(b.samples) }

// At returns sample i.
func (b *Buffer) At(i int) float32 { return b.samples[i] }

// Samples returns the underlying samples. The slice must be treated as
// read-only.
func (b *Buffer) Samples() []float32 { return b.samples }

func constantTile(v float32) *Buffer {
	s := make([]float32, TilePixels)
	if v != 0 {
		for i := range s {
			s[i] = v
		}
	}
	return NewBuffer(s)
}

var (
	blackTile = sync.OnceValue(func() *Buffer { return constantTile(0) })
	whiteTile = sync.OnceValue(func() *Buffer { return constantTile(1) })
)

// BlackTile returns the shared all-zero tile buffer.
func BlackTile() *Buffer { return blackTile() }

// WhiteTile returns the shared all-one tile buffer.
func WhiteTile() *Buffer { return whiteTile() }

// FieldView gives read-only access to one tile's displacement and validity
// samples.
//
// Pixels inside the tile but outside the valid bound (the part of the tile
// backed by real vector data) read as zero displacement with full validity.
type FieldView struct {
	bound   image.Rectangle
	valid   image.Rectangle
	x, y, a *Buffer
}

// NewFieldView binds the three channel buffers to a tile bound.
// valid is clipped to bound.
func NewFieldView(bound, valid image.Rectangle, x, y, a *Buffer) FieldView {
	return FieldView{
		bound: bound,
		valid: valid.Intersect(bound),
		x:     x,
		y:     y,
		a:     a,
	}
}

// Bound returns the tile bound the view is indexed against.
func (v FieldView) Bound() image.Rectangle { return v.bound }

// ValidBound returns the part of the tile backed by vector data.
func (v FieldView) ValidBound() image.Rectangle { return v.valid }

// Index returns the buffer index of pixel p, which must lie in the tile.
func (v FieldView) Index(p image.Point) int { return Index(p, v.bound) }

// At returns the raw displacement and validity samples at pixel p.
func (v FieldView) At(p image.Point) (x, y, a float32) {
	if !p.In(v.valid) {
		return 0, 0, 1
	}
	i := Index(p, v.bound)
	return v.x.samples[i], v.y.samples[i], v.a.samples[i]
}
