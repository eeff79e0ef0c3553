package warp

import (
	"context"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/warp/fingerprint"
)

// Engine maps output pixels of one tile to source coordinates.
//
// Map returns false when no source sample should be taken for the pixel;
// the resampler must then produce a black, empty pixel. Engines are
// immutable: Map is a pure function of the engine and its argument and is
// safe for concurrent use.
type Engine interface {
	Map(outputPixel f32.Vec2) (inputPixel f32.Vec2, ok bool)
}

// Warp is a node that can build engines for the tiles of its output.
//
// HashEngine fingerprints every input that affects the engine for a tile,
// so an engine built for one fingerprint may be reused for any tile with an
// equal fingerprint. It is typically called before ComputeEngine to consult
// a cache.
type Warp interface {
	HashEngine(ctx context.Context, tileOrigin image.Point) (fingerprint.Fingerprint, error)
	ComputeEngine(ctx context.Context, tileOrigin image.Point) (Engine, error)
}

// VectorEngine maps pixels through a displacement field.
type VectorEngine struct {
	displayWindow image.Rectangle
	field         FieldView
	mode          VectorMode
	units         VectorUnits
}

// NewVectorEngine assembles an engine for the tile at tileBound.
//
// validBound is the part of the tile backed by vector data; pixels outside
// it map with zero displacement. Each buffer must hold one sample per pixel
// of tileBound.
func NewVectorEngine(displayWindow, tileBound, validBound image.Rectangle, x, y, a *Buffer, mode VectorMode, units VectorUnits) (*VectorEngine, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVectorMode, uint8(mode))
	}
	if !units.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVectorUnits, uint8(units))
	}

	want := tileBound.Dx() * tileBound.Dy()
	for _, ch := range []struct {
		name string
		buf  *Buffer
	}{{ChannelX, x}, {ChannelY, y}, {ChannelAlpha, a}} {
		if ch.buf == nil || ch.buf.Len() != want {
			n := 0
			if ch.buf != nil {
				n = ch.buf.Len()
			}
			return nil, fmt.Errorf("%w: channel %q has %d samples, want %d", ErrBufferSize, ch.name, n, want)
		}
	}

	return &VectorEngine{
		displayWindow: displayWindow,
		field:         NewFieldView(tileBound, validBound, x, y, a),
		mode:          mode,
		units:         units,
	}, nil
}

// Map implements Engine.
func (e *VectorEngine) Map(outputPixel f32.Vec2) (f32.Vec2, bool) {
	p := image.Pt(
		int(math.Floor(float64(outputPixel[0]))),
		int(math.Floor(float64(outputPixel[1]))),
	)

	x, y, a := e.field.At(p)
	if a == 0 {
		return f32.Vec2{}, false
	}

	var result f32.Vec2
	if e.mode == Relative {
		result = outputPixel
	}
	if e.units == Screen {
		x, y = e.screenToPixel(x, y)
	}
	result[0] += x
	result[1] += y
	return result, true
}

// screenToPixel interpolates each component between the display window's
// minimum and maximum on its axis.
func (e *VectorEngine) screenToPixel(x, y float32) (float32, float32) {
	dw := e.displayWindow
	return lerp(float32(dw.Min.X), float32(dw.Max.X), x),
		lerp(float32(dw.Min.Y), float32(dw.Max.Y), y)
}

// lerp rounds the product before the add so the result does not depend on
// whether the platform fuses multiply-add.
func lerp(lo, hi, t float32) float32 {
	return lo + float32(t*(hi-lo))
}

// Field returns the engine's view of the displacement field.
func (e *VectorEngine) Field() FieldView { return e.field }

// DisplayWindow returns the window Screen vectors are de-normalised against.
func (e *VectorEngine) DisplayWindow() image.Rectangle { return e.displayWindow }

// Mode returns the vector mode.
func (e *VectorEngine) Mode() VectorMode { return e.mode }

// Units returns the vector units.
func (e *VectorEngine) Units() VectorUnits { return e.units }
