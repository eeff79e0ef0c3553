package warp

import (
	"context"
	"image"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/warp/fingerprint"
)

// affineWarpKind tags AffineWarp fingerprints.
const affineWarpKind = "AffineWarp"

// Affine is a 2D affine transformation:
//
//	| a  b  c |
//	| d  e  f |
//	| 0  0  1 |
type Affine struct {
	A, B, C float64 // x' = A*x + B*y + C
	D, E, F float64 // y' = D*x + E*y + F
}

// Identity returns the identity transformation.
func Identity() Affine {
	return Affine{A: 1, E: 1}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Affine {
	return Affine{A: 1, C: tx, E: 1, F: ty}
}

// Scale returns a scale by (sx, sy) around the origin.
func Scale(sx, sy float64) Affine {
	return Affine{A: sx, E: sy}
}

// Rotate returns a rotation by angle radians around the origin.
func Rotate(angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{A: cos, B: -sin, D: sin, E: cos}
}

// Multiply returns m * other: other is applied first, then m.
func (m Affine) Multiply(other Affine) Affine {
	return Affine{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Invert returns the inverse transformation, or false if m is singular.
func (m Affine) Invert() (Affine, bool) {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-10 {
		return Affine{}, false
	}
	inv := 1 / det
	return Affine{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}, true
}

// Apply transforms p.
func (m Affine) Apply(p f32.Vec2) f32.Vec2 {
	x, y := float64(p[0]), float64(p[1])
	return f32.Vec2{
		float32(m.A*x + m.B*y + m.C),
		float32(m.D*x + m.E*y + m.F),
	}
}

// AffineEngine maps output pixels through the inverse of a transform.
// Every pixel is valid.
type AffineEngine struct {
	inverse Affine
}

// Map implements Engine.
func (e AffineEngine) Map(outputPixel f32.Vec2) (f32.Vec2, bool) {
	return e.inverse.Apply(outputPixel), true
}

// AffineWarp moves an image by an affine transform taking source pixels to
// output pixels. Its engine is the same for every tile.
type AffineWarp struct {
	transform Affine
}

// NewAffineWarp creates a warp applying t.
func NewAffineWarp(t Affine) *AffineWarp {
	return &AffineWarp{transform: t}
}

// Transform returns the source-to-output transform.
func (w *AffineWarp) Transform() Affine { return w.transform }

// HashEngine implements Warp. The tile origin does not contribute, so all
// tiles share one cached engine.
func (w *AffineWarp) HashEngine(_ context.Context, _ image.Point) (fingerprint.Fingerprint, error) {
	var h fingerprint.Builder
	h.AppendString(affineWarpKind)
	for _, v := range [...]float64{w.transform.A, w.transform.B, w.transform.C, w.transform.D, w.transform.E, w.transform.F} {
		h.AppendFloat64(v)
	}
	return h.Sum(), nil
}

// ComputeEngine implements Warp. It fails with ErrSingularTransform if the
// transform cannot be inverted.
func (w *AffineWarp) ComputeEngine(_ context.Context, _ image.Point) (Engine, error) {
	inv, ok := w.transform.Invert()
	if !ok {
		return nil, ErrSingularTransform
	}
	return AffineEngine{inverse: inv}, nil
}
