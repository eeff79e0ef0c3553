package warp

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"golang.org/x/image/math/f32"
)

func almostEqual(a, b f32.Vec2) bool {
	const eps = 1e-4
	return math.Abs(float64(a[0]-b[0])) < eps && math.Abs(float64(a[1]-b[1])) < eps
}

func TestAffineInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Affine
	}{
		{"identity", Identity()},
		{"translate", Translate(10, -4)},
		{"scale", Scale(2, 0.5)},
		{"rotate", Rotate(math.Pi / 3)},
		{"composite", Translate(5, 5).Multiply(Rotate(0.4)).Multiply(Scale(3, 2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Invert()
			if !ok {
				t.Fatal("Invert reported singular matrix")
			}
			p := f32.Vec2{12.5, -7.25}
			if got := inv.Apply(tt.m.Apply(p)); !almostEqual(got, p) {
				t.Errorf("round trip of %v = %v", p, got)
			}
		})
	}
}

func TestAffineSingular(t *testing.T) {
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("zero scale should be singular")
	}
	_, err := NewAffineWarp(Scale(1, 0)).ComputeEngine(context.Background(), image.Point{})
	if !errors.Is(err, ErrSingularTransform) {
		t.Errorf("err = %v, want ErrSingularTransform", err)
	}
}

func TestAffineMultiplyOrder(t *testing.T) {
	// Scale first, then translate.
	m := Translate(10, 0).Multiply(Scale(2, 2))
	if got := m.Apply(f32.Vec2{1, 1}); !almostEqual(got, f32.Vec2{12, 2}) {
		t.Errorf("Apply = %v, want (12, 2)", got)
	}
}

func TestAffineWarpEngine(t *testing.T) {
	ctx := context.Background()
	w := NewAffineWarp(Translate(10, 20))

	e, err := w.ComputeEngine(ctx, image.Point{})
	if err != nil {
		t.Fatalf("ComputeEngine: %v", err)
	}
	got, ok := e.Map(f32.Vec2{15.5, 25.5})
	if !ok || !almostEqual(got, f32.Vec2{5.5, 5.5}) {
		t.Errorf("Map = (%v, %v), want (5.5, 5.5)", got, ok)
	}

	h1, _ := w.HashEngine(ctx, image.Pt(0, 0))
	h2, _ := w.HashEngine(ctx, image.Pt(640, 64))
	if h1 != h2 {
		t.Error("affine fingerprints should not depend on the tile")
	}
	h3, _ := NewAffineWarp(Translate(10, 21)).HashEngine(ctx, image.Point{})
	if h1 == h3 {
		t.Error("different transforms should not share fingerprints")
	}
}
