package warp

import (
	"context"
	"errors"
	"image"
	"testing"
)

// TestNewVectorWarpDefault tests that NewVectorWarp uses the node defaults.
func TestNewVectorWarpDefault(t *testing.T) {
	w := NewVectorWarp(nil, nil)
	if w.Mode() != Absolute {
		t.Errorf("Mode() = %v, want Absolute", w.Mode())
	}
	if w.Units() != Screen {
		t.Errorf("Units() = %v, want Screen", w.Units())
	}
}

// TestNewVectorWarpOptions tests that later options win.
func TestNewVectorWarpOptions(t *testing.T) {
	w := NewVectorWarp(nil, nil,
		WithVectorMode(Relative),
		WithVectorUnits(Pixel),
		WithVectorUnits(Screen),
	)
	if w.Mode() != Relative {
		t.Errorf("Mode() = %v, want Relative", w.Mode())
	}
	if w.Units() != Screen {
		t.Errorf("Units() = %v, want Screen", w.Units())
	}
}

// TestInvalidOptionRejectedAtBuild tests that out-of-range enums surface as
// build errors rather than silent behaviour.
func TestInvalidOptionRejectedAtBuild(t *testing.T) {
	field := newTestField(image.Rect(0, 0, 64, 64))
	in := newTestFormat(image.Rect(0, 0, 64, 64))

	_, err := NewVectorWarp(in, field, WithVectorMode(VectorMode(9))).ComputeEngine(context.Background(), image.Point{})
	if !errors.Is(err, ErrInvalidVectorMode) {
		t.Errorf("err = %v, want ErrInvalidVectorMode", err)
	}
	_, err = NewVectorWarp(in, field, WithVectorUnits(VectorUnits(9))).ComputeEngine(context.Background(), image.Point{})
	if !errors.Is(err, ErrInvalidVectorUnits) {
		t.Errorf("err = %v, want ErrInvalidVectorUnits", err)
	}
}
