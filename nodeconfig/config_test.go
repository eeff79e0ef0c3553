package nodeconfig

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/warp"
	"github.com/gogpu/warp/imagebuf"
)

const sample = `
# motion vectors from the render
VectorWarp "motion" {
    vectorMode: Relative
    vectorUnits: pixels
    filter: bicubic
}

VectorWarp "stmap" {}

// rotate about the centre
AffineWarp "spin" {
    translate: [10, -5];
    rotate: 90
    scale: 2
    pivot: [32, 32]
    filter: "nearest"
}
`

func TestParse(t *testing.T) {
	cfg, err := ParseString("sample.warp", sample)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	want := &Config{
		VectorWarps: []VectorWarp{
			{Name: "motion", Mode: warp.Relative, Units: warp.Pixel, Filter: imagebuf.InterpBicubic},
			{Name: "stmap", Mode: warp.Absolute, Units: warp.Screen, Filter: imagebuf.InterpBilinear},
		},
		AffineWarps: []AffineWarp{
			{
				Name:      "spin",
				Filter:    imagebuf.InterpNearest,
				Translate: [2]float64{10, -5},
				Rotate:    90,
				Scale:     [2]float64{2, 2},
				Pivot:     [2]float64{32, 32},
			},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if _, ok := cfg.VectorWarp("motion"); !ok {
		t.Error("VectorWarp(motion) not found")
	}
	if _, ok := cfg.AffineWarp("motion"); ok {
		t.Error("AffineWarp(motion) should not exist")
	}
}

func TestVectorWarpOptions(t *testing.T) {
	n := VectorWarp{Mode: warp.Relative, Units: warp.Pixel}
	w := warp.NewVectorWarp(nil, nil, n.Options()...)
	if w.Mode() != warp.Relative || w.Units() != warp.Pixel {
		t.Errorf("options produced %v/%v", w.Mode(), w.Units())
	}
}

func TestAffineTransform(t *testing.T) {
	n := AffineWarp{Rotate: 90, Scale: [2]float64{2, 2}, Pivot: [2]float64{32, 32}, Translate: [2]float64{10, 0}}
	m := n.Transform()

	// The pivot is fixed by rotation and scale, then translated.
	got := m.Apply(f32.Vec2{32, 32})
	if math.Abs(float64(got[0]-42)) > 1e-4 || math.Abs(float64(got[1]-32)) > 1e-4 {
		t.Errorf("pivot maps to %v, want (42, 32)", got)
	}
	// One pixel right of the pivot: scaled by 2, turned 90 degrees.
	got = m.Apply(f32.Vec2{33, 32})
	if math.Abs(float64(got[0]-42)) > 1e-4 || math.Abs(float64(got[1]-34)) > 1e-4 {
		t.Errorf("(33, 32) maps to %v, want (42, 34)", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		semantic bool
		wantPos  string
	}{
		{"syntax", `VectorWarp "a" { vectorMode Relative }`, false, "1:"},
		{"unknown kind", `Blur "a" {}`, true, "1:1"},
		{"unknown key", "VectorWarp {\n  size: 3\n}", true, "2:3"},
		{"bad mode", "VectorWarp {\n  vectorMode: Sideways\n}", true, "2:15"},
		{"mode not a name", `VectorWarp { vectorMode: 3 }`, true, "1:26"},
		{"duplicate key", `AffineWarp { rotate: 1; rotate: 2 }`, true, "1:25"},
		{"duplicate node", "VectorWarp \"x\" {}\nAffineWarp \"x\" {}", true, "2:1"},
		{"short vector", `AffineWarp { translate: [1] }`, true, "1:25"},
		{"bad filter", `AffineWarp { filter: lanczos }`, true, "1:22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString("bad.warp", tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, ErrConfig); got != tt.semantic {
				t.Errorf("errors.Is(err, ErrConfig) = %v, want %v (err: %v)", got, tt.semantic, err)
			}
			if !strings.Contains(err.Error(), "bad.warp:"+tt.wantPos) {
				t.Errorf("error %q does not mention position %s", err, tt.wantPos)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.warp")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.VectorWarps) != 2 || len(cfg.AffineWarps) != 1 {
		t.Errorf("Load found %d vector and %d affine nodes", len(cfg.VectorWarps), len(cfg.AffineWarps))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.warp")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}
