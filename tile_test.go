package warp

import (
	"image"
	"testing"
)

func TestTileOrigin(t *testing.T) {
	tests := []struct {
		p    image.Point
		want image.Point
	}{
		{image.Pt(0, 0), image.Pt(0, 0)},
		{image.Pt(63, 63), image.Pt(0, 0)},
		{image.Pt(64, 130), image.Pt(64, 128)},
		{image.Pt(-1, -64), image.Pt(-64, -64)},
		{image.Pt(-65, 5), image.Pt(-128, 0)},
	}
	for _, tt := range tests {
		if got := TileOrigin(tt.p); got != tt.want {
			t.Errorf("TileOrigin(%v) = %v, want %v", tt.p, got, tt.want)
		}
		if !tt.p.In(TileBound(TileOrigin(tt.p))) {
			t.Errorf("%v not inside its tile bound", tt.p)
		}
	}
}

func TestIndexBijective(t *testing.T) {
	bound := TileBound(image.Pt(-64, 128))
	seen := make([]bool, TilePixels)
	for y := bound.Min.Y; y < bound.Max.Y; y++ {
		for x := bound.Min.X; x < bound.Max.X; x++ {
			i := Index(image.Pt(x, y), bound)
			if i < 0 || i >= TilePixels {
				t.Fatalf("Index(%d, %d) = %d out of range", x, y, i)
			}
			if seen[i] {
				t.Fatalf("Index(%d, %d) = %d already used", x, y, i)
			}
			seen[i] = true
		}
	}
}

func TestDefaultTiles(t *testing.T) {
	if BlackTile() != BlackTile() || WhiteTile() != WhiteTile() {
		t.Error("default tiles should be shared singletons")
	}
	if BlackTile().Len() != TilePixels || WhiteTile().Len() != TilePixels {
		t.Error("default tiles should cover a full tile")
	}
	for i := 0; i < TilePixels; i += 97 {
		if BlackTile().At(i) != 0 || WhiteTile().At(i) != 1 {
			t.Fatalf("unexpected default sample at %d", i)
		}
	}
}

func TestFieldViewAt(t *testing.T) {
	bound := TileBound(image.Point{})
	x := make([]float32, TilePixels)
	x[Index(image.Pt(2, 3), bound)] = 7

	v := NewFieldView(bound, image.Rect(0, 0, 10, 100), NewBuffer(x), BlackTile(), BlackTile())
	if v.ValidBound() != image.Rect(0, 0, 10, 64) {
		t.Errorf("ValidBound = %v, want clipped to tile", v.ValidBound())
	}
	if gx, gy, ga := v.At(image.Pt(2, 3)); gx != 7 || gy != 0 || ga != 0 {
		t.Errorf("At(2, 3) = (%v, %v, %v)", gx, gy, ga)
	}
	if gx, gy, ga := v.At(image.Pt(20, 3)); gx != 0 || gy != 0 || ga != 1 {
		t.Errorf("At outside valid bound = (%v, %v, %v), want (0, 0, 1)", gx, gy, ga)
	}
	if v.Index(image.Pt(1, 1)) != TileSize+1 {
		t.Errorf("Index(1, 1) = %d", v.Index(image.Pt(1, 1)))
	}
}
