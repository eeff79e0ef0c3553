package fingerprint

import (
	"image"
	"testing"
)

func TestBuilderDeterministic(t *testing.T) {
	build := func() Fingerprint {
		var b Builder
		b.AppendString("VectorWarp")
		b.AppendPoint(image.Pt(64, 128))
		b.AppendRect(image.Rect(0, 0, 1920, 1080))
		b.AppendFloat32s([]float32{0, 0.5, 1})
		b.AppendInt(-3)
		return b.Sum()
	}

	a, b := build(), build()
	if a != b {
		t.Errorf("fingerprints differ: %v vs %v", a, b)
	}
	if a.IsZero() {
		t.Error("fingerprint of non-empty input should not be zero")
	}
}

func TestBuilderSensitivity(t *testing.T) {
	base := func(b *Builder) {
		b.AppendPoint(image.Pt(0, 0))
		b.AppendFloat32s([]float32{1, 2, 3})
	}

	var ref Builder
	base(&ref)
	want := ref.Sum()

	tests := []struct {
		name  string
		build func(b *Builder)
	}{
		{"different point", func(b *Builder) {
			b.AppendPoint(image.Pt(0, 64))
			b.AppendFloat32s([]float32{1, 2, 3})
		}},
		{"different sample", func(b *Builder) {
			b.AppendPoint(image.Pt(0, 0))
			b.AppendFloat32s([]float32{1, 2, 4})
		}},
		{"extra value", func(b *Builder) {
			base(b)
			b.AppendInt(0)
		}},
		{"swapped order", func(b *Builder) {
			b.AppendFloat32s([]float32{1, 2, 3})
			b.AppendPoint(image.Pt(0, 0))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Builder
			tt.build(&b)
			if got := b.Sum(); got == want {
				t.Errorf("expected fingerprint to change, both are %v", got)
			}
		})
	}
}

func TestAppendStringLengthPrefix(t *testing.T) {
	var a, b Builder
	a.AppendString("ab")
	a.AppendString("c")
	b.AppendString("a")
	b.AppendString("bc")
	if a.Sum() == b.Sum() {
		t.Error("concatenated strings should not collide")
	}
}

func TestReset(t *testing.T) {
	var b Builder
	b.AppendInt(42)
	first := b.Sum()

	b.Reset()
	b.AppendInt(42)
	if got := b.Sum(); got != first {
		t.Errorf("after Reset got %v, want %v", got, first)
	}
}

func TestString(t *testing.T) {
	f := New(0x0123456789abcdef, 0xfedcba9876543210)
	want := "fedcba98765432100123456789abcdef"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if Hasher(f) != f.Lo() {
		t.Error("Hasher should return the low half")
	}
}

func TestOfFloat32s(t *testing.T) {
	if OfFloat32s([]float32{0}) == OfFloat32s([]float32{0, 0}) {
		t.Error("buffers of different length should not collide")
	}
}
