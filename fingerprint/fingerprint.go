// Package fingerprint computes deterministic 128-bit digests of the inputs
// that determine a computed result.
//
// Fingerprints are used as cache keys: two computations with equal
// fingerprints are assumed to produce identical results. Values are appended
// to a Builder in a fixed binary encoding, so the same sequence of appends
// always yields the same Fingerprint on every platform.
//
//	var b fingerprint.Builder
//	b.AppendString("VectorWarp")
//	b.AppendPoint(tileOrigin)
//	key := b.Sum()
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"image"
	"math"

	"github.com/spaolacci/murmur3"
)

// Fingerprint is a 128-bit MurmurHash3 digest.
// The zero value is the digest of nothing and is a valid map key.
type Fingerprint struct {
	h1, h2 uint64
}

// New returns a Fingerprint from its two 64-bit halves.
func New(h1, h2 uint64) Fingerprint {
	return Fingerprint{h1: h1, h2: h2}
}

// Lo returns the low 64 bits. Suitable for shard selection.
func (f Fingerprint) Lo() uint64 { return f.h1 }

// Hi returns the high 64 bits.
func (f Fingerprint) Hi() uint64 { return f.h2 }

// IsZero reports whether f is the zero Fingerprint.
func (f Fingerprint) IsZero() bool { return f.h1 == 0 && f.h2 == 0 }

// String returns the digest as 32 lowercase hex digits.
func (f Fingerprint) String() string {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], f.h2)
	binary.BigEndian.PutUint64(buf[8:], f.h1)
	return hex.EncodeToString(buf[:])
}

// Hasher returns the shard hash of a fingerprint.
// It matches the cache.Hasher signature.
func Hasher(f Fingerprint) uint64 { return f.h1 }

// Builder accumulates values into a Fingerprint.
//
// The zero value is ready to use. A Builder is not safe for concurrent use.
type Builder struct {
	h       murmur3.Hash128
	scratch [8]byte
}

func (b *Builder) hash() murmur3.Hash128 {
	if b.h == nil {
		b.h = murmur3.New128()
	}
	return b.h
}

func (b *Builder) write(p []byte) {
	_, _ = b.hash().Write(p) // murmur3 writes never fail
}

// AppendUint64 appends v.
func (b *Builder) AppendUint64(v uint64) {
	binary.LittleEndian.PutUint64(b.scratch[:], v)
	b.write(b.scratch[:])
}

// AppendInt appends v as a 64-bit signed integer.
func (b *Builder) AppendInt(v int) {
	b.AppendUint64(uint64(int64(v)))
}

// AppendFloat64 appends the IEEE 754 bits of v.
func (b *Builder) AppendFloat64(v float64) {
	b.AppendUint64(math.Float64bits(v))
}

// AppendString appends s, prefixed by its length so that consecutive strings
// cannot run together.
func (b *Builder) AppendString(s string) {
	b.AppendInt(len(s))
	_, _ = b.hash().Write([]byte(s))
}

// AppendPoint appends the coordinates of p.
func (b *Builder) AppendPoint(p image.Point) {
	b.AppendInt(p.X)
	b.AppendInt(p.Y)
}

// AppendRect appends the corners of r.
func (b *Builder) AppendRect(r image.Rectangle) {
	b.AppendPoint(r.Min)
	b.AppendPoint(r.Max)
}

// AppendFloat32s appends the length of v followed by the bits of every sample.
func (b *Builder) AppendFloat32s(v []float32) {
	b.AppendInt(len(v))
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	b.write(buf)
}

// Append folds another fingerprint into the digest.
func (b *Builder) Append(f Fingerprint) {
	b.AppendUint64(f.h1)
	b.AppendUint64(f.h2)
}

// Sum returns the fingerprint of everything appended so far.
// It does not reset the Builder; further appends extend the same digest.
func (b *Builder) Sum() Fingerprint {
	h1, h2 := b.hash().Sum128()
	return Fingerprint{h1: h1, h2: h2}
}

// Reset discards all appended values.
func (b *Builder) Reset() {
	if b.h != nil {
		b.h.Reset()
	}
}

// OfFloat32s is a convenience for fingerprinting a single sample buffer.
func OfFloat32s(v []float32) Fingerprint {
	var b Builder
	b.AppendFloat32s(v)
	return b.Sum()
}
