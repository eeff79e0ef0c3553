// Package imagebuf provides an in-memory planar float image for the warp
// pipeline.
//
// An Image holds any number of named float32 channels over a data window,
// plus the warp.Format it reports downstream. It implements both
// warp.FormatSource and warp.VectorSource, so the same type serves as the
// image being warped, the displacement field driving the warp and the
// pipeline's output.
package imagebuf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"strconv"

	"github.com/gogpu/warp"
	"github.com/gogpu/warp/cache"
	"github.com/gogpu/warp/fingerprint"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when the data window is empty.
	ErrInvalidDimensions = errors.New("imagebuf: invalid dimensions")

	// ErrDataSize is returned when channel samples do not cover the data window.
	ErrDataSize = errors.New("imagebuf: channel data does not match data window")

	// ErrNoChannel is returned when a named channel does not exist.
	ErrNoChannel = errors.New("imagebuf: no such channel")
)

// Channel names of a colour image.
const (
	ChannelR = "R"
	ChannelG = "G"
	ChannelB = "B"
	ChannelA = "A"
)

// RGBA lists the channels of a colour image in storage order.
var RGBA = []string{ChannelR, ChannelG, ChannelB, ChannelA}

var (
	_ warp.FormatSource = (*Image)(nil)
	_ warp.VectorSource = (*Image)(nil)
)

// tileCacheCapacity bounds the cached tile buffers per shard.
const tileCacheCapacity = 64

// Image is a planar float32 image.
//
// Each channel is a row-major plane covering the data window. Samples
// outside the data window read as zero.
//
// Thread safety: Image is safe for concurrent read access. Writes (Set,
// SetChannel, Plane modifications) require external synchronization and
// must not overlap with tile fetches; Set and SetChannel drop cached tiles.
type Image struct {
	format     warp.Format
	dataWindow image.Rectangle
	names      []string
	planes     map[string][]float32

	tiles *cache.ShardedCache[warp.ChannelScope, *warp.Buffer]
}

// New creates an image with no channels.
func New(format warp.Format, dataWindow image.Rectangle) (*Image, error) {
	if dataWindow.Empty() {
		return nil, ErrInvalidDimensions
	}
	return &Image{
		format:     format,
		dataWindow: dataWindow,
		planes:     make(map[string][]float32),
		tiles:      cache.NewShardedKeyed[warp.ChannelScope, *warp.Buffer](tileCacheCapacity, scopeHasher, scopeKey),
	}, nil
}

// NewRGBA creates an image with zeroed R, G, B and A channels whose format
// spans the data window.
func NewRGBA(dataWindow image.Rectangle) (*Image, error) {
	img, err := New(warp.Format{DisplayWindow: dataWindow, PixelAspect: 1}, dataWindow)
	if err != nil {
		return nil, err
	}
	for _, name := range RGBA {
		img.AddChannel(name)
	}
	return img, nil
}

func scopeHasher(s warp.ChannelScope) uint64 {
	h := cache.StringHasher(s.Channel)
	h ^= uint64(int64(s.TileOrigin.X)) * 0x9e3779b97f4a7c15
	h ^= uint64(int64(s.TileOrigin.Y)) * 0xc2b2ae3d27d4eb4f
	return h
}

// scopeKey puts the origin first so channel names cannot run into it.
func scopeKey(s warp.ChannelScope) string {
	return strconv.Itoa(s.TileOrigin.X) + "," + strconv.Itoa(s.TileOrigin.Y) + ":" + s.Channel
}

// AddChannel adds a zeroed channel. Adding an existing channel is a no-op.
func (img *Image) AddChannel(name string) {
	if _, ok := img.planes[name]; ok {
		return
	}
	img.names = append(img.names, name)
	img.planes[name] = make([]float32, img.dataWindow.Dx()*img.dataWindow.Dy())
}

// SetChannel replaces (or adds) a channel. samples must hold one value per
// pixel of the data window, row-major; the image takes ownership of it.
func (img *Image) SetChannel(name string, samples []float32) error {
	if want := img.dataWindow.Dx() * img.dataWindow.Dy(); len(samples) != want {
		return fmt.Errorf("%w: channel %q has %d samples, want %d", ErrDataSize, name, len(samples), want)
	}
	if _, ok := img.planes[name]; !ok {
		img.names = append(img.names, name)
	}
	img.planes[name] = samples
	img.tiles.Clear()
	return nil
}

// RemoveChannel deletes a channel if present.
func (img *Image) RemoveChannel(name string) {
	if _, ok := img.planes[name]; !ok {
		return
	}
	delete(img.planes, name)
	img.names = slices.DeleteFunc(img.names, func(n string) bool { return n == name })
	img.tiles.Clear()
}

// Plane returns the samples of a channel, or nil if it does not exist.
// Callers that modify the plane must call Invalidate afterwards.
func (img *Image) Plane(name string) []float32 {
	return img.planes[name]
}

// Invalidate drops cached tiles after direct plane modifications.
func (img *Image) Invalidate() { img.tiles.Clear() }

// HasChannel reports whether the image has a channel called name.
func (img *Image) HasChannel(name string) bool {
	_, ok := img.planes[name]
	return ok
}

// Names returns the channel names in insertion order.
func (img *Image) Names() []string { return slices.Clone(img.names) }

// Bounds returns the data window.
func (img *Image) Bounds() image.Rectangle { return img.dataWindow }

// PixelFormat returns the image's format.
func (img *Image) PixelFormat() warp.Format { return img.format }

// At returns the sample of channel name at p, zero outside the data window
// or for a missing channel.
func (img *Image) At(name string, p image.Point) float32 {
	plane, ok := img.planes[name]
	if !ok || !p.In(img.dataWindow) {
		return 0
	}
	return plane[warp.Index(p, img.dataWindow)]
}

// Set writes the sample of channel name at p.
func (img *Image) Set(name string, p image.Point, v float32) error {
	plane, ok := img.planes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoChannel, name)
	}
	if !p.In(img.dataWindow) {
		return fmt.Errorf("imagebuf: pixel %v outside data window %v", p, img.dataWindow)
	}
	plane[warp.Index(p, img.dataWindow)] = v
	img.tiles.Clear()
	return nil
}

// Format implements warp.FormatSource.
func (img *Image) Format(context.Context) (warp.Format, error) {
	return img.format, nil
}

// FormatHash implements warp.FormatSource.
func (img *Image) FormatHash(context.Context) (fingerprint.Fingerprint, error) {
	var b fingerprint.Builder
	img.format.Hash(&b)
	return b.Sum(), nil
}

// DataWindow implements warp.VectorSource.
func (img *Image) DataWindow(context.Context) (image.Rectangle, error) {
	return img.dataWindow, nil
}

// DataWindowHash implements warp.VectorSource.
func (img *Image) DataWindowHash(context.Context) (fingerprint.Fingerprint, error) {
	var b fingerprint.Builder
	b.AppendRect(img.dataWindow)
	return b.Sum(), nil
}

// ChannelNames implements warp.VectorSource.
func (img *Image) ChannelNames(context.Context) ([]string, error) {
	return img.Names(), nil
}

// ChannelData implements warp.VectorSource. Tiles are cached and shared
// between callers.
func (img *Image) ChannelData(ctx context.Context, scope warp.ChannelScope) (*warp.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !img.HasChannel(scope.Channel) {
		return nil, fmt.Errorf("%w: %q", ErrNoChannel, scope.Channel)
	}
	return img.tiles.GetOrCompute(scope, func() (*warp.Buffer, error) {
		return warp.NewBuffer(img.copyTile(scope)), nil
	})
}

// ChannelDataHash implements warp.VectorSource. The hash covers the tile's
// samples, so it changes exactly when ChannelData would.
func (img *Image) ChannelDataHash(ctx context.Context, scope warp.ChannelScope) (fingerprint.Fingerprint, error) {
	buf, err := img.ChannelData(ctx, scope)
	if err != nil {
		return fingerprint.Fingerprint{}, err
	}
	var b fingerprint.Builder
	b.AppendPoint(scope.TileOrigin)
	b.AppendFloat32s(buf.Samples())
	return b.Sum(), nil
}

// copyTile copies one channel tile, leaving zeros outside the data window.
func (img *Image) copyTile(scope warp.ChannelScope) []float32 {
	bound := warp.TileBound(scope.TileOrigin)
	out := make([]float32, warp.TilePixels)
	r := bound.Intersect(img.dataWindow)
	if r.Empty() {
		return out
	}
	plane := img.planes[scope.Channel]
	w := r.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := warp.Index(image.Pt(r.Min.X, y), img.dataWindow)
		dst := warp.Index(image.Pt(r.Min.X, y), bound)
		copy(out[dst:dst+w], plane[src:src+w])
	}
	return out
}
