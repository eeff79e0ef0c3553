package warp

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/warp/fingerprint"
)

// vectorWarpKind tags VectorWarp fingerprints so they never collide with
// those of other warp kinds.
const vectorWarpKind = "VectorWarp"

// vectorChannels lists the channels an engine reads, in fetch and hash order,
// with the buffer substituted when the channel is absent.
var vectorChannels = [...]struct {
	name     string
	fallback func() *Buffer
}{
	{ChannelX, BlackTile},
	{ChannelY, BlackTile},
	{ChannelAlpha, WhiteTile},
}

// Input identifies an input of a VectorWarp for dirty propagation.
type Input uint8

const (
	InputFormat             Input = iota // format of the image being warped
	InputVectorFormat                    // format of the vector image
	InputVectorDataWindow                // data window of the vector image
	InputVectorChannelNames              // channel list of the vector image
	InputVectorChannelData               // channel samples of the vector image
	InputVectorMode
	InputVectorUnits
)

// VectorWarp warps an image by a per-pixel displacement field.
//
// The output takes its format and data window from the vector image. The
// image being warped contributes only its display window, against which
// Screen-space vectors are de-normalised.
//
// A VectorWarp is immutable and safe for concurrent use.
type VectorWarp struct {
	in     FormatSource
	vector VectorSource
	mode   VectorMode
	units  VectorUnits
}

// NewVectorWarp creates a warp of the image in driven by vector.
// Defaults are Absolute mode and Screen units.
func NewVectorWarp(in FormatSource, vector VectorSource, opts ...Option) *VectorWarp {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &VectorWarp{
		in:     in,
		vector: vector,
		mode:   o.mode,
		units:  o.units,
	}
}

// Mode returns the configured vector mode.
func (w *VectorWarp) Mode() VectorMode { return w.mode }

// Units returns the configured vector units.
func (w *VectorWarp) Units() VectorUnits { return w.units }

// Format returns the output format, which is the vector image's.
func (w *VectorWarp) Format(ctx context.Context) (Format, error) {
	return w.vector.Format(ctx)
}

// DataWindow returns the output data window, which is the vector image's.
func (w *VectorWarp) DataWindow(ctx context.Context) (image.Rectangle, error) {
	return w.vector.DataWindow(ctx)
}

// AffectsEngine reports whether a change to input invalidates engines.
func (w *VectorWarp) AffectsEngine(input Input) bool {
	switch input {
	case InputFormat,
		InputVectorDataWindow,
		InputVectorChannelNames,
		InputVectorChannelData,
		InputVectorMode,
		InputVectorUnits:
		return true
	default:
		return false
	}
}

// HashEngine implements Warp.
//
// The fingerprint folds, in order: the tile origin, the vector data window,
// the format of the image being warped, the tile data of each of R, G and A
// that the vector image currently has, and finally the mode and units.
// Absent channels are skipped entirely, exactly as ComputeEngine skips
// fetching them.
func (w *VectorWarp) HashEngine(ctx context.Context, tileOrigin image.Point) (fingerprint.Fingerprint, error) {
	var h fingerprint.Builder
	h.AppendString(vectorWarpKind)
	h.AppendPoint(tileOrigin)

	names, err := w.vector.ChannelNames(ctx)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("warp: vector channel names: %w", err)
	}
	dw, err := w.vector.DataWindowHash(ctx)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("warp: vector data window: %w", err)
	}
	h.Append(dw)
	f, err := w.in.FormatHash(ctx)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("warp: format: %w", err)
	}
	h.Append(f)

	for _, ch := range vectorChannels {
		if !ChannelExists(names, ch.name) {
			continue
		}
		data, err := w.vector.ChannelDataHash(ctx, ChannelScope{Channel: ch.name, TileOrigin: tileOrigin})
		if err != nil {
			return fingerprint.Fingerprint{}, fmt.Errorf("warp: hash channel %q: %w", ch.name, err)
		}
		h.AppendString(ch.name)
		h.Append(data)
	}

	h.AppendInt(int(w.mode))
	h.AppendInt(int(w.units))
	return h.Sum(), nil
}

// ComputeEngine implements Warp. It returns a *VectorEngine.
//
// Channels missing from the vector image are replaced by shared default
// tiles: zero displacement for R and G, full validity for A.
func (w *VectorWarp) ComputeEngine(ctx context.Context, tileOrigin image.Point) (Engine, error) {
	tileBound := TileBound(tileOrigin)

	dataWindow, err := w.vector.DataWindow(ctx)
	if err != nil {
		return nil, fmt.Errorf("warp: vector data window: %w", err)
	}
	names, err := w.vector.ChannelNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("warp: vector channel names: %w", err)
	}
	format, err := w.in.Format(ctx)
	if err != nil {
		return nil, fmt.Errorf("warp: format: %w", err)
	}
	validBound := tileBound.Intersect(dataWindow)

	var bufs [len(vectorChannels)]*Buffer
	for i, ch := range vectorChannels {
		if !ChannelExists(names, ch.name) {
			bufs[i] = ch.fallback()
			continue
		}
		bufs[i], err = w.vector.ChannelData(ctx, ChannelScope{Channel: ch.name, TileOrigin: tileOrigin})
		if err != nil {
			return nil, fmt.Errorf("warp: fetch channel %q: %w", ch.name, err)
		}
	}

	e, err := NewVectorEngine(format.DisplayWindow, tileBound, validBound, bufs[0], bufs[1], bufs[2], w.mode, w.units)
	if err != nil {
		return nil, err
	}

	Logger().Debug("vector engine built",
		slog.Any("tile", tileOrigin),
		slog.Any("valid", validBound),
		slog.Any("channels", names),
		slog.String("mode", w.mode.String()),
		slog.String("units", w.units.String()),
	)
	return e, nil
}
