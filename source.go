package warp

import (
	"context"
	"image"
	"slices"

	"github.com/gogpu/warp/fingerprint"
)

// Channel names read from a vector image.
const (
	ChannelX     = "R" // horizontal displacement
	ChannelY     = "G" // vertical displacement
	ChannelAlpha = "A" // validity
)

// Format describes the nominal extent of an image.
type Format struct {
	// DisplayWindow is the canonical output extent in pixels. Screen-space
	// vectors are de-normalised against it.
	DisplayWindow image.Rectangle

	// PixelAspect is the width/height ratio of a pixel. Zero means 1.
	PixelAspect float64
}

// Hash folds the format into b.
func (f Format) Hash(b *fingerprint.Builder) {
	b.AppendRect(f.DisplayWindow)
	b.AppendFloat64(f.PixelAspect)
}

// ChannelScope identifies the channel tile a channel-scoped fetch refers to.
type ChannelScope struct {
	Channel    string
	TileOrigin image.Point
}

// FormatSource is an upstream image whose format can be queried.
//
// Both methods are global-scope queries: their result does not depend on any
// tile or channel.
type FormatSource interface {
	Format(ctx context.Context) (Format, error)
	FormatHash(ctx context.Context) (fingerprint.Fingerprint, error)
}

// VectorSource is the upstream image providing the displacement field.
//
// DataWindow and ChannelNames are global-scope queries. ChannelData and
// ChannelDataHash are channel-scoped: ChannelData must return a buffer of
// exactly TilePixels samples for the tile at scope.TileOrigin, with zeros
// outside the data window, and ChannelDataHash must change whenever that
// buffer would. Implementations must be safe for concurrent use.
type VectorSource interface {
	FormatSource

	DataWindow(ctx context.Context) (image.Rectangle, error)
	DataWindowHash(ctx context.Context) (fingerprint.Fingerprint, error)

	ChannelNames(ctx context.Context) ([]string, error)
	ChannelData(ctx context.Context, scope ChannelScope) (*Buffer, error)
	ChannelDataHash(ctx context.Context, scope ChannelScope) (fingerprint.Fingerprint, error)
}

// ChannelExists reports whether name is in names.
func ChannelExists(names []string, name string) bool {
	return slices.Contains(names, name)
}
