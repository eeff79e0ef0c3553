package warp

import (
	"context"
	"image"
	"sync/atomic"

	"github.com/gogpu/warp/fingerprint"
)

// testFormat is a FormatSource with a fixed display window.
type testFormat struct {
	format Format
}

func newTestFormat(display image.Rectangle) *testFormat {
	return &testFormat{format: Format{DisplayWindow: display, PixelAspect: 1}}
}

func (f *testFormat) Format(context.Context) (Format, error) { return f.format, nil }

func (f *testFormat) FormatHash(context.Context) (fingerprint.Fingerprint, error) {
	var b fingerprint.Builder
	f.format.Hash(&b)
	return b.Sum(), nil
}

// testField is an in-memory VectorSource. Each channel is a row-major plane
// covering the data window. It counts channel fetches.
type testField struct {
	*testFormat
	dataWindow image.Rectangle
	names      []string
	planes     map[string][]float32

	fetches atomic.Int32
	err     error
}

// newTestField returns a field with R, G and A covering dataWindow: zero
// displacement and full validity.
func newTestField(dataWindow image.Rectangle) *testField {
	f := &testField{
		testFormat: newTestFormat(dataWindow),
		dataWindow: dataWindow,
		planes:     make(map[string][]float32),
	}
	f.setConstant(ChannelX, 0)
	f.setConstant(ChannelY, 0)
	f.setConstant(ChannelAlpha, 1)
	return f
}

func (f *testField) setConstant(name string, v float32) {
	p := make([]float32, f.dataWindow.Dx()*f.dataWindow.Dy())
	for i := range p {
		p[i] = v
	}
	if _, ok := f.planes[name]; !ok {
		f.names = append(f.names, name)
	}
	f.planes[name] = p
}

func (f *testField) set(name string, p image.Point, v float32) {
	f.planes[name][Index(p, f.dataWindow)] = v
}

func (f *testField) remove(name string) {
	delete(f.planes, name)
	names := f.names[:0]
	for _, n := range f.names {
		if n != name {
			names = append(names, n)
		}
	}
	f.names = names
}

func (f *testField) DataWindow(context.Context) (image.Rectangle, error) {
	return f.dataWindow, f.err
}

func (f *testField) DataWindowHash(context.Context) (fingerprint.Fingerprint, error) {
	var b fingerprint.Builder
	b.AppendRect(f.dataWindow)
	return b.Sum(), f.err
}

func (f *testField) ChannelNames(context.Context) ([]string, error) {
	return f.names, f.err
}

func (f *testField) tile(scope ChannelScope) []float32 {
	bound := TileBound(scope.TileOrigin)
	out := make([]float32, TilePixels)
	plane, ok := f.planes[scope.Channel]
	if !ok {
		return out
	}
	r := bound.Intersect(f.dataWindow)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := image.Pt(x, y)
			out[Index(p, bound)] = plane[Index(p, f.dataWindow)]
		}
	}
	return out
}

func (f *testField) ChannelData(_ context.Context, scope ChannelScope) (*Buffer, error) {
	f.fetches.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return NewBuffer(f.tile(scope)), nil
}

func (f *testField) ChannelDataHash(_ context.Context, scope ChannelScope) (fingerprint.Fingerprint, error) {
	var b fingerprint.Builder
	b.AppendString(scope.Channel)
	b.AppendPoint(scope.TileOrigin)
	b.AppendFloat32s(f.tile(scope))
	return b.Sum(), f.err
}
