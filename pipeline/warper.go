// Package pipeline evaluates a warp over an output window.
//
// A Warper splits the window into engine tiles, obtains each tile's engine
// through a shared warp.EngineCache, maps every output pixel centre and asks
// a Sampler for the source colour at the mapped position. Pixels the engine
// reports as invalid are written as zero. Tiles are evaluated concurrently
// on a worker pool.
//
// Filtering is entirely the Sampler's business; imagebuf.Sampler is the
// stock implementation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/warp"
	"github.com/gogpu/warp/imagebuf"
	"github.com/gogpu/warp/internal/parallel"
)

// ErrChannelCount is returned when the sampler and destination channel
// counts disagree.
var ErrChannelCount = errors.New("pipeline: sampler channel count mismatch")

// Sampler reads source values at continuous pixel-space positions.
// Implementations must be safe for concurrent use.
type Sampler interface {
	// Channels returns the number of values Sample writes.
	Channels() int

	// Sample writes Channels values at p into dst.
	Sample(p f32.Vec2, dst []float32)
}

// Option configures a Warper.
type Option func(*options)

type options struct {
	engines *warp.EngineCache
	workers int
}

// WithEngineCache shares an engine cache between Warpers. By default each
// Warper owns a private cache.
func WithEngineCache(c *warp.EngineCache) Option {
	return func(o *options) {
		o.engines = c
	}
}

// WithWorkers sets the number of tile workers. Zero or negative means
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// dataWindower is implemented by warps whose output is bounded, such as
// warp.VectorWarp.
type dataWindower interface {
	DataWindow(ctx context.Context) (image.Rectangle, error)
}

// Warper renders a warp through a sampler.
//
// Warper is safe for concurrent use. Call Close to stop its workers.
type Warper struct {
	warp    warp.Warp
	sampler Sampler
	engines *warp.EngineCache
	pool    *parallel.WorkerPool
}

// New creates a Warper that maps through w and reads colours from s.
func New(w warp.Warp, s Sampler, opts ...Option) *Warper {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.engines == nil {
		o.engines = warp.NewEngineCache(0)
	}
	return &Warper{
		warp:    w,
		sampler: s,
		engines: o.engines,
		pool:    parallel.NewWorkerPool(o.workers),
	}
}

// Close stops the worker pool. The Warper must not be used afterwards.
func (w *Warper) Close() { w.pool.Close() }

// Engines returns the engine cache used by w.
func (w *Warper) Engines() *warp.EngineCache { return w.engines }

// Render fills channels of dst over its whole data window. The sampler's
// i-th value is written to channels[i]; missing channels are added.
//
// When the warp reports a data window, pixels of dst outside it are written
// as zero without consulting the engine.
func (w *Warper) Render(ctx context.Context, dst *imagebuf.Image, channels ...string) error {
	if len(channels) != w.sampler.Channels() {
		return fmt.Errorf("%w: %d destination channels, sampler has %d",
			ErrChannelCount, len(channels), w.sampler.Channels())
	}

	planes := make([][]float32, len(channels))
	for i, name := range channels {
		dst.AddChannel(name)
		planes[i] = dst.Plane(name)
	}
	defer dst.Invalidate()

	window := dst.Bounds()
	valid := window
	if dw, ok := w.warp.(dataWindower); ok {
		r, err := dw.DataWindow(ctx)
		if err != nil {
			return fmt.Errorf("pipeline: data window: %w", err)
		}
		valid = r.Intersect(window)
	}

	origins := parallel.TileOrigins(window)
	tasks := make([]parallel.Task, len(origins))
	for i, origin := range origins {
		tasks[i] = func(ctx context.Context) error {
			return w.renderTile(ctx, origin, window, valid, planes)
		}
	}

	start := time.Now()
	err := w.pool.ExecuteAll(ctx, tasks)
	stats := w.engines.Stats()
	if err != nil {
		warp.Logger().Warn("warp render failed",
			slog.Any("window", window),
			slog.String("error", err.Error()))
		return err
	}

	warp.Logger().Info("warp rendered",
		slog.Any("window", window),
		slog.Int("tiles", len(origins)),
		slog.Duration("elapsed", time.Since(start)),
		slog.Uint64("cacheHits", stats.Hits),
		slog.Uint64("cacheMisses", stats.Misses))
	return nil
}

// renderTile evaluates the part of one engine tile inside window. Pixels
// outside valid are zeroed.
func (w *Warper) renderTile(ctx context.Context, origin image.Point, window, valid image.Rectangle, planes [][]float32) error {
	region := parallel.TileRegion(origin, window)
	if region.Intersect(valid).Empty() {
		zeroRegion(region, window, planes)
		return nil
	}

	engine, err := w.engines.Engine(ctx, w.warp, origin)
	if err != nil {
		return fmt.Errorf("pipeline: tile %v: %w", origin, err)
	}

	px := make([]float32, len(planes))
	for y := region.Min.Y; y < region.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		i := warp.Index(image.Pt(region.Min.X, y), window)
		for x := region.Min.X; x < region.Max.X; x, i = x+1, i+1 {
			if !image.Pt(x, y).In(valid) {
				for c := range planes {
					planes[c][i] = 0
				}
				continue
			}
			src, ok := engine.Map(f32.Vec2{float32(x) + 0.5, float32(y) + 0.5})
			if !ok {
				for c := range planes {
					planes[c][i] = 0
				}
				continue
			}
			w.sampler.Sample(src, px)
			for c := range planes {
				planes[c][i] = px[c]
			}
		}
	}
	return nil
}

func zeroRegion(region, window image.Rectangle, planes [][]float32) {
	for y := region.Min.Y; y < region.Max.Y; y++ {
		i := warp.Index(image.Pt(region.Min.X, y), window)
		for c := range planes {
			clear(planes[c][i : i+region.Dx()])
		}
	}
}
