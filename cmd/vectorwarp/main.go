// Command vectorwarp warps an image through a vector field or an affine
// transform.
//
// Usage:
//
//	vectorwarp -in plate.png -vectors stmap.tif -out warped.png
//	vectorwarp -in plate.png -vectors motion.png -mode Relative -units Pixel -out warped.png
//	vectorwarp -in plate.png -config nodes.warp -node spin -out spun.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/warp"
	"github.com/gogpu/warp/imagebuf"
	"github.com/gogpu/warp/nodeconfig"
	"github.com/gogpu/warp/pipeline"
)

type config struct {
	input   string
	vectors string
	output  string
	nodes   string
	node    string
	mode    warp.VectorMode
	units   warp.VectorUnits
	filter  string
	workers int
	fit     bool
	verbose bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "", "image to warp (required)")
	flag.StringVar(&cfg.vectors, "vectors", "", "vector image driving a VectorWarp")
	flag.StringVar(&cfg.output, "out", "warped.png", "output file (.png, .tif, .bmp, .jpg)")
	flag.StringVar(&cfg.nodes, "config", "", "node configuration file")
	flag.StringVar(&cfg.node, "node", "", "node to evaluate from -config")
	flag.TextVar(&cfg.mode, "mode", warp.Absolute, "vector mode: Absolute or Relative")
	flag.TextVar(&cfg.units, "units", warp.Screen, "vector units: Screen or Pixel")
	flag.StringVar(&cfg.filter, "filter", "bilinear", "resampling filter: nearest, bilinear or bicubic")
	flag.IntVar(&cfg.workers, "workers", 0, "tile workers (0 = GOMAXPROCS)")
	flag.BoolVar(&cfg.fit, "fit", true, "rescale the vector image to the input size")
	flag.BoolVar(&cfg.verbose, "v", false, "log per-tile diagnostics")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	warp.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("vectorwarp failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	if cfg.input == "" {
		flag.Usage()
		return errors.New("-in is required")
	}

	src, err := imagebuf.Load(cfg.input)
	if err != nil {
		return err
	}

	filter, err := imagebuf.ParseInterpolation(cfg.filter)
	if err != nil {
		return err
	}

	w, window, filter, err := buildWarp(ctx, cfg, src, filter)
	if err != nil {
		return err
	}

	dst, err := imagebuf.New(src.PixelFormat(), window)
	if err != nil {
		return err
	}

	warper := pipeline.New(w, imagebuf.NewSampler(src, filter, imagebuf.RGBA...), pipeline.WithWorkers(cfg.workers))
	defer warper.Close()

	if err := warper.Render(ctx, dst, imagebuf.RGBA...); err != nil {
		return err
	}
	if err := dst.Save(cfg.output); err != nil {
		return err
	}

	warp.Logger().Info("saved", slog.String("path", cfg.output), slog.Any("bounds", window))
	return nil
}

// buildWarp returns the warp to evaluate, the output window and the filter,
// taking node plugs from -config when -node is set.
func buildWarp(ctx context.Context, cfg config, src *imagebuf.Image, filter imagebuf.InterpolationMode) (warp.Warp, image.Rectangle, imagebuf.InterpolationMode, error) {
	opts := []warp.Option{warp.WithVectorMode(cfg.mode), warp.WithVectorUnits(cfg.units)}

	if cfg.node != "" {
		if cfg.nodes == "" {
			return nil, image.Rectangle{}, 0, errors.New("-node requires -config")
		}
		nodes, err := nodeconfig.Load(cfg.nodes)
		if err != nil {
			return nil, image.Rectangle{}, 0, err
		}
		if n, ok := nodes.AffineWarp(cfg.node); ok {
			return warp.NewAffineWarp(n.Transform()), src.Bounds(), n.Filter, nil
		}
		n, ok := nodes.VectorWarp(cfg.node)
		if !ok {
			return nil, image.Rectangle{}, 0, fmt.Errorf("no node %q in %s", cfg.node, cfg.nodes)
		}
		opts, filter = n.Options(), n.Filter
	}

	if cfg.vectors == "" {
		return nil, image.Rectangle{}, 0, errors.New("-vectors is required for a VectorWarp")
	}

	var (
		vectors *imagebuf.Image
		err     error
	)
	if cfg.fit {
		vectors, err = imagebuf.LoadFitted(cfg.vectors, src.Bounds().Size())
	} else {
		vectors, err = imagebuf.Load(cfg.vectors)
	}
	if err != nil {
		return nil, image.Rectangle{}, 0, err
	}

	w := warp.NewVectorWarp(src, vectors, opts...)
	window, err := w.DataWindow(ctx)
	if err != nil {
		return nil, image.Rectangle{}, 0, err
	}
	return w, window, filter, nil
}
