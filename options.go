package warp

// Option configures a VectorWarp during creation.
//
// Example:
//
//	w := warp.NewVectorWarp(in, vectors,
//	    warp.WithVectorMode(warp.Relative),
//	    warp.WithVectorUnits(warp.Pixel),
//	)
type Option func(*vectorWarpOptions)

type vectorWarpOptions struct {
	mode  VectorMode
	units VectorUnits
}

// defaultOptions matches the node defaults: Absolute, Screen.
func defaultOptions() vectorWarpOptions {
	return vectorWarpOptions{
		mode:  Absolute,
		units: Screen,
	}
}

// WithVectorMode sets how displacements become source coordinates.
func WithVectorMode(m VectorMode) Option {
	return func(o *vectorWarpOptions) {
		o.mode = m
	}
}

// WithVectorUnits sets the space displacement components are expressed in.
func WithVectorUnits(u VectorUnits) Option {
	return func(o *vectorWarpOptions) {
		o.units = u
	}
}
