package warp

import "errors"

// Errors returned while building engines.
var (
	// ErrInvalidVectorMode is returned for an undefined VectorMode.
	ErrInvalidVectorMode = errors.New("warp: invalid vector mode")

	// ErrInvalidVectorUnits is returned for an undefined VectorUnits.
	ErrInvalidVectorUnits = errors.New("warp: invalid vector units")

	// ErrBufferSize is returned when a channel buffer does not hold exactly
	// one sample per pixel of its tile.
	ErrBufferSize = errors.New("warp: channel buffer size does not match tile")

	// ErrSingularTransform is returned when an affine warp cannot be inverted.
	ErrSingularTransform = errors.New("warp: transform is not invertible")
)
