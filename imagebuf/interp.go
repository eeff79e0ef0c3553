package imagebuf

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/math/f32"
)

// InterpolationMode defines how a Sampler reconstructs between pixels.
type InterpolationMode uint8

const (
	// InterpNearest selects the pixel containing the sample position.
	InterpNearest InterpolationMode = iota

	// InterpBilinear interpolates linearly between the 4 nearest pixel
	// centres.
	InterpBilinear

	// InterpBicubic uses Catmull-Rom weights over a 4x4 neighbourhood.
	InterpBicubic
)

// String returns a string representation of the interpolation mode.
func (m InterpolationMode) String() string {
	switch m {
	case InterpNearest:
		return "Nearest"
	case InterpBilinear:
		return "Bilinear"
	case InterpBicubic:
		return "Bicubic"
	default:
		return "Unknown"
	}
}

// ParseInterpolation parses "nearest", "bilinear" or "bicubic", ignoring
// case.
func ParseInterpolation(s string) (InterpolationMode, error) {
	switch strings.ToLower(s) {
	case "nearest":
		return InterpNearest, nil
	case "bilinear":
		return InterpBilinear, nil
	case "bicubic":
		return InterpBicubic, nil
	default:
		return 0, fmt.Errorf("imagebuf: unknown interpolation %q", s)
	}
}

// Sampler reads channel values at continuous pixel-space positions.
//
// Pixel (x, y) covers [x, x+1) x [y, y+1); its centre (x+0.5, y+0.5) samples
// the stored value exactly under every mode. Pixels outside the data window
// are black, so filters blend towards zero at the edges.
//
// A Sampler is safe for concurrent use as long as the image is not written.
type Sampler struct {
	planes [][]float32
	bounds image.Rectangle
	mode   InterpolationMode
}

// NewSampler returns a sampler over the named channels of img. Missing
// channels sample as zero.
func NewSampler(img *Image, mode InterpolationMode, channels ...string) *Sampler {
	planes := make([][]float32, len(channels))
	for i, name := range channels {
		planes[i] = img.Plane(name)
	}
	return &Sampler{planes: planes, bounds: img.Bounds(), mode: mode}
}

// Channels returns the number of values Sample writes.
func (s *Sampler) Channels() int { return len(s.planes) }

// Sample writes one value per channel at p into dst, which must have room
// for Channels values.
func (s *Sampler) Sample(p f32.Vec2, dst []float32) {
	switch s.mode {
	case InterpNearest:
		s.sampleNearest(p, dst)
	case InterpBicubic:
		s.sampleBicubic(p, dst)
	default:
		s.sampleBilinear(p, dst)
	}
}

// texel returns the sample of plane c at pixel (x, y), zero outside.
func (s *Sampler) texel(c, x, y int) float64 {
	plane := s.planes[c]
	if plane == nil || x < s.bounds.Min.X || x >= s.bounds.Max.X || y < s.bounds.Min.Y || y >= s.bounds.Max.Y {
		return 0
	}
	return float64(plane[(y-s.bounds.Min.Y)*s.bounds.Dx()+(x-s.bounds.Min.X)])
}

func (s *Sampler) sampleNearest(p f32.Vec2, dst []float32) {
	x := int(math.Floor(float64(p[0])))
	y := int(math.Floor(float64(p[1])))
	for c := range s.planes {
		dst[c] = float32(s.texel(c, x, y))
	}
}

func (s *Sampler) sampleBilinear(p f32.Vec2, dst []float32) {
	fx := float64(p[0]) - 0.5
	fy := float64(p[1]) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	for c := range s.planes {
		v := lerp2D(
			s.texel(c, x0, y0), s.texel(c, x0+1, y0),
			s.texel(c, x0, y0+1), s.texel(c, x0+1, y0+1),
			tx, ty)
		dst[c] = float32(v)
	}
}

func (s *Sampler) sampleBicubic(p f32.Vec2, dst []float32) {
	fx := float64(p[0]) - 0.5
	fy := float64(p[1]) - 0.5

	x := int(math.Floor(fx))
	y := int(math.Floor(fy))
	tx := fx - float64(x)
	ty := fy - float64(y)

	var vals [4][4]float64
	for c := range s.planes {
		for dy := -1; dy <= 2; dy++ {
			for dx := -1; dx <= 2; dx++ {
				vals[dy+1][dx+1] = s.texel(c, x+dx, y+dy)
			}
		}
		dst[c] = float32(bicubicInterp(vals, tx, ty))
	}
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	v0 := lerp(v00, v10, tx)
	v1 := lerp(v01, v11, tx)
	return lerp(v0, v1, ty)
}

// cubicWeight computes the Catmull-Rom cubic weight for distance t.
func cubicWeight(t float64) float64 {
	absT := math.Abs(t)
	if absT < 1 {
		return 1.5*absT*absT*absT - 2.5*absT*absT + 1.0
	}
	if absT < 2 {
		return -0.5*absT*absT*absT + 2.5*absT*absT - 4.0*absT + 2.0
	}
	return 0
}

// bicubicInterp performs bicubic interpolation on a 4x4 grid using Catmull-Rom weights.
func bicubicInterp(vals [4][4]float64, tx, ty float64) float64 {
	wx := [4]float64{
		cubicWeight(tx + 1),
		cubicWeight(tx),
		cubicWeight(tx - 1),
		cubicWeight(tx - 2),
	}
	wy := [4]float64{
		cubicWeight(ty + 1),
		cubicWeight(ty),
		cubicWeight(ty - 1),
		cubicWeight(ty - 2),
	}

	var result float64
	for i := range 4 {
		for j := range 4 {
			result += vals[i][j] * wx[j] * wy[i]
		}
	}
	return result
}
