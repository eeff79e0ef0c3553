package imagebuf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/gogpu/warp"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the file format is not supported.
	ErrUnsupportedFormat = errors.New("imagebuf: unsupported format")
)

// Load reads an image file. PNG, JPEG, TIFF and BMP are recognised by
// content.
func Load(path string) (*Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imagebuf: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// LoadFitted reads an image file and rescales it to size before conversion.
func LoadFitted(path string, size image.Point) (*Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imagebuf: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imagebuf: decode: %w", err)
	}
	return FromImage(Fit(img, size))
}

// Decode decodes an image, auto-detecting the format.
func Decode(r io.Reader) (*Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imagebuf: decode: %w", err)
	}
	out, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	warp.Logger().Debug("image decoded",
		"format", format,
		"bounds", img.Bounds())
	return out, nil
}

// FromImage converts a standard library image into a planar RGBA image with
// non-premultiplied samples in [0, 1]. The data and display windows are the
// source bounds.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	out, err := NewRGBA(b)
	if err != nil {
		return nil, err
	}

	// Normalise any source model to 16-bit non-premultiplied.
	nrgba, ok := src.(*image.NRGBA64)
	if !ok {
		nrgba = image.NewNRGBA64(b)
		draw.Draw(nrgba, b, src, b.Min, draw.Src)
	}

	r, g, bl, a := out.planes[ChannelR], out.planes[ChannelG], out.planes[ChannelB], out.planes[ChannelA]
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := nrgba.NRGBA64At(x, y)
			r[i] = float32(c.R) / 0xffff
			g[i] = float32(c.G) / 0xffff
			bl[i] = float32(c.B) / 0xffff
			a[i] = float32(c.A) / 0xffff
			i++
		}
	}
	return out, nil
}

// Fit rescales src to size with Catmull-Rom filtering. It is used to match
// a vector image to the resolution of the image it warps.
func Fit(src image.Image, size image.Point) image.Image {
	if src.Bounds().Size() == size {
		return src
	}
	dst := image.NewNRGBA64(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ToImage converts the R, G, B and A channels into a 16-bit
// non-premultiplied image. Missing colour channels read as zero and a
// missing alpha channel as opaque. Samples are clamped to [0, 1].
func (img *Image) ToImage() *image.NRGBA64 {
	b := img.dataWindow
	out := image.NewNRGBA64(b)
	r, g, bl, a := img.planes[ChannelR], img.planes[ChannelG], img.planes[ChannelB], img.planes[ChannelA]

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			alpha := uint16(0xffff)
			if a != nil {
				alpha = quantize(a[i])
			}
			out.SetNRGBA64(x, y, color.NRGBA64{
				R: sample(r, i),
				G: sample(g, i),
				B: sample(bl, i),
				A: alpha,
			})
			i++
		}
	}
	return out
}

func sample(plane []float32, i int) uint16 {
	if plane == nil {
		return 0
	}
	return quantize(plane[i])
}

func quantize(v float32) uint16 {
	if v <= 0 || math.IsNaN(float64(v)) {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

// encodeFunc writes an image in one file format.
type encodeFunc func(w io.Writer, m image.Image) error

// encoderFor returns the encoder for a format name or file extension.
func encoderFor(format string) (encodeFunc, error) {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode, nil
	case "jpg", "jpeg":
		return func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
		}, nil
	case "tif", "tiff":
		return func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	case "bmp":
		return bmp.Encode, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Encode writes the image in the named format: "png", "jpeg", "tiff" or
// "bmp".
func (img *Image) Encode(w io.Writer, format string) error {
	encode, err := encoderFor(format)
	if err != nil {
		return err
	}
	if err := encode(w, img.ToImage()); err != nil {
		return fmt.Errorf("imagebuf: encode %s: %w", format, err)
	}
	return nil
}

// Save writes the image to path, choosing the format from the extension.
//
// The image is written to a temporary file next to path and renamed over it
// once complete, so an existing file is left untouched when Save fails.
func (img *Image) Save(path string) error {
	path = filepath.Clean(path)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return fmt.Errorf("%w: no extension in %q", ErrUnsupportedFormat, path)
	}
	encode, err := encoderFor(ext)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("imagebuf: create file: %w", err)
	}
	tmp := f.Name()
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("imagebuf: create file: %w", err)
	}

	if err := encode(f, img.ToImage()); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("imagebuf: encode %s: %w", ext, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("imagebuf: write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("imagebuf: write file: %w", err)
	}
	return nil
}
