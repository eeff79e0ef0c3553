package warp

import (
	"fmt"

	"golang.org/x/text/cases"
)

// VectorMode selects how a decoded displacement becomes a source coordinate.
type VectorMode uint8

const (
	// Absolute uses the displacement itself as the source coordinate.
	Absolute VectorMode = iota

	// Relative adds the displacement to the output pixel's own coordinate.
	Relative
)

// String returns the mode name.
func (m VectorMode) String() string {
	switch m {
	case Absolute:
		return "Absolute"
	case Relative:
		return "Relative"
	default:
		return fmt.Sprintf("VectorMode(%d)", uint8(m))
	}
}

// IsValid reports whether m is a defined mode.
func (m VectorMode) IsValid() bool {
	return m <= Relative
}

// MarshalText implements encoding.TextMarshaler.
func (m VectorMode) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVectorMode, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *VectorMode) UnmarshalText(text []byte) error {
	v, err := ParseVectorMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseVectorMode parses a mode name, ignoring case.
func ParseVectorMode(s string) (VectorMode, error) {
	switch fold(s) {
	case "absolute":
		return Absolute, nil
	case "relative":
		return Relative, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidVectorMode, s)
}

// VectorUnits selects the space displacement components are expressed in.
type VectorUnits uint8

const (
	// Screen components are fractions of the display window: 0 maps to its
	// minimum and 1 to its maximum, per axis.
	Screen VectorUnits = iota

	// Pixel components are already in pixels.
	Pixel
)

// String returns the units name.
func (u VectorUnits) String() string {
	switch u {
	case Screen:
		return "Screen"
	case Pixel:
		return "Pixel"
	default:
		return fmt.Sprintf("VectorUnits(%d)", uint8(u))
	}
}

// IsValid reports whether u is a defined unit.
func (u VectorUnits) IsValid() bool {
	return u <= Pixel
}

// MarshalText implements encoding.TextMarshaler.
func (u VectorUnits) MarshalText() ([]byte, error) {
	if !u.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVectorUnits, uint8(u))
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *VectorUnits) UnmarshalText(text []byte) error {
	v, err := ParseVectorUnits(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// ParseVectorUnits parses a units name, ignoring case. "Pixels" is accepted
// as an alias for Pixel.
func ParseVectorUnits(s string) (VectorUnits, error) {
	switch fold(s) {
	case "screen":
		return Screen, nil
	case "pixel", "pixels":
		return Pixel, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidVectorUnits, s)
}

// fold case-folds s for comparison against the lowercase names above.
func fold(s string) string {
	return cases.Fold().String(s)
}
