// Package nodeconfig reads warp node configuration files.
//
// A file is a sequence of node blocks:
//
//	# displacement from a vector pass
//	VectorWarp "fromMotion" {
//	    vectorMode: Relative
//	    vectorUnits: Pixel
//	    filter: bilinear
//	}
//
//	AffineWarp "spin" {
//	    translate: [10, 5]
//	    rotate: 45        // degrees
//	    scale: [2, 2]
//	    pivot: [32, 32]
//	}
//
// Keys are case-sensitive; enum values are not. Errors report the position
// of the offending token.
package nodeconfig

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/gogpu/warp"
	"github.com/gogpu/warp/imagebuf"
)

// Node kinds.
const (
	KindVectorWarp = "VectorWarp"
	KindAffineWarp = "AffineWarp"
)

// ErrConfig is wrapped by every semantic configuration error.
var ErrConfig = errors.New("nodeconfig: invalid configuration")

// VectorWarp holds the plugs of a VectorWarp node.
type VectorWarp struct {
	Name   string
	Mode   warp.VectorMode
	Units  warp.VectorUnits
	Filter imagebuf.InterpolationMode
}

// Options returns the node's plugs as warp options.
func (n VectorWarp) Options() []warp.Option {
	return []warp.Option{warp.WithVectorMode(n.Mode), warp.WithVectorUnits(n.Units)}
}

// AffineWarp holds the plugs of an AffineWarp node.
type AffineWarp struct {
	Name   string
	Filter imagebuf.InterpolationMode

	Translate [2]float64
	Rotate    float64 // degrees; positive turns clockwise on screen (y down)
	Scale     [2]float64
	Pivot     [2]float64
}

// Transform composes the plugs into one matrix: scale and rotation about
// the pivot, followed by the translation.
func (n AffineWarp) Transform() warp.Affine {
	return warp.Translate(n.Translate[0]+n.Pivot[0], n.Translate[1]+n.Pivot[1]).
		Multiply(warp.Rotate(n.Rotate * math.Pi / 180)).
		Multiply(warp.Scale(n.Scale[0], n.Scale[1])).
		Multiply(warp.Translate(-n.Pivot[0], -n.Pivot[1]))
}

// Config is a parsed configuration file. Nodes keep file order.
type Config struct {
	VectorWarps []VectorWarp
	AffineWarps []AffineWarp
}

// VectorWarp returns the VectorWarp node called name.
func (c *Config) VectorWarp(name string) (VectorWarp, bool) {
	for _, n := range c.VectorWarps {
		if n.Name == name {
			return n, true
		}
	}
	return VectorWarp{}, false
}

// AffineWarp returns the AffineWarp node called name.
func (c *Config) AffineWarp(name string) (AffineWarp, bool) {
	for _, n := range c.AffineWarps {
		if n.Name == name {
			return n, true
		}
	}
	return AffineWarp{}, false
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("nodeconfig: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(path, f)
}

// Parse parses a configuration read from r. filename is used in positions.
func Parse(filename string, r io.Reader) (*Config, error) {
	ast, err := fileParser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("nodeconfig: %w", err)
	}
	return build(ast)
}

// ParseString parses a configuration held in a string.
func ParseString(filename, input string) (*Config, error) {
	ast, err := fileParser.ParseString(filename, input)
	if err != nil {
		return nil, fmt.Errorf("nodeconfig: %w", err)
	}
	return build(ast)
}

func errorf(pos lexer.Position, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrConfig, pos, fmt.Sprintf(format, args...))
}

func build(ast *fileAST) (*Config, error) {
	cfg := &Config{}
	names := make(map[string]lexer.Position)

	for _, node := range ast.Nodes {
		name := string(node.Name)
		if name != "" {
			if prev, dup := names[name]; dup {
				return nil, errorf(node.Pos, "node %q already defined at %s", name, prev)
			}
			names[name] = node.Pos
		}

		switch node.Kind {
		case KindVectorWarp:
			n, err := buildVectorWarp(name, node.Properties)
			if err != nil {
				return nil, err
			}
			cfg.VectorWarps = append(cfg.VectorWarps, n)
		case KindAffineWarp:
			n, err := buildAffineWarp(name, node.Properties)
			if err != nil {
				return nil, err
			}
			cfg.AffineWarps = append(cfg.AffineWarps, n)
		default:
			return nil, errorf(node.Pos, "unknown node kind %q", node.Kind)
		}
	}
	return cfg, nil
}

func buildVectorWarp(name string, props []*propertyAST) (VectorWarp, error) {
	n := VectorWarp{Name: name, Mode: warp.Absolute, Units: warp.Screen, Filter: imagebuf.InterpBilinear}
	seen := make(map[string]bool)

	for _, p := range props {
		if seen[p.Key] {
			return n, errorf(p.Pos, "duplicate key %q", p.Key)
		}
		seen[p.Key] = true

		var err error
		switch p.Key {
		case "vectorMode":
			var s string
			if s, err = word(p); err == nil {
				n.Mode, err = warp.ParseVectorMode(s)
			}
		case "vectorUnits":
			var s string
			if s, err = word(p); err == nil {
				n.Units, err = warp.ParseVectorUnits(s)
			}
		case "filter":
			n.Filter, err = filter(p)
		default:
			return n, errorf(p.Pos, "unknown %s key %q", KindVectorWarp, p.Key)
		}
		if err != nil {
			return n, errorf(p.Value.Pos, "%s: %v", p.Key, err)
		}
	}
	return n, nil
}

func buildAffineWarp(name string, props []*propertyAST) (AffineWarp, error) {
	n := AffineWarp{Name: name, Scale: [2]float64{1, 1}, Filter: imagebuf.InterpBilinear}
	seen := make(map[string]bool)

	for _, p := range props {
		if seen[p.Key] {
			return n, errorf(p.Pos, "duplicate key %q", p.Key)
		}
		seen[p.Key] = true

		var err error
		switch p.Key {
		case "translate":
			n.Translate, err = vec2(p, false)
		case "rotate":
			n.Rotate, err = number(p)
		case "scale":
			n.Scale, err = vec2(p, true)
		case "pivot":
			n.Pivot, err = vec2(p, false)
		case "filter":
			n.Filter, err = filter(p)
		default:
			return n, errorf(p.Pos, "unknown %s key %q", KindAffineWarp, p.Key)
		}
		if err != nil {
			return n, errorf(p.Value.Pos, "%s: %v", p.Key, err)
		}
	}
	return n, nil
}

// word accepts a bare identifier or a string.
func word(p *propertyAST) (string, error) {
	switch {
	case p.Value.Ident != nil:
		return *p.Value.Ident, nil
	case p.Value.String != nil:
		return string(*p.Value.String), nil
	default:
		return "", fmt.Errorf("want a name, got %s", p.Value.describe())
	}
}

func number(p *propertyAST) (float64, error) {
	if p.Value.Number == nil {
		return 0, fmt.Errorf("want a number, got %s", p.Value.describe())
	}
	return *p.Value.Number, nil
}

// vec2 accepts [x, y]; uniform also accepts a single number for both axes.
func vec2(p *propertyAST, uniform bool) ([2]float64, error) {
	if uniform && p.Value.Number != nil {
		return [2]float64{*p.Value.Number, *p.Value.Number}, nil
	}
	if p.Value.List == nil || len(p.Value.List.Values) != 2 {
		return [2]float64{}, fmt.Errorf("want [x, y], got %s", p.Value.describe())
	}
	return [2]float64{p.Value.List.Values[0], p.Value.List.Values[1]}, nil
}

func filter(p *propertyAST) (imagebuf.InterpolationMode, error) {
	s, err := word(p)
	if err != nil {
		return 0, err
	}
	return imagebuf.ParseInterpolation(s)
}
