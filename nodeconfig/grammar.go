package nodeconfig

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	configLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `(?:#|//)[^\n]*`},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:[eE][-+]?\d+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Punct", Pattern: `[][{}:,;]`},
	})

	fileParser = participle.MustBuild[fileAST](
		participle.Lexer(configLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// fileAST is the root of a node configuration file.
type fileAST struct {
	Nodes []*nodeAST `parser:"@@*"`
}

// nodeAST is one `Kind "name" { ... }` block.
type nodeAST struct {
	Pos        lexer.Position
	Kind       string         `parser:"@Ident"`
	Name       stringLiteral  `parser:"@String?"`
	Properties []*propertyAST `parser:"'{' ( @@ ( ';' | ',' )? )* '}'"`
}

// propertyAST uses colon syntax (key: value).
type propertyAST struct {
	Pos   lexer.Position
	Key   string    `parser:"@Ident ':'"`
	Value *valueAST `parser:"@@"`
}

// valueAST is a scalar, a bare identifier or a list of numbers.
type valueAST struct {
	Pos    lexer.Position
	Number *float64       `parser:"  @Number"`
	String *stringLiteral `parser:"| @String"`
	Ident  *string        `parser:"| @Ident"`
	List   *listAST       `parser:"| @@"`
}

// listAST captures `[ n, n, ... ]`.
type listAST struct {
	Values []float64 `parser:"'[' ( @Number ( ',' @Number )* ','? )? ']'"`
}

// stringLiteral unquotes Go-style strings on capture.
type stringLiteral string

// Capture implements participle.Capture.
func (s *stringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = stringLiteral(val)
	return nil
}

// describe returns the value as written, for error messages.
func (v *valueAST) describe() string {
	switch {
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'g', -1, 64)
	case v.String != nil:
		return strconv.Quote(string(*v.String))
	case v.Ident != nil:
		return *v.Ident
	case v.List != nil:
		return fmt.Sprint(v.List.Values)
	default:
		return "<empty>"
	}
}
