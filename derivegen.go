// Package derivegen generates trait implementations for Rust data types.
//
// Derivegen reads struct, enum and union declarations together with their
// #[derive(...)] lists and helper attributes, and writes the impl blocks
// those derives stand for. It never runs user code: everything it knows
// comes from the declarations.
//
//	// source:
//	#[derive(Display, PartialEq)]
//	#[display("{x}:{y}")]
//	struct Point { x: i32, y: i32 }
//
//	// generated: (simplified)
//	impl derive_more::core::fmt::Display for Point {
//	    fn fmt(&self, __derive_more_f: &mut Formatter<'_>) -> Result {
//	        let x = &self.x;
//	        let y = &self.y;
//	        write!(__derive_more_f, "{x}:{y}")
//	    }
//	}
//
// Run the derivegen command to write one "_derive.rs" file next to every
// input file:
//
//	go run github.com/sublee/derivegen/cmd/derivegen src
//
// # Derives
//
// [Derives] lists the supported traits. PartialEq and Eq compare fields
// structurally; Display, Debug and the other formatting traits accept
// format strings; AsRef, AsMut, Deref and DerefMut forward to a field;
// Error reports a source error.
//
// Every derive reads one attribute named after its trait in snake case:
// Display reads #[display(...)] and LowerHex reads #[lower_hex(...)].
//
//	#[derive(PartialEq)]
//	struct Cached {
//	    key: String,
//	    #[partial_eq(skip)]
//	    hits: u64,
//	}
//
// # Diagnostics
//
// Misuse of attributes is reported with the position of the offending
// token and a hint:
//
//	point.rs:3:8: cannot infer the format for `Display`: the struct has 2 fields
//		use `#[display("...", ...)]` to specify the formatting, or mark one field with `#[display]`
//
// A declaration with any error produces no code.
package derivegen

import (
	"context"
	"go/token"
	"os"

	"github.com/sublee/derivegen/internal/derive"
	derivegeninternal "github.com/sublee/derivegen/internal/derivegen"
	"github.com/sublee/derivegen/internal/syntax"
)

// Option configures [Expand] and [ExpandFile].
type Option func(*derivegeninternal.Config)

// WithCrate sets the path of the runtime crate emitted code refers to. The
// default is "derive_more".
func WithCrate(path string) Option {
	return func(c *derivegeninternal.Config) { c.Crate = path }
}

// WithDerives restricts expansion to the named derives.
func WithDerives(names ...string) Option {
	return func(c *derivegeninternal.Config) { c.Derives = names }
}

// WithHeader adds text after the generated-code notice.
func WithHeader(header string) Option {
	return func(c *derivegeninternal.Config) { c.Header = header }
}

// Expand generates the impls of every declaration in src. filename is used
// in positions of errors and in the header of the output. It returns nil
// code when no declaration requests a supported derive.
func Expand(filename string, src []byte, opts ...Option) ([]byte, error) {
	var cfg derivegeninternal.Config
	for _, opt := range opts {
		opt(&cfg)
	}

	file, err := syntax.ParseFile(token.NewFileSet(), filename, src)
	if err != nil {
		return nil, err
	}
	g, err := derivegeninternal.New(file, cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := g.Build(context.Background()); err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

// ExpandFile is [Expand] on the content of the file at path.
func ExpandFile(path string, opts ...Option) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Expand(path, src, opts...)
}

// Derives returns the names of the supported derives, sorted.
func Derives() []string {
	return derive.Names()
}
