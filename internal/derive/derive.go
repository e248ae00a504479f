// Package derive generates trait implementations for declarations.
//
// Every derive reads its attributes through [fields.Enumerate], infers its
// where-clause with [bound.Set] and writes impl blocks with a
// [codefmt.Writer]. Generated lines carry no indentation; [Expand]
// re-indents the whole output.
package derive

import (
	"bytes"
	"errors"
	"go/token"
	"io"
	"slices"
	"strings"

	"github.com/emirpasic/gods/maps/hashbidimap"

	"github.com/sublee/derivegen/internal/bound"
	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/fmtstr"
	"github.com/sublee/derivegen/internal/lcs"
	"github.com/sublee/derivegen/internal/syntax"
)

// DefaultCrate is the runtime crate emitted paths start with.
const DefaultCrate = "derive_more"

// Config configures the emitted code.
type Config struct {
	// Crate is the path of the runtime crate. Core library items are
	// reached through "{Crate}::core".
	Crate string
}

func (c Config) crate() string {
	if c.Crate == "" {
		return DefaultCrate
	}
	return c.Crate
}

func (c Config) core() string    { return c.crate() + "::core" }
func (c Config) private() string { return c.crate() + "::__private" }

// Derive is a derivable trait.
type Derive struct {
	// Name is the trait name as written in #[derive(...)].
	Name string
	// Attr is the attribute name the derive reads.
	Attr string

	expand func(ctx *Context, w *codefmt.Writer) error
}

var (
	derives = map[string]*Derive{}

	// names maps trait names to attribute names.
	names = hashbidimap.New()
)

func init() {
	register("PartialEq", expandPartialEq)
	register("Eq", expandEq)
	for _, t := range fmtstr.Traits() {
		if t != fmtstr.Debug {
			register(t.String(), fmtTrait(t))
		}
	}
	register("Debug", expandDebug)
	register("AsRef", asRef.expandAs)
	register("AsMut", asMut.expandAs)
	register("Deref", deref.expandDeref)
	register("DerefMut", derefMut.expandDeref)
	register("Error", expandError)
}

func register(name string, expand func(*Context, *codefmt.Writer) error) {
	d := &Derive{Name: name, Attr: AttrName(name), expand: expand}
	derives[name] = d
	names.Put(d.Name, d.Attr)
}

// AttrName converts a trait name to its attribute name: "LowerHex" to
// "lower_hex".
func AttrName(trait string) string {
	return lcs.SnakeCase(trait)
}

// Lookup finds a derive by its trait name or its attribute name.
func Lookup(name string) (*Derive, bool) {
	if d, ok := derives[name]; ok {
		return d, true
	}
	if trait, ok := names.GetKey(name); ok {
		return derives[trait.(string)], true
	}
	return nil, false
}

// Names returns the trait names of every derive, sorted.
func Names() []string {
	var out []string
	for _, k := range names.Keys() {
		out = append(out, k.(string))
	}
	slices.Sort(out)
	return out
}

// Context is the state of one derive expanding one declaration.
type Context struct {
	Fset *token.FileSet
	Decl *syntax.Decl
	Config

	derive *Derive
}

func (ctx *Context) errorf(poser codefmt.Poser, format string, args ...any) error {
	return codefmt.Errorf(ctx.Fset, poser, format, args...)
}

// selfType renders the implementor type: "Point<'a, T>".
func (ctx *Context) selfType() string {
	return ctx.Decl.Name + ctx.Decl.Generics.Ty()
}

// shapeError rejects the declaration kind.
func (ctx *Context) shapeError(what string) error {
	return ctx.errorf(codefmt.Span(ctx.Decl.KindPos(), ctx.Decl.Ident().End()),
		"`%s` cannot be derived for %s", ctx.derive.Name, what)
}

// Expand writes the impls of d for decl to w, re-indented.
func (d *Derive) Expand(fset *token.FileSet, decl *syntax.Decl, cfg Config, w io.Writer) error {
	ctx := &Context{Fset: fset, Decl: decl, Config: cfg, derive: d}

	var buf bytes.Buffer
	cw := codefmt.NewWriter(&buf, codefmt.New(fset))
	if err := d.expand(ctx, cw); err != nil {
		return err
	}
	_, err := w.Write(codefmt.Indent(buf.Bytes()))
	return err
}

// namespace reserves every name already in scope of an impl on the
// declaration.
func (ctx *Context) namespace() codefmt.NS {
	var names []string
	for _, p := range ctx.Decl.Generics.Params {
		names = append(names, strings.TrimPrefix(p.Name, "'"))
	}
	return codefmt.NewNS(names...)
}

// impl is an impl block to write. An empty trait writes an inherent impl.
type impl struct {
	attrs    []string
	generics syntax.Generics
	trait    string
	where    []string
	body     func(w *codefmt.Writer)
}

// where joins the declared where-clause with inferred predicates.
func (ctx *Context) where(set *bound.Set) []string {
	var preds []string
	for _, p := range ctx.Decl.Generics.Where {
		preds = append(preds, p.Code())
	}
	if set != nil {
		for _, p := range set.Predicates() {
			if !slices.Contains(preds, p) {
				preds = append(preds, p)
			}
		}
	}
	return preds
}

func (ctx *Context) writeImpl(w *codefmt.Writer, im impl) {
	for _, a := range im.attrs {
		w.Printf("%s\n", a)
	}
	w.Printf("#[automatically_derived]\n")
	if im.trait == "" {
		w.Printf("impl%s %s", im.generics.Impl(), ctx.selfType())
	} else {
		w.Printf("impl%s %s for %s", im.generics.Impl(), im.trait, ctx.selfType())
	}
	if len(im.where) == 0 {
		w.Printf(" {\n")
	} else {
		w.Printf("\nwhere\n")
		for _, p := range im.where {
			w.Printf("%s%s,\n", codefmt.IndentUnit, p)
		}
		w.Printf("{\n")
	}
	im.body(w)
	w.Printf("}\n")
}

// skip is returned by try* helpers which do not apply to the input.
var skip = errors.New("skip")

// quote renders s as a string literal.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// unraw drops the "r#" prefix of a raw identifier.
func unraw(name string) string {
	return strings.TrimPrefix(name, "r#")
}
