// Package attr parses derive directives: the contents of attributes such as
// #[display("...", args)] or #[eq(skip)].
package attr

import (
	"errors"
	"go/token"
	"slices"
	"strings"

	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/fmtstr"
	"github.com/sublee/derivegen/internal/lcs"
	"github.com/sublee/derivegen/internal/syntax"
)

// Kind is the kind of a directive.
type Kind int

const (
	KindEmpty Kind = iota
	KindFormat
	KindSkip
	KindForward
	KindTypes
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindSkip:
		return "skip"
	case KindForward:
		return "forward"
	case KindTypes:
		return "types"
	}
	return "empty"
}

// Directive is a parsed attribute. It is one of *Empty, *Format, *Skip,
// *Forward or *Types.
type Directive interface {
	Kind() Kind
	Pos() token.Pos
	End() token.Pos
}

type span struct{ pos, end token.Pos }

func (s span) Pos() token.Pos { return s.pos }
func (s span) End() token.Pos { return s.end }

// Empty is a bare marker such as #[display] or #[error(source)].
type Empty struct {
	span
	Word string
}

// Format is a format literal with arguments, bounds, or both. Lit is nil
// for a bounds-only directive.
type Format struct {
	span
	Lit          *syntax.Token
	Value        string
	Args         []FmtArgument
	Placeholders []fmtstr.Placeholder
	Bounds       []syntax.Stream
}

// Skip excludes an item. Word is the keyword used, "skip" or "ignore".
type Skip struct {
	span
	Word string
}

// Forward delegates to the field's own implementation.
type Forward struct{ span }

// Types lists concrete types, as in #[as_ref(str, [u8])].
type Types struct {
	span
	List []syntax.Type
}

func (*Empty) Kind() Kind   { return KindEmpty }
func (*Format) Kind() Kind  { return KindFormat }
func (*Skip) Kind() Kind    { return KindSkip }
func (*Forward) Kind() Kind { return KindForward }
func (*Types) Kind() Kind   { return KindTypes }

// HasLit reports whether the directive has a format literal.
func (f *Format) HasLit() bool { return f != nil && f.Lit != nil }

// Grammar lists what a derive accepts in one attribute position.
type Grammar struct {
	// Empty accepts a bare attribute, and Markers are keywords which mean
	// the same, such as "source".
	Empty   bool
	Markers []string

	// Format accepts a literal with arguments and bound(...) lists.
	Format bool

	// Skip lists the accepted skip keywords.
	Skip []string

	Forward bool
	Types   bool
}

// keywords returns the accepted argument keywords for suggestions and
// error messages.
func (g Grammar) keywords() []string {
	var kws []string
	kws = append(kws, g.Skip...)
	kws = append(kws, g.Markers...)
	if g.Forward {
		kws = append(kws, "forward")
	}
	if g.Format {
		kws = append(kws, "bound")
	}
	return kws
}

// Parser parses attributes under a set of names with one grammar.
type Parser struct {
	Fset    *token.FileSet
	Names   []string
	Grammar Grammar
}

func (p Parser) errorf(poser codefmt.Poser, format string, args ...any) error {
	return codefmt.Errorf(p.Fset, poser, format, args...)
}

// ParseAttrs folds every attribute named by p.Names in attrs into one
// directive with [Parser.Merge]. It returns nil if none is present.
func (p Parser) ParseAttrs(attrs []syntax.Attribute) (Directive, error) {
	var d Directive
	for _, a := range attrs {
		if !slices.Contains(p.Names, a.Path) {
			continue
		}
		next, err := p.Parse(a)
		if err != nil {
			return nil, err
		}
		if d == nil {
			d = next
			continue
		}
		if d, err = p.Merge(d, next); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Parse parses one attribute occurrence.
func (p Parser) Parse(a syntax.Attribute) (Directive, error) {
	g := p.Grammar
	switch a.Style {
	case syntax.AttrPath:
		if !g.Empty {
			return nil, p.errorf(a, "`#[%s]` requires arguments", a.Path)
		}
		return &Empty{span: span{a.Pos(), a.End()}}, nil
	case syntax.AttrNameValue:
		return nil, p.errorf(a, "`#[%s = ...]` is not supported, use `#[%s(...)]`", a.Path, a.Path)
	}

	c := a.Cursor()
	sp := span{a.Pos(), a.End()}
	if c.EOF() {
		return nil, p.errorf(a, "`#[%s()]` requires arguments", a.Path)
	}

	first := c.Peek()
	switch {
	case first.IsString():
		if !g.Format {
			return nil, p.errorf(first, "`#[%s]` does not accept a format literal here", a.Path)
		}
		return p.parseFormat(a, c)

	case first.Is("fmt") && c.PeekAt(1).IsPunct('='):
		return nil, p.legacyFormat(a, c)

	case (first.Is("bound") || first.Is("bounds")) && c.PeekAt(1).IsPunct('='):
		return nil, p.legacyBound(a, c)

	case (first.Is("bound") || first.Is("bounds")) && c.PeekAt(1).Kind == syntax.Group:
		if !g.Format {
			return nil, p.unknown(a, first)
		}
		return p.parseBounds(a, c)
	}

	if first.Kind == syntax.Ident && c.Skip(1).EOF() {
		switch {
		case slices.Contains(g.Skip, first.Text):
			return &Skip{sp, first.Text}, nil
		case slices.Contains(g.Markers, first.Text):
			return &Empty{sp, first.Text}, nil
		case g.Forward && first.Text == "forward":
			return &Forward{sp}, nil
		}
		if !g.Types && !g.Format {
			return nil, p.unknown(a, first)
		}
	}

	if g.Types {
		return p.parseTypes(a, c)
	}
	return nil, p.unknown(a, first)
}

func (p Parser) unknown(a syntax.Attribute, tok syntax.Token) error {
	kws := p.Grammar.keywords()
	if tok.Kind == syntax.Ident {
		if s := lcs.Closest(tok.Text, kws); s != "" {
			return p.errorf(tok, "unknown argument `%c` in `#[%s(...)]`\n\tdid you mean `%s`?", tok, a.Path, s)
		}
	}
	if len(kws) == 0 {
		return p.errorf(tok, "unexpected `%c` in `#[%s(...)]`", tok, a.Path)
	}
	return p.errorf(tok, "unknown argument `%c` in `#[%s(...)]`\n\tallowed: %s", tok, a.Path, quoteJoin(kws))
}

func quoteJoin(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}

func (p Parser) parseFormat(a syntax.Attribute, c syntax.Cursor) (Directive, error) {
	lit, c := c.Next()
	value, err := syntax.Unquote(lit.Text)
	if err != nil {
		return nil, p.errorf(lit, "%s", err.Error())
	}
	ps, err := fmtstr.Placeholders(value)
	if err != nil {
		pos := lit.Pos()
		var ferr *fmtstr.Error
		if errors.As(err, &ferr) {
			pos += token.Pos(strings.IndexByte(lit.Text, '"') + 1 + ferr.Offset)
		}
		return nil, p.errorf(codefmt.Pos(pos), "%s", err.Error())
	}

	f := &Format{span: span{a.Pos(), a.End()}, Lit: &lit, Value: value, Placeholders: ps}
	if c.EOF() {
		return f, nil
	}
	if _, next, ok := c.Punct(','); ok {
		c = next
	} else {
		return nil, p.errorf(c.Peek(), "expected `,` after format literal, found `%c`", c.Peek())
	}
	args, err := ParseArgs(p.Fset, c)
	if err != nil {
		return nil, err
	}
	f.Args = args
	return f, nil
}

func (p Parser) parseBounds(a syntax.Attribute, c syntax.Cursor) (Directive, error) {
	_, c = c.Next()
	group := c.Peek()
	if group.Delim != syntax.Paren {
		return nil, p.errorf(group, "expected `(` after `bound`")
	}
	if rest := c.Skip(1); !rest.EOF() {
		return nil, p.errorf(rest.Peek(), "unexpected `%c` after `bound(...)`", rest.Peek())
	}
	f := &Format{span: span{a.Pos(), a.End()}}
	for _, pred := range group.Inner.Split(',') {
		if len(pred) > 0 {
			f.Bounds = append(f.Bounds, pred)
		}
	}
	return f, nil
}

func (p Parser) parseTypes(a syntax.Attribute, c syntax.Cursor) (Directive, error) {
	d := &Types{span: span{a.Pos(), a.End()}}
	for !c.EOF() {
		t, next, err := syntax.ParseType(p.Fset, c)
		if err != nil {
			return nil, err
		}
		d.List = append(d.List, t)
		c = next
		if c.EOF() {
			break
		}
		if _, next, ok := c.Punct(','); ok {
			c = next
		} else {
			return nil, p.errorf(c.Peek(), "expected `,` between types, found `%c`", c.Peek())
		}
	}
	return d, nil
}

// legacyFormat rejects #[display(fmt = "...", args)] with a hint showing
// the current form.
func (p Parser) legacyFormat(a syntax.Attribute, c syntax.Cursor) error {
	key := c.Peek()
	rest := c.Skip(2).Rest()
	return p.errorf(key, "legacy syntax, use `#[%s(%s)]` instead", a.Path, rest.Code())
}

// legacyBound rejects #[display(bound = "T: Trait")].
func (p Parser) legacyBound(a syntax.Attribute, c syntax.Cursor) error {
	key := c.Peek()
	value := c.PeekAt(2)
	hint := value.Code()
	if value.IsString() {
		if s, err := syntax.Unquote(value.Text); err == nil {
			hint = s
		}
	}
	return p.errorf(key, "legacy syntax, use `#[%s(bound(%s))]` instead", a.Path, hint)
}
