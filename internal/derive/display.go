package derive

import (
	"errors"

	"github.com/sublee/derivegen/internal/attr"
	"github.com/sublee/derivegen/internal/bound"
	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/fields"
	"github.com/sublee/derivegen/internal/fmtstr"
	"github.com/sublee/derivegen/internal/syntax"
)

// variantArg is the argument a shared enum format uses to embed the
// formatting of the matched variant.
const variantArg = "_variant"

func displayOptions(trait, name string) fields.Options {
	format := attr.Grammar{Format: true}
	return fields.Options{
		Trait:     trait,
		Names:     []string{name},
		Container: format,
		Variant:   format,
		Field:     attr.Grammar{Empty: true, Skip: []string{"skip", "ignore"}},
		Explicit:  []attr.Kind{attr.KindEmpty},
		Exclusive: true,
	}
}

// fmtTrait expands one of the formatting traits of core::fmt.
func fmtTrait(trait fmtstr.Trait) func(*Context, *codefmt.Writer) error {
	return func(ctx *Context, w *codefmt.Writer) error {
		it, err := fields.Enumerate(ctx.Fset, ctx.Decl, displayOptions(trait.String(), ctx.derive.Attr))
		if err != nil {
			return err
		}
		g := &fmtGen{
			ctx:    ctx,
			it:     it,
			trait:  trait,
			set:    bound.NewSet(ctx.Decl),
			search: bound.NewSearch(ctx.Decl.Generics, true),
		}
		g.set.AddUser(it.Bounds()...)

		var lines []string
		switch ctx.Decl.Kind {
		case syntax.Union:
			lines, err = g.union()
		case syntax.Enum:
			lines, err = g.enum()
		default:
			lines, err = g.strukt()
		}
		if err != nil {
			return err
		}

		g.writeFmt(w, lines)
		return nil
	}
}

// fmtGen renders the body of a formatting trait.
type fmtGen struct {
	ctx    *Context
	it     *fields.Item
	trait  fmtstr.Trait
	set    *bound.Set
	search bound.Search
}

// writeFmt writes the impl with lines as the body of fn fmt. Every field is
// bound even when the format leaves it unused.
func (g *fmtGen) writeFmt(w *codefmt.Writer, lines []string) {
	core := g.ctx.core()
	g.ctx.writeImpl(w, impl{
		generics: g.ctx.Decl.Generics,
		trait:    g.path(),
		where:    g.ctx.where(g.set),
		body: func(w *codefmt.Writer) {
			if g.bindsFields() {
				w.Printf("#[allow(unused_variables)]\n")
			}
			w.Printf("fn fmt(&self, __derive_more_f: &mut %s::fmt::Formatter<'_>) -> %s::fmt::Result {\n", core, core)
			for _, l := range lines {
				w.Printf("%s\n", l)
			}
			w.Printf("}\n")
		},
	})
}

// bindsFields reports whether the body binds any field by name. Union
// formats never read fields.
func (g *fmtGen) bindsFields() bool {
	if g.ctx.Decl.Kind == syntax.Union {
		return false
	}
	for _, v := range g.it.Variants {
		if len(v.Fields) > 0 {
			return true
		}
	}
	return false
}

func (g *fmtGen) path() string {
	return g.ctx.core() + "::fmt::" + g.trait.String()
}

func (g *fmtGen) strukt() ([]string, error) {
	v := g.it.Variants[0]
	body, err := g.variant(v, nil)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, f := range v.Fields {
		lines = append(lines, "let "+f.Binding()+" = &self."+f.Member()+";")
	}
	return append(lines, body...), nil
}

func (g *fmtGen) union() ([]string, error) {
	v := g.it.Variants[0]
	f := v.Format()
	if f == nil {
		return nil, g.ctx.errorf(v.Ident(), "unions must have `#[%s(\"...\", ...)]` attribute", g.ctx.derive.Attr)
	}
	// Union fields cannot be bound safely, so only arguments resolve.
	if err := g.checkRefs(f, nil, false); err != nil {
		return nil, err
	}
	return []string{g.write(f)}, nil
}

func (g *fmtGen) enum() ([]string, error) {
	shared, ok := g.it.Attr.(*attr.Format)
	if ok && !shared.HasLit() {
		shared = nil
	}
	if shared != nil {
		for _, p := range shared.Placeholders {
			if name, ok := shared.Ref(p.Arg); ok && name == variantArg && (p.HasModifiers || p.Trait != fmtstr.Display) {
				return nil, g.ctx.errorf(shared, "shared format `%s` placeholder cannot contain format specifiers", variantArg)
			}
		}
	}

	if len(g.it.Variants) == 0 {
		return []string{"match *self {}"}, nil
	}

	lines := []string{"match self {"}
	for _, v := range g.it.Variants {
		body, err := g.variant(v, shared)
		if err != nil {
			return nil, err
		}
		lines = append(lines, v.Pattern(v.Path(), fields.Bind)+" => {")
		lines = append(lines, body...)
		lines = append(lines, "},")
	}
	return append(lines, "}"), nil
}

// variant renders the formatting of one variant whose fields are bound to
// their bindings. With a shared format the variant is rendered as a value
// for the shared format to embed.
func (g *fmtGen) variant(v *fields.Variant, shared *attr.Format) ([]string, error) {
	if shared == nil {
		return g.direct(v)
	}
	if err := g.checkRefs(shared, v, true); err != nil {
		return nil, err
	}
	g.inferFormat(shared, v)

	write := g.write(shared)
	if !shared.ContainsArg(variantArg) {
		return []string{write}, nil
	}
	value, err := g.value(v)
	if err != nil {
		return nil, err
	}
	return []string{
		"match " + value + " {",
		variantArg + " => " + write + ",",
		"}",
	}, nil
}

// direct renders a variant written straight to the formatter.
func (g *fmtGen) direct(v *fields.Variant) ([]string, error) {
	if f, err := g.tryFormat(v); !errors.Is(err, skip) {
		if err != nil {
			return nil, err
		}
		if expr, trait, ok := f.TransparentCall(); ok {
			return []string{g.call(trait, "&("+expr+")")}, nil
		}
		return []string{g.write(f)}, nil
	}
	if name, err := g.tryUnit(v); !errors.Is(err, skip) {
		if err != nil {
			return nil, err
		}
		return []string{"__derive_more_f.write_str(" + quote(name) + ")"}, nil
	}
	f, err := g.sole(v)
	if err != nil {
		return nil, err
	}
	return []string{g.call(g.trait, f.Binding())}, nil
}

// value renders a variant as an expression of type &impl Display for a
// shared format.
func (g *fmtGen) value(v *fields.Variant) (string, error) {
	if f, err := g.tryFormat(v); !errors.Is(err, skip) {
		if err != nil {
			return "", err
		}
		return "&" + g.ctx.core() + "::format_args!(" + f.Code() + ")", nil
	}
	if name, err := g.tryUnit(v); !errors.Is(err, skip) {
		if err != nil {
			return "", err
		}
		return quote(name), nil
	}
	f, err := g.sole(v)
	if err != nil {
		return "", err
	}
	return "&" + g.ctx.core() + "::format_args!(" + quote(g.trait.Placeholder()) + ", " + f.Binding() + ")", nil
}

// tryFormat returns the format of the variant with its references checked
// and bounds inferred.
func (g *fmtGen) tryFormat(v *fields.Variant) (*attr.Format, error) {
	f := v.Format()
	if f == nil {
		return nil, skip
	}
	if err := g.checkRefs(f, v, false); err != nil {
		return nil, err
	}
	g.inferFormat(f, v)
	return f, nil
}

// tryUnit returns the name a fieldless variant formats as. Only Display
// infers it.
func (g *fmtGen) tryUnit(v *fields.Variant) (string, error) {
	if len(v.Fields) != 0 {
		return "", skip
	}
	if g.trait != fmtstr.Display {
		what := "struct"
		if v.Name != "" {
			what = "enum variant"
		}
		return "", g.ctx.errorf(v.Ident(),
			"implicit formatting of unit %s is supported only for `Display`\n\tuse `#[%s(\"...\")]` to specify the formatting",
			what, g.ctx.derive.Attr)
	}
	if v.Name != "" {
		return unraw(v.Name), nil
	}
	return unraw(g.ctx.Decl.Name), nil
}

// sole returns the field a variant without format forwards to.
func (g *fmtGen) sole(v *fields.Variant) (fields.Field, error) {
	f, err := v.Sole(g.ctx.Fset, g.trait.String(), g.ctx.derive.Attr)
	if err != nil {
		if len(v.Live()) > 1 {
			return f, g.ctx.errorf(v.Ident(),
				"cannot infer the format for `%s`: the %s has %d fields\n\tuse `#[%s(\"...\", ...)]` to specify the formatting, or mark one field with `#[%s]`",
				g.trait, kindOf(v), len(v.Live()), g.ctx.derive.Attr, g.ctx.derive.Attr)
		}
		return f, err
	}
	if g.search.Mentions(f.Type) {
		g.set.Add(f.Type, g.path())
	}
	return f, nil
}

func kindOf(v *fields.Variant) string {
	if v.Name != "" {
		return "variant"
	}
	return "struct"
}

func (g *fmtGen) write(f *attr.Format) string {
	return g.ctx.core() + "::write!(__derive_more_f, " + f.Code() + ")"
}

func (g *fmtGen) call(trait fmtstr.Trait, expr string) string {
	return g.ctx.core() + "::fmt::" + trait.String() + "::fmt(" + expr + ", __derive_more_f)"
}

// checkRefs resolves the arguments of every placeholder. A named
// placeholder without alias must name a field binding, or the variant
// value of a shared format. Width and precision references are left to
// the compiler.
func (g *fmtGen) checkRefs(f *attr.Format, v *fields.Variant, shared bool) error {
	for _, p := range f.Placeholders {
		if !p.Arg.IsNamed() {
			if p.Arg.Index >= len(f.Args) {
				return g.ctx.errorf(f, "format placeholder `{%d}` refers to a missing argument\n\tthe format has %d arguments",
					p.Arg.Index, len(f.Args))
			}
			continue
		}
		if aliased(f, p.Arg.Name) {
			continue
		}
		if shared && p.Arg.Name == variantArg {
			continue
		}
		if v != nil && bindsName(v, p.Arg.Name) {
			continue
		}
		return g.ctx.errorf(f, "format placeholder `{%s}` does not refer to a field or an argument", p.Arg.Name)
	}
	return nil
}

// inferFormat bounds the field types the placeholders of f format.
func (g *fmtGen) inferFormat(f *attr.Format, v *fields.Variant) {
	for _, ref := range f.Refs() {
		for _, fd := range v.Fields {
			if fd.Binding() == ref.Name && g.search.Mentions(fd.Type) {
				g.set.Add(fd.Type, g.ctx.core()+"::fmt::"+ref.Trait.String())
			}
		}
	}
}

func aliased(f *attr.Format, name string) bool {
	for _, a := range f.Args {
		if a.Alias != nil && a.Alias.Text == name {
			return true
		}
	}
	return false
}

func bindsName(v *fields.Variant, name string) bool {
	for _, f := range v.Fields {
		if f.Binding() == name {
			return true
		}
	}
	return false
}
