package derive

import (
	"github.com/sublee/derivegen/internal/attr"
	"github.com/sublee/derivegen/internal/bound"
	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/fields"
	"github.com/sublee/derivegen/internal/fmtstr"
	"github.com/sublee/derivegen/internal/syntax"
)

func debugOptions() fields.Options {
	format := attr.Grammar{Format: true}
	return fields.Options{
		Trait:     "Debug",
		Names:     []string{"debug"},
		Container: format,
		Variant:   format,
		Field:     attr.Grammar{Format: true, Skip: []string{"skip", "ignore"}},
		MixedSkip: true,
	}
}

// expandDebug writes Debug with the builders of core::fmt. Fields may carry
// their own format or be skipped, which makes the output non-exhaustive.
func expandDebug(ctx *Context, w *codefmt.Writer) error {
	if ctx.Decl.Kind == syntax.Union {
		return ctx.shapeError("unions")
	}
	it, err := fields.Enumerate(ctx.Fset, ctx.Decl, debugOptions())
	if err != nil {
		return err
	}
	if f, ok := it.Attr.(*attr.Format); ok && f.HasLit() && it.IsEnum() {
		return ctx.errorf(f, "`#[debug(\"...\", ...)]` attribute is not allowed on enum, place it on its variants instead")
	}

	g := &fmtGen{
		ctx:    ctx,
		it:     it,
		trait:  fmtstr.Debug,
		set:    bound.NewSet(ctx.Decl),
		search: bound.NewSearch(ctx.Decl.Generics, true),
	}
	g.set.AddUser(it.Bounds()...)

	var lines []string
	if it.IsEnum() {
		if len(it.Variants) == 0 {
			lines = []string{"match *self {}"}
		} else {
			lines = append(lines, "match self {")
			for _, v := range it.Variants {
				body, err := g.debugVariant(v)
				if err != nil {
					return err
				}
				lines = append(lines, v.Pattern(v.Path(), fields.Bind)+" => {")
				lines = append(lines, body...)
				lines = append(lines, "},")
			}
			lines = append(lines, "}")
		}
	} else {
		v := it.Variants[0]
		body, err := g.debugVariant(v)
		if err != nil {
			return err
		}
		for _, f := range v.Fields {
			lines = append(lines, "let "+f.Binding()+" = &self."+f.Member()+";")
		}
		lines = append(lines, body...)
	}

	g.writeFmt(w, lines)
	return nil
}

// debugVariant renders one variant. A variant format replaces the builder
// output entirely.
func (g *fmtGen) debugVariant(v *fields.Variant) ([]string, error) {
	if f, ok := v.Attr.(*attr.Format); ok && f.HasLit() {
		for _, fd := range v.Fields {
			if fd.Attr != nil && fd.Attr.Kind() == attr.KindFormat {
				return nil, g.ctx.errorf(fd.Attr,
					"`#[debug(...)]` attributes are not allowed on fields when `#[debug(\"...\", ...)]` is specified on %s",
					kindOf(v))
			}
		}
		if err := g.checkRefs(f, v, false); err != nil {
			return nil, err
		}
		g.inferFormat(f, v)
		if expr, trait, ok := f.TransparentCall(); ok {
			return []string{g.call(trait, "&("+expr+")")}, nil
		}
		return []string{g.write(f)}, nil
	}

	name := quote(unraw(g.ctx.Decl.Name))
	if v.Name != "" {
		name = quote(unraw(v.Name))
	}
	core, private := g.ctx.core(), g.ctx.private()

	var builder, open string
	switch v.Kind {
	case syntax.Named:
		builder = core + "::fmt::DebugStruct"
		open = core + "::fmt::Formatter::debug_struct(__derive_more_f, " + name + ")"
	case syntax.Unnamed:
		builder = private + "::DebugTuple"
		open = private + "::debug_tuple(__derive_more_f, " + name + ")"
	default:
		return []string{core + "::fmt::Formatter::write_str(__derive_more_f, " + name + ")"}, nil
	}

	lines := []string{"let mut __derive_more_out = " + open + ";"}
	for _, fd := range v.Live() {
		value := fd.Binding()
		if ff, ok := fd.Attr.(*attr.Format); ok && ff.HasLit() {
			if err := g.checkRefs(ff, v, false); err != nil {
				return nil, err
			}
			g.inferFormat(ff, v)
			value = "&" + core + "::format_args!(" + ff.Code() + ")"
		} else if g.search.Mentions(fd.Type) {
			g.set.Add(fd.Type, g.path())
		}

		if v.Kind == syntax.Named {
			lines = append(lines, builder+"::field(&mut __derive_more_out, "+quote(unraw(fd.Name))+", "+value+");")
		} else {
			lines = append(lines, builder+"::field(&mut __derive_more_out, "+value+");")
		}
	}

	finish := "finish"
	if v.HasSkipped() {
		finish = "finish_non_exhaustive"
	}
	return append(lines, builder+"::"+finish+"(&mut __derive_more_out)"), nil
}
