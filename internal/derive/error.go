package derive

import (
	"errors"

	"github.com/sublee/derivegen/internal/attr"
	"github.com/sublee/derivegen/internal/bound"
	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/fields"
	"github.com/sublee/derivegen/internal/syntax"
)

func errorOptions() fields.Options {
	ignore := attr.Grammar{Skip: []string{"ignore", "skip"}}
	return fields.Options{
		Trait:     "Error",
		Names:     []string{"error"},
		Container: ignore,
		Variant:   ignore,
		Field: attr.Grammar{
			Empty:   true,
			Markers: []string{"source"},
			Forward: true,
			Skip:    []string{"ignore", "skip"},
		},
		MixedSkip: true,
	}
}

// source is the field an error variant chains to.
type source struct {
	field    fields.Field
	optional bool
	forward  bool
}

// expandError writes Error with a source() chaining to the source field
// of each variant.
func expandError(ctx *Context, w *codefmt.Writer) error {
	if ctx.Decl.Kind == syntax.Union {
		return ctx.shapeError("unions")
	}
	it, err := fields.Enumerate(ctx.Fset, ctx.Decl, errorOptions())
	if err != nil {
		return err
	}

	core, private := ctx.core(), ctx.private()
	set := bound.NewSet(ctx.Decl)
	search := bound.NewSearch(ctx.Decl.Generics, true)
	if len(ctx.Decl.Generics.Names(syntax.TypeParam)) > 0 {
		set.AddRaw(ctx.selfType() + ": " + core + "::fmt::Debug + " + core + "::fmt::Display")
	}
	ignored := it.Attr != nil && it.Attr.Kind() == attr.KindSkip

	var arms []string
	for _, v := range it.Variants {
		if ignored || v.Skipped() {
			continue
		}
		src, err := findSource(ctx, v)
		if errors.Is(err, skip) {
			continue
		} else if err != nil {
			return err
		}

		t := src.field.Type
		if src.optional {
			t, _ = syntax.IsOption(t)
		}
		if search.Mentions(t) {
			for _, tr := range []string{core + "::fmt::Debug", core + "::fmt::Display", core + "::error::Error", "'static"} {
				set.Add(t, tr)
			}
		}

		expr, recv := "&self."+src.field.Member(), "(&self."+src.field.Member()+")"
		if it.IsEnum() {
			expr, recv = "source", "source"
		}
		var value string
		switch {
		case src.forward:
			value = core + "::error::Error::source(" + expr + ")"
		case src.optional:
			value = "Some(" + core + "::option::Option::as_ref(" + expr + ")?.__derive_more_as_dyn_error())"
		default:
			value = "Some(" + recv + ".__derive_more_as_dyn_error())"
		}

		if !it.IsEnum() {
			arms = append(arms, value)
			continue
		}
		pat := v.Pattern(v.Path(), func(f fields.Field) string {
			if f.Index == src.field.Index {
				return "source"
			}
			return ""
		})
		arms = append(arms, pat+" => "+value+",")
	}

	ctx.writeImpl(w, impl{
		generics: ctx.Decl.Generics,
		trait:    core + "::error::Error",
		where:    ctx.where(set),
		body: func(w *codefmt.Writer) {
			if len(arms) == 0 {
				return
			}
			w.Printf("fn source(&self) -> Option<&(dyn %s::error::Error + 'static)> {\n", core)
			w.Printf("use %s::AsDynError as _;\n", private)
			if !it.IsEnum() {
				w.Printf("%s\n", arms[0])
			} else {
				w.Printf("match self {\n")
				for _, a := range arms {
					w.Printf("%s\n", a)
				}
				if len(arms) < len(it.Variants) {
					w.Printf("_ => None,\n")
				}
				w.Printf("}\n")
			}
			w.Printf("}\n")
		},
	})
	return nil
}

// findSource picks the source field of a variant: the field marked with
// #[error(source)], #[error] or #[error(forward)], else a field named
// "source", else the only field of a tuple. It returns skip when the
// variant has no source.
func findSource(ctx *Context, v *fields.Variant) (source, error) {
	var marked []fields.Field
	for _, f := range v.Fields {
		if f.Attr != nil && f.Attr.Kind() != attr.KindSkip {
			marked = append(marked, f)
		}
	}
	if len(marked) > 1 {
		return source{}, ctx.errorf(marked[1].Attr,
			"multiple source fields in the %s\n\tonly one field may be marked with `#[error(source)]`", kindOf(v))
	}

	var src source
	switch {
	case len(marked) == 1:
		src.field = marked[0]
		src.forward = marked[0].Attr.Kind() == attr.KindForward
	default:
		f, ok := inferSource(v)
		if !ok {
			return source{}, skip
		}
		src.field = f
	}
	_, src.optional = syntax.IsOption(src.field.Type)
	return src, nil
}

func inferSource(v *fields.Variant) (fields.Field, bool) {
	switch v.Kind {
	case syntax.Named:
		for _, f := range v.Fields {
			if f.Name == "source" && !f.Skipped {
				return f, true
			}
		}
	case syntax.Unnamed:
		if len(v.Fields) == 1 && !v.Fields[0].Skipped && !isBacktrace(v.Fields[0].Type) {
			return v.Fields[0], true
		}
	}
	return fields.Field{}, false
}

func isBacktrace(t syntax.Type) bool {
	p, ok := t.(*syntax.PathType)
	return ok && p.Ident() == "Backtrace"
}
