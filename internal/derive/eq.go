package derive

import (
	"github.com/sublee/derivegen/internal/bound"
	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/fields"
	"github.com/sublee/derivegen/internal/syntax"
)

// expandEq writes a marker impl of Eq. Field types mentioning generic
// parameters are bounded in the where-clause. Every other field type is
// asserted by a hidden const fn in an inherent impl, because bounding a type
// containing the implementor would recurse.
func expandEq(ctx *Context, w *codefmt.Writer) error {
	if ctx.Decl.Kind == syntax.Union {
		return ctx.shapeError("unions")
	}
	it, err := fields.Enumerate(ctx.Fset, ctx.Decl, eqOptions("Eq"))
	if err != nil {
		return err
	}

	trait := ctx.core() + "::cmp::Eq"
	set := bound.NewSet(ctx.Decl)
	search := bound.NewSearch(ctx.Decl.Generics, false)
	if len(ctx.Decl.Generics.Params) > 0 {
		set.AddRaw("Self: " + ctx.core() + "::cmp::PartialEq")
	}

	var asserted []syntax.Type
	for _, v := range it.Variants {
		for _, f := range v.Live() {
			if search.Mentions(f.Type) && set.Add(f.Type, trait) {
				continue
			}
			if !containsType(asserted, f.Type) {
				asserted = append(asserted, f.Type)
			}
		}
	}

	where := ctx.where(set)
	ctx.writeImpl(w, impl{
		attrs:    []string{"#[allow(private_bounds)]"},
		generics: ctx.Decl.Generics,
		trait:    trait,
		where:    where,
		body:     func(*codefmt.Writer) {},
	})
	if len(asserted) == 0 {
		return nil
	}
	ctx.writeImpl(w, impl{
		attrs:    []string{"#[allow(dead_code, private_bounds)]", "#[doc(hidden)]"},
		generics: ctx.Decl.Generics,
		where:    where,
		body: func(w *codefmt.Writer) {
			w.Printf("#[doc(hidden)]\n")
			w.Printf("const fn __derive_more_assert_eq() {\n")
			for _, t := range asserted {
				w.Printf("let _: %s::AssertParamIsEq<%c>;\n", ctx.private(), t)
			}
			w.Printf("}\n")
		},
	})
	return nil
}

func containsType(ts []syntax.Type, t syntax.Type) bool {
	for _, u := range ts {
		if syntax.Equal(u, t) {
			return true
		}
	}
	return false
}
