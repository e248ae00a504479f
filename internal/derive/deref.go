package derive

import (
	"github.com/sublee/derivegen/internal/attr"
	"github.com/sublee/derivegen/internal/bound"
	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/fields"
	"github.com/sublee/derivegen/internal/syntax"
)

func derefOptions(trait, name string) fields.Options {
	return fields.Options{
		Trait:         trait,
		Names:         []string{name},
		Container:     attr.Grammar{Forward: true},
		Field:         attr.Grammar{Empty: true, Forward: true, Skip: []string{"ignore", "skip"}},
		Explicit:      []attr.Kind{attr.KindEmpty, attr.KindForward},
		Exclusive:     true,
		RequireSingle: true,
	}
}

// dereference describes Deref or DerefMut.
type dereference struct {
	trait  string // "Deref"
	method string // "deref"
	ref    string // "&" or "&mut "
	self   string
}

var (
	deref    = dereference{trait: "Deref", method: "deref", ref: "&", self: "&self"}
	derefMut = dereference{trait: "DerefMut", method: "deref_mut", ref: "&mut ", self: "&mut self"}
)

// expandDeref dereferences to the single eligible field of a struct, or of
// every variant of an enum. A forwarded field dereferences to its own
// target instead.
func (d dereference) expandDeref(ctx *Context, w *codefmt.Writer) error {
	if ctx.Decl.Kind == syntax.Union {
		return ctx.shapeError("unions")
	}
	it, err := fields.Enumerate(ctx.Fset, ctx.Decl, derefOptions(d.trait, ctx.derive.Attr))
	if err != nil {
		return err
	}
	if len(it.Variants) == 0 {
		return ctx.errorf(ctx.Decl.Ident(), "`%s` cannot be derived for an enum without variants", d.trait)
	}

	path := ctx.core() + "::ops::" + d.trait
	forwardAll := it.Attr != nil && it.Attr.Kind() == attr.KindForward
	set := bound.NewSet(ctx.Decl)

	var target string
	var arms []string
	for _, v := range it.Variants {
		f, err := v.Sole(ctx.Fset, d.trait, ctx.derive.Attr)
		if err != nil {
			return err
		}

		forward := forwardAll || f.Attr != nil && f.Attr.Kind() == attr.KindForward
		t := f.Type.Code()
		expr := "__0"
		if !it.IsEnum() {
			expr = d.ref + "self." + f.Member()
		}
		if forward {
			set.AddRaw(t + ": " + path)
			expr = "<" + t + " as " + path + ">::" + d.method + "(" + expr + ")"
			t = "<" + t + " as " + ctx.core() + "::ops::Deref>::Target"
		}

		if target == "" {
			target = t
		} else if target != t {
			return ctx.errorf(v.Ident(), "`%s` requires every variant to dereference to the same type\n\tfound `%s`, expected `%s`", d.trait, t, target)
		}

		if it.IsEnum() {
			pat := v.Pattern(v.Path(), func(fd fields.Field) string {
				if fd.Index == f.Index {
					return "__0"
				}
				return ""
			})
			arms = append(arms, pat+" => "+expr+",")
		} else {
			arms = append(arms, expr)
		}
	}

	ctx.writeImpl(w, impl{
		attrs:    []string{"#[allow(deprecated)]", "#[allow(unreachable_code)]"},
		generics: ctx.Decl.Generics,
		trait:    path,
		where:    ctx.where(set),
		body: func(w *codefmt.Writer) {
			if d.trait == deref.trait {
				w.Printf("type Target = %s;\n", target)
				w.Printf("\n")
			}
			w.Printf("#[inline]\n")
			w.Printf("fn %s(%s) -> %sSelf::Target {\n", d.method, d.self, d.ref)
			if !it.IsEnum() {
				w.Printf("%s\n", arms[0])
			} else {
				w.Printf("match self {\n")
				for _, a := range arms {
					w.Printf("%s\n", a)
				}
				w.Printf("}\n")
			}
			w.Printf("}\n")
		},
	})
	return nil
}
