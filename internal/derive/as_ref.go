package derive

import (
	"github.com/sublee/derivegen/internal/attr"
	"github.com/sublee/derivegen/internal/bound"
	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/fields"
	"github.com/sublee/derivegen/internal/syntax"
)

func asOptions(trait, name string) fields.Options {
	return fields.Options{
		Trait:     trait,
		Names:     []string{name},
		Container: attr.Grammar{Empty: true, Forward: true, Types: true},
		Field:     attr.Grammar{Empty: true, Forward: true, Types: true, Skip: []string{"skip", "ignore"}},
		Explicit:  []attr.Kind{attr.KindEmpty, attr.KindForward, attr.KindTypes},
		Exclusive: true,
	}
}

// conversion describes AsRef or AsMut.
type conversion struct {
	trait  string // "AsRef"
	method string // "as_ref"
	ref    string // "&" or "&mut "
	self   string // "&self" or "&mut self"
}

var (
	asRef = conversion{trait: "AsRef", method: "as_ref", ref: "&", self: "&self"}
	asMut = conversion{trait: "AsMut", method: "as_mut", ref: "&mut ", self: "&mut self"}
)

// expandAs writes reference conversions to fields. Without field
// directives the struct must have a single eligible field, which the
// container directive configures. Otherwise every marked field gets its
// own impls.
func (c conversion) expandAs(ctx *Context, w *codefmt.Writer) error {
	switch ctx.Decl.Kind {
	case syntax.Enum:
		return ctx.shapeError("enums")
	case syntax.Union:
		return ctx.shapeError("unions")
	}
	it, err := fields.Enumerate(ctx.Fset, ctx.Decl, asOptions(c.trait, ctx.derive.Attr))
	if err != nil {
		return err
	}

	v := it.Variants[0]
	if v.Mode != fields.Explicit {
		f, err := v.Sole(ctx.Fset, c.trait, ctx.derive.Attr)
		if err != nil {
			return err
		}
		c.expandField(ctx, w, f, it.Attr)
		return nil
	}
	for _, f := range v.Live() {
		c.expandField(ctx, w, f, f.Attr)
	}
	return nil
}

// expandField writes the impls of one field as configured by d.
func (c conversion) expandField(ctx *Context, w *codefmt.Writer, f fields.Field, d attr.Directive) {
	path := ctx.core() + "::convert::" + c.trait
	search := bound.NewSearch(ctx.Decl.Generics, false)
	access := c.ref + "self." + f.Member()

	switch d := d.(type) {
	case *attr.Forward:
		// Each impl has its own scope.
		param := ctx.namespace().Name("__AsT")
		set := bound.NewSet(ctx.Decl)
		set.AddRaw(param + ": ?Sized")
		set.AddRaw(f.Type.Code() + ": " + path + "<" + param + ">")
		c.writeMethod(ctx, w, ctx.Decl.Generics.WithType(param), path+"<"+param+">", set, param,
			"<"+f.Type.Code()+" as "+path+"<"+param+">>::"+c.method+"("+access+")")

	case *attr.Types:
		for _, t := range d.List {
			set := bound.NewSet(ctx.Decl)
			body := access
			if !syntax.Equal(t, f.Type) {
				if search.Mentions(f.Type) {
					set.AddRaw(f.Type.Code() + ": " + path + "<" + t.Code() + ">")
				}
				body = "<" + f.Type.Code() + " as " + path + "<" + t.Code() + ">>::" + c.method + "(" + access + ")"
			}
			c.writeMethod(ctx, w, ctx.Decl.Generics, path+"<"+t.Code()+">", set, t.Code(), body)
		}

	default:
		c.writeMethod(ctx, w, ctx.Decl.Generics, path+"<"+f.Type.Code()+">", nil, f.Type.Code(), access)
	}
}

func (c conversion) writeMethod(ctx *Context, w *codefmt.Writer, g syntax.Generics, trait string, set *bound.Set, target, body string) {
	ctx.writeImpl(w, impl{
		generics: g,
		trait:    trait,
		where:    ctx.where(set),
		body: func(w *codefmt.Writer) {
			w.Printf("#[inline]\n")
			w.Printf("fn %s(%s) -> %s%s {\n", c.method, c.self, c.ref, target)
			w.Printf("%s\n", body)
			w.Printf("}\n")
		},
	})
}
