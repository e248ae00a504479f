package derive

import (
	"strconv"
	"strings"

	"github.com/sublee/derivegen/internal/attr"
	"github.com/sublee/derivegen/internal/bound"
	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/fields"
	"github.com/sublee/derivegen/internal/syntax"
)

// eqOptions classifies fields for PartialEq and Eq. Only skip directives
// are accepted, under either attribute name.
func eqOptions(trait string) fields.Options {
	skip := attr.Grammar{Skip: []string{"skip", "ignore"}}
	return fields.Options{
		Trait:   trait,
		Names:   []string{"partial_eq", "eq"},
		Variant: skip,
		Field:   skip,
	}
}

func expandPartialEq(ctx *Context, w *codefmt.Writer) error {
	if ctx.Decl.Kind == syntax.Union {
		return ctx.shapeError("unions")
	}
	it, err := fields.Enumerate(ctx.Fset, ctx.Decl, eqOptions("PartialEq"))
	if err != nil {
		return err
	}

	trait := ctx.core() + "::cmp::PartialEq"
	set := bound.NewSet(ctx.Decl)
	search := bound.NewSearch(ctx.Decl.Generics, false)
	for _, v := range it.Variants {
		for _, f := range v.Live() {
			if search.Mentions(f.Type) {
				set.Add(f.Type, trait)
			}
		}
	}

	eq := structuralCmp{ctx: ctx, variants: it.Variants, eq: true}
	ne := structuralCmp{ctx: ctx, variants: it.Variants, eq: false}
	ctx.writeImpl(w, impl{
		attrs:    []string{"#[allow(private_bounds)]"},
		generics: ctx.Decl.Generics,
		trait:    trait,
		where:    ctx.where(set),
		body: func(w *codefmt.Writer) {
			for _, m := range []structuralCmp{eq, ne} {
				body, ok := m.body()
				if !ok {
					continue
				}
				w.Printf("#[inline]\n")
				w.Printf("fn %s(&self, __other: &Self) -> bool {\n", m.method())
				w.Printf("%s\n", body)
				w.Printf("}\n")
			}
		},
	})
	return nil
}

// structuralCmp renders the body of PartialEq::eq or PartialEq::ne.
type structuralCmp struct {
	ctx      *Context
	variants []*fields.Variant
	eq       bool
}

func (m structuralCmp) method() string {
	if m.eq {
		return "eq"
	}
	return "ne"
}

// result is the outcome when there is nothing to compare.
func (m structuralCmp) result() string {
	return strconv.FormatBool(m.eq)
}

func (m structuralCmp) ops() (cmp, chain string) {
	if m.eq {
		return "==", "&&"
	}
	return "!=", "||"
}

// body returns the method body. ok is false when the default method
// provided by the trait suffices, which is never the case for eq.
func (m structuralCmp) body() (string, bool) {
	// An empty enum has no value to compare.
	if len(m.variants) == 0 {
		return "match *self {}", m.eq
	}

	if len(m.variants) == 1 && len(m.variants[0].Live()) == 0 {
		return m.result(), m.eq
	}

	cmp, chain := m.ops()
	var discriminants string
	if len(m.variants) > 1 {
		core := m.ctx.core()
		discriminants = core + "::mem::discriminant(self) " + cmp + " " + core + "::mem::discriminant(__other)"
	}

	var arms []string
	for _, v := range m.variants {
		live := v.Live()
		if len(live) == 0 {
			continue
		}
		self := v.Pattern(v.Path(), prefixed("__self_"))
		other := v.Pattern(v.Path(), prefixed("__other_"))

		cmps := make([]string, len(live))
		for i, f := range live {
			n := strconv.Itoa(f.Index)
			cmps[i] = "__self_" + n + " " + cmp + " __other_" + n
		}
		arms = append(arms, "("+self+", "+other+") => "+strings.Join(cmps, " "+chain+" ")+",")
	}

	if len(arms) == 0 {
		// Only the discriminants differ. The default ne negates eq.
		return discriminants, m.eq
	}

	var b strings.Builder
	b.WriteString("match (self, __other) {\n")
	for _, arm := range arms {
		b.WriteString(arm + "\n")
	}
	switch {
	case len(arms) != len(m.variants):
		b.WriteString("_ => " + m.result() + ",\n")
	case len(m.variants) > 1:
		b.WriteString(m.unreachableArm())
	}
	b.WriteString("}")

	if discriminants == "" {
		return b.String(), true
	}
	return discriminants + " " + chain + " " + b.String(), true
}

// unreachableArm completes a match over pairs of variants. Every variant
// has an arm pairing it with itself, and the discriminant check before the
// match rules out every other pair.
func (m structuralCmp) unreachableArm() string {
	if len(m.variants) < 2 {
		panic("unreachable arm requires a discriminant check")
	}
	return "// SAFETY: This arm is never reachable, but is required by the expanded\n" +
		"//         `match (self, __other)` expression when there is more than one variant.\n" +
		"_ => unsafe { " + m.ctx.core() + "::hint::unreachable_unchecked() },\n"
}

// prefixed binds live fields to "{prefix}{index}".
func prefixed(prefix string) func(fields.Field) string {
	return func(f fields.Field) string {
		if !f.Live {
			return ""
		}
		return prefix + strconv.Itoa(f.Index)
	}
}
