package attr

import (
	"strings"

	"github.com/sublee/derivegen/internal/fmtstr"
)

// Code renders the literal and its arguments as macro arguments:
// "\"{x}\", x = self.x". It is empty for a bounds-only directive.
func (f *Format) Code() string {
	if !f.HasLit() {
		return ""
	}
	var b strings.Builder
	b.WriteString(f.Lit.Text)
	for _, a := range f.Args {
		b.WriteString(", ")
		b.WriteString(a.Code())
	}
	return b.String()
}

// Ref resolves the argument of a placeholder to the identifier it formats.
// A named placeholder resolves through an alias to the aliased
// expression, or else to its own name. A positional placeholder resolves to
// an unaliased argument. ok is false when the placeholder formats an
// expression which is not a bare identifier, or an argument that does not
// exist.
func (f *Format) Ref(p fmtstr.Parameter) (name string, ok bool) {
	if p.IsNamed() {
		for _, a := range f.Args {
			if a.Alias != nil && a.Alias.Text == p.Name {
				return a.Ident()
			}
		}
		return p.Name, true
	}
	if p.Index >= len(f.Args) || f.Args[p.Index].Alias != nil {
		return "", false
	}
	return f.Args[p.Index].Ident()
}

// Ref is one resolved placeholder argument.
type Ref struct {
	Name  string
	Trait fmtstr.Trait
}

// Refs returns the identifiers the placeholders format, with the traits
// they are formatted with, in order of appearance. Unresolvable
// placeholders are left out.
func (f *Format) Refs() []Ref {
	var refs []Ref
	for _, p := range f.Placeholders {
		if name, ok := f.Ref(p.Arg); ok {
			refs = append(refs, Ref{name, p.Trait})
		}
	}
	return refs
}

// ContainsArg reports whether a placeholder refers to name directly.
func (f *Format) ContainsArg(name string) bool {
	for _, p := range f.Placeholders {
		if p.Arg.IsNamed() && p.Arg.Name == name {
			return true
		}
	}
	return false
}

// TransparentCall recognizes a literal consisting of exactly one
// modifier-free placeholder, such as "{}" with one argument or "{x:?}".
// Such a format can call the trait method of the argument directly. It
// returns the expression to format and the trait.
func (f *Format) TransparentCall() (expr string, trait fmtstr.Trait, ok bool) {
	if !f.HasLit() || len(f.Placeholders) != 1 {
		return "", 0, false
	}
	p := f.Placeholders[0]
	if p.HasModifiers {
		return "", 0, false
	}

	// The literal must contain nothing but the placeholder.
	sc := fmtstr.Parse(f.Value)
	piece, _ := sc.Next()
	if piece.Placeholder == nil {
		return "", 0, false
	}
	if _, more := sc.Next(); more {
		return "", 0, false
	}

	if p.Arg.IsNamed() {
		for _, a := range f.Args {
			if a.Alias != nil && a.Alias.Text == p.Arg.Name {
				if len(f.Args) != 1 {
					return "", 0, false
				}
				return a.Expr.Code(), p.Trait, true
			}
		}
		if len(f.Args) != 0 {
			return "", 0, false
		}
		return p.Arg.Name, p.Trait, true
	}

	if p.Arg.Index != 0 || len(f.Args) != 1 || f.Args[0].Alias != nil {
		return "", 0, false
	}
	return f.Args[0].Expr.Code(), p.Trait, true
}
