package syntax

import (
	"go/token"
	"strings"
)

// Type is a type expression. Types compare structurally with [Equal];
// positions never take part in comparisons.
type Type interface {
	Pos() token.Pos
	End() token.Pos
	Code() string
	eq(Type) bool
	inspect(func(any) bool)
}

type span struct{ pos, end token.Pos }

func (s span) Pos() token.Pos { return s.pos }
func (s span) End() token.Pos { return s.end }

// PathType is a possibly qualified path such as "Vec<T>",
// "::std::fmt::Result" or "<T as Trait>::Assoc".
type PathType struct {
	span
	QSelf    *QSelf
	Leading  bool
	Segments []Segment
}

// QSelf is the "<Type as Trait>" prefix of a qualified path. Trait is nil
// for "<Type>::Name".
type QSelf struct {
	Type  Type
	Trait *PathType
}

// Segment is a single path segment with optional angle-bracketed arguments
// or parenthesized Fn-sugar arguments.
type Segment struct {
	Name string
	Args []GenericArg
	Fn   *FnSugar
}

// FnSugar is the "(A, B) -> C" form of Fn-family trait arguments.
type FnSugar struct {
	Inputs []Type
	Output Type
}

// GenericArg is one argument of an angle-bracketed segment. Exactly one of
// Lifetime, Type, Const or Bounds is set; Assoc names an associated type
// binding ("Item = T") or constraint ("Item: Bound").
type GenericArg struct {
	Assoc    string
	Lifetime string
	Type     Type
	Const    Stream
	Bounds   []Bound
}

// Bound is a trait or lifetime bound.
type Bound struct {
	Lifetime string
	Maybe    bool
	ForLts   Stream
	Path     *PathType
}

// Ident returns the single identifier the path consists of, or "".
func (t *PathType) Ident() string {
	if t.QSelf != nil || t.Leading || len(t.Segments) != 1 {
		return ""
	}
	if s := t.Segments[0]; s.Args == nil && s.Fn == nil {
		return s.Name
	}
	return ""
}

// Last returns the last path segment.
func (t *PathType) Last() Segment {
	if len(t.Segments) == 0 {
		return Segment{}
	}
	return t.Segments[len(t.Segments)-1]
}

type RefType struct {
	span
	Lifetime string
	Mut      bool
	Elem     Type
}

type PtrType struct {
	span
	Mut  bool
	Elem Type
}

type SliceType struct {
	span
	Elem Type
}

type ArrayType struct {
	span
	Elem Type
	Len  Stream
}

type TupleType struct {
	span
	Elems []Type
}

type ParenType struct {
	span
	Elem Type
}

type NeverType struct{ span }

type InferType struct{ span }

type FnType struct {
	span
	Prefix Stream
	Inputs []Type
	Output Type
}

type TraitObjectType struct {
	span
	Dyn    bool
	Bounds []Bound
}

type ImplTraitType struct {
	span
	Bounds []Bound
}

// VerbatimType is a type this package does not model, such as a macro
// invocation in type position. It compares by its source form.
type VerbatimType struct {
	span
	Tokens Stream
}

// Equal reports whether two types are the same expression. Parentheses
// around a type are not significant.
func Equal(a, b Type) bool {
	a, b = unparen(a), unparen(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.eq(b)
}

func unparen(t Type) Type {
	for {
		p, ok := t.(*ParenType)
		if !ok {
			return t
		}
		t = p.Elem
	}
}

// Contains reports whether target occurs anywhere within t, t included.
func Contains(t, target Type) bool {
	found := false
	Inspect(t, func(n any) bool {
		if found {
			return false
		}
		if nt, ok := n.(Type); ok && Equal(nt, target) {
			found = true
			return false
		}
		return true
	})
	return found
}

// LifetimeRef is reported by [Inspect] for every lifetime mentioned in a
// type.
type LifetimeRef string

// Inspect traverses t in depth-first order. f receives every nested Type,
// every [LifetimeRef] and every const expression [Stream]. If f returns
// false, the children of that node are skipped.
func Inspect(t Type, f func(any) bool) {
	if t == nil {
		return
	}
	if f(t) {
		t.inspect(f)
	}
}

func inspectBounds(bs []Bound, f func(any) bool) {
	for _, b := range bs {
		if b.Lifetime != "" {
			f(LifetimeRef(b.Lifetime))
		}
		if b.Path != nil {
			Inspect(b.Path, f)
		}
	}
}

func (t *PathType) inspect(f func(any) bool) {
	if t.QSelf != nil {
		Inspect(t.QSelf.Type, f)
		if t.QSelf.Trait != nil {
			Inspect(t.QSelf.Trait, f)
		}
	}
	for _, s := range t.Segments {
		for _, a := range s.Args {
			switch {
			case a.Lifetime != "":
				f(LifetimeRef(a.Lifetime))
			case a.Type != nil:
				Inspect(a.Type, f)
			case a.Const != nil:
				f(a.Const)
			default:
				inspectBounds(a.Bounds, f)
			}
		}
		if s.Fn != nil {
			for _, in := range s.Fn.Inputs {
				Inspect(in, f)
			}
			Inspect(s.Fn.Output, f)
		}
	}
}

func (t *RefType) inspect(f func(any) bool) {
	if t.Lifetime != "" {
		f(LifetimeRef(t.Lifetime))
	}
	Inspect(t.Elem, f)
}

func (t *PtrType) inspect(f func(any) bool)   { Inspect(t.Elem, f) }
func (t *SliceType) inspect(f func(any) bool) { Inspect(t.Elem, f) }
func (t *ParenType) inspect(f func(any) bool) { Inspect(t.Elem, f) }
func (t *NeverType) inspect(func(any) bool)   {}
func (t *InferType) inspect(func(any) bool)   {}

func (t *ArrayType) inspect(f func(any) bool) {
	Inspect(t.Elem, f)
	f(t.Len)
}

func (t *TupleType) inspect(f func(any) bool) {
	for _, e := range t.Elems {
		Inspect(e, f)
	}
}

func (t *FnType) inspect(f func(any) bool) {
	for _, in := range t.Inputs {
		Inspect(in, f)
	}
	Inspect(t.Output, f)
}

func (t *TraitObjectType) inspect(f func(any) bool) { inspectBounds(t.Bounds, f) }
func (t *ImplTraitType) inspect(f func(any) bool)   { inspectBounds(t.Bounds, f) }

func (t *VerbatimType) inspect(f func(any) bool) { f(t.Tokens) }

func pathEq(a, b *PathType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Leading != b.Leading || len(a.Segments) != len(b.Segments) {
		return false
	}
	if (a.QSelf == nil) != (b.QSelf == nil) {
		return false
	}
	if a.QSelf != nil && (!Equal(a.QSelf.Type, b.QSelf.Type) || !pathEq(a.QSelf.Trait, b.QSelf.Trait)) {
		return false
	}
	for i := range a.Segments {
		if !segmentEq(a.Segments[i], b.Segments[i]) {
			return false
		}
	}
	return true
}

func segmentEq(a, b Segment) bool {
	if a.Name != b.Name || len(a.Args) != len(b.Args) || (a.Fn == nil) != (b.Fn == nil) {
		return false
	}
	for i := range a.Args {
		x, y := a.Args[i], b.Args[i]
		if x.Assoc != y.Assoc || x.Lifetime != y.Lifetime || !Equal(x.Type, y.Type) ||
			x.Const.Code() != y.Const.Code() || !boundsEq(x.Bounds, y.Bounds) {
			return false
		}
	}
	if a.Fn != nil {
		if !typesEq(a.Fn.Inputs, b.Fn.Inputs) || !Equal(a.Fn.Output, b.Fn.Output) {
			return false
		}
	}
	return true
}

func typesEq(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func boundsEq(a, b []Bound) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Lifetime != b[i].Lifetime || a[i].Maybe != b[i].Maybe ||
			a[i].ForLts.Code() != b[i].ForLts.Code() || !pathEq(a[i].Path, b[i].Path) {
			return false
		}
	}
	return true
}

func (t *PathType) eq(o Type) bool {
	u, ok := o.(*PathType)
	return ok && pathEq(t, u)
}

func (t *RefType) eq(o Type) bool {
	u, ok := o.(*RefType)
	return ok && t.Lifetime == u.Lifetime && t.Mut == u.Mut && Equal(t.Elem, u.Elem)
}

func (t *PtrType) eq(o Type) bool {
	u, ok := o.(*PtrType)
	return ok && t.Mut == u.Mut && Equal(t.Elem, u.Elem)
}

func (t *SliceType) eq(o Type) bool {
	u, ok := o.(*SliceType)
	return ok && Equal(t.Elem, u.Elem)
}

func (t *ArrayType) eq(o Type) bool {
	u, ok := o.(*ArrayType)
	return ok && Equal(t.Elem, u.Elem) && t.Len.Code() == u.Len.Code()
}

func (t *TupleType) eq(o Type) bool {
	u, ok := o.(*TupleType)
	return ok && typesEq(t.Elems, u.Elems)
}

func (t *ParenType) eq(o Type) bool { return Equal(t.Elem, o) }

func (t *NeverType) eq(o Type) bool {
	_, ok := o.(*NeverType)
	return ok
}

func (t *InferType) eq(o Type) bool {
	_, ok := o.(*InferType)
	return ok
}

func (t *FnType) eq(o Type) bool {
	u, ok := o.(*FnType)
	return ok && t.Prefix.Code() == u.Prefix.Code() && typesEq(t.Inputs, u.Inputs) && Equal(t.Output, u.Output)
}

func (t *TraitObjectType) eq(o Type) bool {
	u, ok := o.(*TraitObjectType)
	return ok && boundsEq(t.Bounds, u.Bounds)
}

func (t *ImplTraitType) eq(o Type) bool {
	u, ok := o.(*ImplTraitType)
	return ok && boundsEq(t.Bounds, u.Bounds)
}

func (t *VerbatimType) eq(o Type) bool {
	u, ok := o.(*VerbatimType)
	return ok && t.Tokens.Code() == u.Tokens.Code()
}

func (t *PathType) Code() string {
	var b strings.Builder
	writePath(&b, t)
	return b.String()
}

func writePath(b *strings.Builder, t *PathType) {
	if t.QSelf != nil {
		b.WriteByte('<')
		b.WriteString(t.QSelf.Type.Code())
		if t.QSelf.Trait != nil {
			b.WriteString(" as ")
			writePath(b, t.QSelf.Trait)
		}
		b.WriteString(">::")
	} else if t.Leading {
		b.WriteString("::")
	}
	for i, s := range t.Segments {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(s.Name)
		if s.Args != nil {
			b.WriteByte('<')
			for j, a := range s.Args {
				if j > 0 {
					b.WriteString(", ")
				}
				writeArg(b, a)
			}
			b.WriteByte('>')
		}
		if s.Fn != nil {
			b.WriteByte('(')
			writeTypes(b, s.Fn.Inputs)
			b.WriteByte(')')
			if s.Fn.Output != nil {
				b.WriteString(" -> ")
				b.WriteString(s.Fn.Output.Code())
			}
		}
	}
}

func writeArg(b *strings.Builder, a GenericArg) {
	if a.Assoc != "" {
		b.WriteString(a.Assoc)
		if a.Type != nil {
			b.WriteString(" = ")
		} else {
			b.WriteString(": ")
		}
	}
	switch {
	case a.Lifetime != "":
		b.WriteString(a.Lifetime)
	case a.Type != nil:
		b.WriteString(a.Type.Code())
	case a.Const != nil:
		b.WriteString(a.Const.Code())
	default:
		writeBounds(b, a.Bounds)
	}
}

func writeTypes(b *strings.Builder, ts []Type) {
	for i, t := range ts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.Code())
	}
}

func writeBounds(b *strings.Builder, bs []Bound) {
	for i, bd := range bs {
		if i > 0 {
			b.WriteString(" + ")
		}
		switch {
		case bd.Lifetime != "":
			b.WriteString(bd.Lifetime)
		default:
			if len(bd.ForLts) > 0 {
				b.WriteString("for")
				b.WriteString(bd.ForLts.Code())
				b.WriteByte(' ')
			}
			if bd.Maybe {
				b.WriteByte('?')
			}
			writePath(b, bd.Path)
		}
	}
}

func (t *RefType) Code() string {
	var b strings.Builder
	b.WriteByte('&')
	if t.Lifetime != "" {
		b.WriteString(t.Lifetime)
		b.WriteByte(' ')
	}
	if t.Mut {
		b.WriteString("mut ")
	}
	b.WriteString(t.Elem.Code())
	return b.String()
}

func (t *PtrType) Code() string {
	if t.Mut {
		return "*mut " + t.Elem.Code()
	}
	return "*const " + t.Elem.Code()
}

func (t *SliceType) Code() string { return "[" + t.Elem.Code() + "]" }
func (t *ArrayType) Code() string { return "[" + t.Elem.Code() + "; " + t.Len.Code() + "]" }
func (t *ParenType) Code() string { return "(" + t.Elem.Code() + ")" }
func (t *NeverType) Code() string { return "!" }
func (t *InferType) Code() string { return "_" }

func (t *TupleType) Code() string {
	var b strings.Builder
	b.WriteByte('(')
	writeTypes(&b, t.Elems)
	if len(t.Elems) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

func (t *FnType) Code() string {
	var b strings.Builder
	if len(t.Prefix) > 0 {
		b.WriteString(t.Prefix.Code())
		b.WriteByte(' ')
	}
	b.WriteString("fn(")
	writeTypes(&b, t.Inputs)
	b.WriteByte(')')
	if t.Output != nil {
		b.WriteString(" -> ")
		b.WriteString(t.Output.Code())
	}
	return b.String()
}

func (t *TraitObjectType) Code() string {
	var b strings.Builder
	if t.Dyn {
		b.WriteString("dyn ")
	}
	writeBounds(&b, t.Bounds)
	return b.String()
}

func (t *ImplTraitType) Code() string {
	var b strings.Builder
	b.WriteString("impl ")
	writeBounds(&b, t.Bounds)
	return b.String()
}

func (t *VerbatimType) Code() string { return t.Tokens.Code() }

// IsOption reports whether t is spelled as an Option and returns its
// argument.
func IsOption(t Type) (Type, bool) {
	p, ok := unparen(t).(*PathType)
	if !ok || p.QSelf != nil {
		return nil, false
	}
	last := p.Last()
	if last.Name != "Option" || len(last.Args) != 1 || last.Args[0].Type == nil || last.Args[0].Assoc != "" {
		return nil, false
	}
	return last.Args[0].Type, true
}

// NewPath returns a path type for an identifier with optional type
// arguments. It is used to build types the generator compares against,
// such as "Self" or the implementor type.
func NewPath(name string, args ...Type) *PathType {
	seg := Segment{Name: name}
	if len(args) > 0 {
		seg.Args = make([]GenericArg, len(args))
		for i, a := range args {
			seg.Args[i] = GenericArg{Type: a}
		}
	}
	return &PathType{Segments: []Segment{seg}}
}
