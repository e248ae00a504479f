// Package fields classifies the fields and variants of a declaration for one
// derive. The classification decides which fields are live, and it is shared
// by the body generators and bound inference so that both agree.
package fields

import (
	"go/token"
	"slices"
	"strconv"
	"strings"

	"github.com/sublee/derivegen/internal/attr"
	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/syntax"
)

// Mode is how the live fields of a variant were chosen.
type Mode int

const (
	// Structural includes every field.
	Structural Mode = iota
	// Filtered includes every field not marked to be skipped.
	Filtered
	// Explicit includes only fields carrying a selecting directive.
	Explicit
)

func (m Mode) String() string {
	switch m {
	case Filtered:
		return "filtered"
	case Explicit:
		return "explicit"
	}
	return "structural"
}

// Field is one field or tuple position of a struct or variant.
type Field struct {
	Index int
	// Name is empty for tuple fields.
	Name string
	Type syntax.Type
	Attr attr.Directive

	Skipped bool
	Live    bool

	pos, end token.Pos
}

func (f Field) Pos() token.Pos { return f.pos }
func (f Field) End() token.Pos { return f.end }

// Member is how the field is accessed: "name" or "0".
func (f Field) Member() string {
	if f.Name != "" {
		return f.Name
	}
	return strconv.Itoa(f.Index)
}

// Binding is the identifier a destructuring pattern binds the field to:
// its name, or "_0" for a tuple field.
func (f Field) Binding() string {
	if f.Name != "" {
		return f.Name
	}
	return "_" + strconv.Itoa(f.Index)
}

// Variant is an enum variant, or the single implicit variant of a struct or
// union.
type Variant struct {
	// Name is empty for the implicit variant.
	Name   string
	Kind   syntax.FieldsKind
	Attr   attr.Directive
	Fields []Field
	Mode   Mode

	ident    syntax.Token
	pos, end token.Pos
}

func (v *Variant) Pos() token.Pos { return v.pos }
func (v *Variant) End() token.Pos { return v.end }

// Ident returns the name token of the variant, or of the declaration for
// the implicit variant.
func (v *Variant) Ident() syntax.Token { return v.ident }

// Skipped reports whether the variant itself is marked to be skipped.
func (v *Variant) Skipped() bool {
	return v.Attr != nil && v.Attr.Kind() == attr.KindSkip
}

// Live returns the live fields in declaration order.
func (v *Variant) Live() []Field {
	var live []Field
	for _, f := range v.Fields {
		if f.Live {
			live = append(live, f)
		}
	}
	return live
}

// HasSkipped reports whether some field is excluded by a skip directive.
func (v *Variant) HasSkipped() bool {
	return slices.ContainsFunc(v.Fields, func(f Field) bool { return f.Skipped })
}

// Format returns the variant's format directive, if it has a literal.
func (v *Variant) Format() *attr.Format {
	if f, ok := v.Attr.(*attr.Format); ok && f.HasLit() {
		return f
	}
	return nil
}

// Path is the expression naming the variant: "Self" or "Self::Name".
func (v *Variant) Path() string {
	if v.Name == "" {
		return "Self"
	}
	return "Self::" + v.Name
}

// Pattern renders a destructuring pattern for the variant. bind returns
// the binding of a field, or "" to leave the field unbound.
//
//	Self::Point { x, y: __other_y, .. }
//	Self::Pair(_0, _)
func (v *Variant) Pattern(path string, bind func(Field) string) string {
	switch v.Kind {
	case syntax.Named:
		var parts []string
		omitted := false
		for _, f := range v.Fields {
			b := bind(f)
			switch {
			case b == "":
				omitted = true
			case b == f.Name:
				parts = append(parts, b)
			default:
				parts = append(parts, f.Name+": "+b)
			}
		}
		if omitted {
			parts = append(parts, "..")
		}
		if len(parts) == 0 {
			return path + " {}"
		}
		return path + " { " + strings.Join(parts, ", ") + " }"

	case syntax.Unnamed:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			if parts[i] = bind(f); parts[i] == "" {
				parts[i] = "_"
			}
		}
		return path + "(" + strings.Join(parts, ", ") + ")"
	}
	return path
}

// Bind binds every field to [Field.Binding].
func Bind(f Field) string { return f.Binding() }

// BindLive binds only live fields.
func BindLive(f Field) string {
	if f.Live {
		return f.Binding()
	}
	return ""
}

// Item is a classified declaration.
type Item struct {
	Decl *syntax.Decl
	// Attr is the container directive. For a struct or union it is also the
	// directive of the implicit variant.
	Attr     attr.Directive
	Variants []*Variant
}

// IsEnum reports whether the declaration is an enum.
func (it *Item) IsEnum() bool { return it.Decl.Kind == syntax.Enum }

// Bounds collects the bound(...) predicates of every directive of the item
// in source order.
func (it *Item) Bounds() []syntax.Stream {
	var out []syntax.Stream
	add := func(d attr.Directive) {
		if f, ok := d.(*attr.Format); ok {
			out = append(out, f.Bounds...)
		}
	}
	add(it.Attr)
	for _, v := range it.Variants {
		if it.IsEnum() {
			add(v.Attr)
		}
		for _, f := range v.Fields {
			add(f.Attr)
		}
	}
	return out
}

// Options configures the classification for one derive.
type Options struct {
	// Trait names the derive in diagnostics.
	Trait string
	// Names are the attribute names the derive reads. The first is used in
	// diagnostics.
	Names []string

	Container attr.Grammar
	Variant   attr.Grammar
	Field     attr.Grammar

	// Explicit lists the field directive kinds that select fields. Fields
	// carrying any other directive, a skip excepted, stay structural.
	Explicit []attr.Kind

	// MixedSkip allows skip directives next to selecting siblings.
	MixedSkip bool

	// Exclusive rejects field directives under a container or variant
	// directive.
	Exclusive bool

	// RequireSingle demands exactly one live field in every variant which
	// is not skipped.
	RequireSingle bool
}

func (o Options) name() string {
	if len(o.Names) == 0 {
		return ""
	}
	return o.Names[0]
}

func (o Options) parser(fset *token.FileSet, g attr.Grammar) attr.Parser {
	return attr.Parser{Fset: fset, Names: o.Names, Grammar: g}
}

// Enumerate classifies the declaration d.
func Enumerate(fset *token.FileSet, d *syntax.Decl, opts Options) (*Item, error) {
	it := &Item{Decl: d}

	var err error
	it.Attr, err = opts.parser(fset, opts.Container).ParseAttrs(d.Attrs)
	if err != nil {
		return nil, err
	}

	if d.Kind != syntax.Enum {
		v := &Variant{
			Kind:  d.Fields.Kind,
			Attr:  it.Attr,
			ident: d.Ident(),
			pos:   d.Ident().Pos(),
			end:   d.Ident().End(),
		}
		if err := enumerateFields(fset, v, d.Fields, d.Kind.String(), opts); err != nil {
			return nil, err
		}
		it.Variants = []*Variant{v}
		return it, nil
	}

	for _, sv := range d.Variants {
		v := &Variant{
			Name:  sv.Name,
			Kind:  sv.Fields.Kind,
			ident: sv.Ident(),
			pos:   sv.Ident().Pos(),
			end:   sv.Ident().End(),
		}
		v.Attr, err = opts.parser(fset, opts.Variant).ParseAttrs(sv.Attrs)
		if err != nil {
			return nil, err
		}
		if err := enumerateFields(fset, v, sv.Fields, "variant", opts); err != nil {
			return nil, err
		}
		it.Variants = append(it.Variants, v)
	}
	return it, nil
}

func enumerateFields(fset *token.FileSet, v *Variant, fs syntax.Fields, owner string, opts Options) error {
	p := opts.parser(fset, opts.Field)

	var explicit, skipped []Field
	for _, sf := range fs.List {
		d, err := p.ParseAttrs(sf.Attrs)
		if err != nil {
			return err
		}
		f := Field{
			Index: sf.Index,
			Name:  sf.Name,
			Type:  sf.Type,
			Attr:  d,
			pos:   sf.Pos(),
			end:   sf.End(),
		}
		if d != nil {
			if opts.Exclusive && selects(v.Attr) {
				return codefmt.Errorf(fset, d,
					"`#[%s(...)]` on a field cannot be combined with `#[%s(...)]` on its %s",
					opts.name(), opts.name(), owner)
			}
			switch {
			case d.Kind() == attr.KindSkip:
				f.Skipped = true
				skipped = append(skipped, f)
			case slices.Contains(opts.Explicit, d.Kind()):
				explicit = append(explicit, f)
			}
		}
		v.Fields = append(v.Fields, f)
	}

	switch {
	case v.Skipped():
		// Nothing is live in a skipped variant.
	case len(explicit) != 0:
		if !opts.MixedSkip && len(skipped) != 0 {
			return codefmt.Errorf(fset, skipped[0].Attr,
				"`#[%s(%s)]` cannot be mixed with other `#[%s(...)]` field directives\n\tfields without a directive are already excluded",
				opts.name(), skipWord(skipped[0].Attr), opts.name())
		}
		v.Mode = Explicit
		for i := range v.Fields {
			v.Fields[i].Live = v.Fields[i].Attr != nil && slices.Contains(opts.Explicit, v.Fields[i].Attr.Kind())
		}
	case len(skipped) != 0:
		v.Mode = Filtered
		for i := range v.Fields {
			v.Fields[i].Live = !v.Fields[i].Skipped
		}
	default:
		v.Mode = Structural
		for i := range v.Fields {
			v.Fields[i].Live = true
		}
	}

	if opts.RequireSingle && !v.Skipped() {
		if _, err := v.Sole(fset, opts.Trait, opts.name()); err != nil {
			return err
		}
	}
	return nil
}

// selects reports whether a container or variant directive does more than
// add bounds.
func selects(d attr.Directive) bool {
	if d == nil {
		return false
	}
	if f, ok := d.(*attr.Format); ok {
		return f.HasLit()
	}
	return true
}

func skipWord(d attr.Directive) string {
	if s, ok := d.(*attr.Skip); ok {
		return s.Word
	}
	return "skip"
}

// Sole returns the only live field of v. It is an arity error when there
// is none or more than one. name is the attribute to suggest for marking a
// field.
func (v *Variant) Sole(fset *token.FileSet, trait, name string) (Field, error) {
	live := v.Live()
	if len(live) == 1 {
		return live[0], nil
	}
	what := "struct"
	if v.Name != "" {
		what = "variant"
	}
	if len(live) == 0 {
		return Field{}, codefmt.Errorf(fset, v.ident,
			"cannot infer the field for `%s`: the %s has no eligible field", trait, what)
	}
	return Field{}, codefmt.Errorf(fset, v.ident,
		"cannot infer the field for `%s`: the %s has %d eligible fields\n\tmark one field with `#[%s]`",
		trait, what, len(live), name)
}
