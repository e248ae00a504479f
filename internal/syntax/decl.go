package syntax

import (
	"go/token"
	"strings"
)

// AttrStyle is the syntactic form of an attribute.
type AttrStyle int

const (
	// AttrPath is a bare attribute: #[name]
	AttrPath AttrStyle = iota
	// AttrList is a parenthesized attribute: #[name(...)]
	AttrList
	// AttrNameValue is an assignment attribute: #[name = ...]
	AttrNameValue
)

// Attribute is an outer attribute.
type Attribute struct {
	Path  string
	Style AttrStyle
	Args  Stream

	pos, end token.Pos
	argsEnd  token.Pos
}

func (a Attribute) Pos() token.Pos { return a.pos }
func (a Attribute) End() token.Pos { return a.end }

// Cursor returns a cursor over the attribute's arguments.
func (a Attribute) Cursor() Cursor { return NewCursor(a.Args, a.argsEnd) }

// FieldsKind is the shape of a struct, union or variant body.
type FieldsKind int

const (
	Unit FieldsKind = iota
	Named
	Unnamed
)

// Field is a declared field. Name is empty for tuple fields.
type Field struct {
	Attrs []Attribute
	Name  string
	Index int
	Type  Type
	pos   token.Pos
	end   token.Pos
}

func (f Field) Pos() token.Pos { return f.pos }
func (f Field) End() token.Pos { return f.end }

// Fields is a list of fields of one shape.
type Fields struct {
	Kind FieldsKind
	List []Field
}

// Variant is an enum variant.
type Variant struct {
	Attrs        []Attribute
	Name         string
	Fields       Fields
	Discriminant Stream
	ident        Token
	pos, end     token.Pos
}

func (v Variant) Pos() token.Pos { return v.pos }
func (v Variant) End() token.Pos { return v.end }

// Ident returns the name token of the variant.
func (v Variant) Ident() Token { return v.ident }

// DeclKind is the kind of a declaration.
type DeclKind int

const (
	Struct DeclKind = iota
	Enum
	Union
)

func (k DeclKind) String() string {
	switch k {
	case Enum:
		return "enum"
	case Union:
		return "union"
	}
	return "struct"
}

// Decl is a struct, enum or union declaration with its outer attributes.
// Fields is set for structs and unions, Variants for enums.
type Decl struct {
	Attrs    []Attribute
	Kind     DeclKind
	Name     string
	Generics Generics
	Fields   Fields
	Variants []Variant

	// Derives lists the derive names requested by #[derive(...)], using the
	// last segment of each path.
	Derives []Token

	pos, end token.Pos
	kindPos  token.Pos
	ident    Token
}

func (d *Decl) Pos() token.Pos     { return d.pos }
func (d *Decl) End() token.Pos     { return d.end }
func (d *Decl) KindPos() token.Pos { return d.kindPos }

// Ident returns the name token of the declaration. Diagnostics about the
// declaration as a whole point at it.
func (d *Decl) Ident() Token { return d.ident }

// File is a parsed declaration file.
type File struct {
	Name  string
	Fset  *token.FileSet
	Src   []byte
	Decls []*Decl
}

// ParseFile reads every struct, enum and union declaration in src. Other
// items are skipped.
func ParseFile(fset *token.FileSet, filename string, src []byte) (*File, error) {
	toks, err := Lex(fset, filename, src)
	if err != nil {
		return nil, err
	}
	r := reader{fset}
	f := &File{Name: filename, Fset: fset, Src: src}

	c := NewCursor(toks, token.NoPos)
	for !c.EOF() {
		attrs, next, err := r.attrs(c)
		if err != nil {
			return nil, err
		}
		start := c.Pos()
		c = r.visibility(next)

		kw := c.Peek()
		switch {
		case kw.Is("struct"), kw.Is("enum"), kw.Is("union") && c.PeekAt(1).Kind == Ident:
			d, next, err := r.decl(c)
			if err != nil {
				return nil, err
			}
			d.Attrs = attrs
			d.pos = start
			d.Derives = derives(attrs)
			f.Decls = append(f.Decls, d)
			c = next
		default:
			c = skipItem(c)
		}
	}
	return f, nil
}

// skipItem skips an item this package does not model: everything up to a
// ';' or a brace-delimited body.
func skipItem(c Cursor) Cursor {
	for !c.EOF() {
		t, next := c.Next()
		c = next
		if t.IsPunct(';') || t.Kind == Group && t.Delim == Brace {
			return c
		}
	}
	return c
}

// attrs reads outer attributes. Inner attributes are skipped.
func (r reader) attrs(c Cursor) ([]Attribute, Cursor, error) {
	var attrs []Attribute
	for c.Peek().IsPunct('#') {
		hash := c.Peek()
		after := c.Skip(1)
		inner := false
		if after.Peek().IsPunct('!') {
			inner = true
			after = after.Skip(1)
		}
		body, next, ok := after.Group(Bracket)
		if !ok {
			return nil, c, r.errorf(hash, "expected `[` after `#`")
		}
		group := after.Peek()
		c = next
		if inner {
			continue
		}

		a := Attribute{pos: hash.pos, end: group.end}
		var path []string
		for {
			name, rest, ok := body.Ident()
			if !ok {
				return nil, c, r.errorf(name, "expected attribute path, found %c", name)
			}
			path = append(path, name.Text)
			body = rest
			if rest, ok := Colon2(body); ok {
				body = rest
				continue
			}
			break
		}
		a.Path = strings.Join(path, "::")

		switch t := body.Peek(); {
		case body.EOF():
			a.Style = AttrPath
		case t.Kind == Group && t.Delim == Paren:
			a.Style = AttrList
			a.Args = t.Inner
			a.argsEnd = t.end - 1
			if rest := body.Skip(1); !rest.EOF() {
				return nil, c, r.errorf(rest.Peek(), "unexpected %c after attribute arguments", rest.Peek())
			}
		case t.IsPunct('='):
			a.Style = AttrNameValue
			a.Args = body.Skip(1).Rest()
			a.argsEnd = group.end - 1
		default:
			return nil, c, r.errorf(t, "unexpected %c in attribute", t)
		}
		attrs = append(attrs, a)
	}
	return attrs, c, nil
}

// visibility skips "pub", "pub(crate)" and similar.
func (r reader) visibility(c Cursor) Cursor {
	next, ok := c.Keyword("pub")
	if !ok {
		return c
	}
	if _, after, ok := next.Group(Paren); ok {
		return after
	}
	return next
}

func derives(attrs []Attribute) []Token {
	var out []Token
	for _, a := range attrs {
		if a.Path != "derive" || a.Style != AttrList {
			continue
		}
		for _, path := range a.Args.Split(',') {
			if len(path) > 0 && path[len(path)-1].Kind == Ident {
				out = append(out, path[len(path)-1])
			}
		}
	}
	return out
}

func (r reader) decl(c Cursor) (*Decl, Cursor, error) {
	kw, c := c.Next()
	d := &Decl{kindPos: kw.pos}
	switch kw.Text {
	case "enum":
		d.Kind = Enum
	case "union":
		d.Kind = Union
	}

	name, c, ok := c.Ident()
	if !ok {
		return nil, c, r.errorf(name, "expected %s name, found %c", d.Kind, name)
	}
	d.Name = name.Text
	d.ident = name

	g, c, err := r.generics(c)
	if err != nil {
		return nil, c, err
	}
	d.Generics = g

	if d.Kind == Enum {
		c = r.where(c, &d.Generics)
		body, next, ok := c.Group(Brace)
		if !ok {
			return nil, c, r.errorf(c.Peek(), "expected enum body, found %c", c.Peek())
		}
		d.end = c.Peek().end
		variants, err := r.variants(body)
		if err != nil {
			return nil, c, err
		}
		d.Variants = variants
		return d, next, nil
	}

	if body, next, ok := c.Group(Paren); ok {
		fields, err := r.tupleFields(body)
		if err != nil {
			return nil, c, err
		}
		d.Fields = fields
		c = r.where(next, &d.Generics)
		semi, next, ok := c.Punct(';')
		if !ok {
			return nil, c, r.errorf(semi, "expected `;` after tuple struct, found %c", semi)
		}
		d.end = semi.end
		return d, next, nil
	}

	c = r.where(c, &d.Generics)
	if semi, next, ok := c.Punct(';'); ok {
		d.Fields = Fields{Kind: Unit}
		d.end = semi.end
		return d, next, nil
	}
	body, next, ok := c.Group(Brace)
	if !ok {
		return nil, c, r.errorf(c.Peek(), "expected %s body, found %c", d.Kind, c.Peek())
	}
	d.end = c.Peek().end
	fields, err := r.namedFields(body)
	if err != nil {
		return nil, c, err
	}
	d.Fields = fields
	return d, next, nil
}

func (r reader) namedFields(c Cursor) (Fields, error) {
	fs := Fields{Kind: Named, List: []Field{}}
	for !c.EOF() {
		attrs, next, err := r.attrs(c)
		if err != nil {
			return fs, err
		}
		start := next.Pos()
		next = r.visibility(next)
		name, next, ok := next.Ident()
		if !ok {
			return fs, r.errorf(name, "expected field name, found %c", name)
		}
		colon, next, ok := next.Punct(':')
		if !ok {
			return fs, r.errorf(colon, "expected `:` after field name, found %c", colon)
		}
		t, next, err := r.typ(next)
		if err != nil {
			return fs, err
		}
		fs.List = append(fs.List, Field{
			Attrs: attrs, Name: name.Text, Index: len(fs.List), Type: t,
			pos: start, end: t.End(),
		})
		c = next
		if !c.EOF() {
			comma, next, ok := c.Punct(',')
			if !ok {
				return fs, r.errorf(comma, "expected `,` between fields, found %c", comma)
			}
			c = next
		}
	}
	return fs, nil
}

func (r reader) tupleFields(c Cursor) (Fields, error) {
	fs := Fields{Kind: Unnamed, List: []Field{}}
	for !c.EOF() {
		attrs, next, err := r.attrs(c)
		if err != nil {
			return fs, err
		}
		start := next.Pos()
		next = r.visibility(next)
		t, next, err := r.typ(next)
		if err != nil {
			return fs, err
		}
		fs.List = append(fs.List, Field{
			Attrs: attrs, Index: len(fs.List), Type: t,
			pos: start, end: t.End(),
		})
		c = next
		if !c.EOF() {
			comma, next, ok := c.Punct(',')
			if !ok {
				return fs, r.errorf(comma, "expected `,` between fields, found %c", comma)
			}
			c = next
		}
	}
	return fs, nil
}

func (r reader) variants(c Cursor) ([]Variant, error) {
	var vs []Variant
	for !c.EOF() {
		attrs, next, err := r.attrs(c)
		if err != nil {
			return nil, err
		}
		c = r.visibility(next)
		name, next, ok := c.Ident()
		if !ok {
			return nil, r.errorf(name, "expected variant name, found %c", name)
		}
		v := Variant{Attrs: attrs, Name: name.Text, ident: name, pos: name.pos, end: name.end}
		c = next

		if body, next, ok := c.Group(Paren); ok {
			v.end = c.Peek().end
			if v.Fields, err = r.tupleFields(body); err != nil {
				return nil, err
			}
			c = next
		} else if body, next, ok := c.Group(Brace); ok {
			v.end = c.Peek().end
			if v.Fields, err = r.namedFields(body); err != nil {
				return nil, err
			}
			c = next
		}

		if _, next, ok := c.Punct('='); ok {
			start := next
			for !next.EOF() && !next.Peek().IsPunct(',') {
				_, next = next.Next()
			}
			v.Discriminant = next.Since(start)
			c = next
		}
		vs = append(vs, v)

		if !c.EOF() {
			comma, next, ok := c.Punct(',')
			if !ok {
				return nil, r.errorf(comma, "expected `,` between variants, found %c", comma)
			}
			c = next
		}
	}
	return vs, nil
}
