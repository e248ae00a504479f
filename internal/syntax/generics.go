package syntax

import (
	"go/token"
	"strings"
)

// ParamKind is the kind of a generic parameter.
type ParamKind int

const (
	LifetimeParam ParamKind = iota
	TypeParam
	ConstParam
)

// GenericParam is one parameter of a declaration's generics.
type GenericParam struct {
	Kind    ParamKind
	Name    string
	Bounds  Stream
	Type    Type
	Default Stream
	pos     token.Pos
}

func (p GenericParam) Pos() token.Pos { return p.pos }

// Generics is the generic parameter list and where clause of a
// declaration.
type Generics struct {
	Params []GenericParam
	Where  []Stream
}

// Names returns the names of parameters of the given kind.
func (g Generics) Names(kind ParamKind) []string {
	var names []string
	for _, p := range g.Params {
		if p.Kind == kind {
			names = append(names, p.Name)
		}
	}
	return names
}

// Impl renders the parameters for an impl header, bounds included and
// defaults dropped: "<'a, T: Clone, const N: usize>". It is empty when
// there are no parameters.
func (g Generics) Impl() string {
	if len(g.Params) == 0 {
		return ""
	}
	parts := make([]string, len(g.Params))
	for i, p := range g.Params {
		switch p.Kind {
		case ConstParam:
			parts[i] = "const " + p.Name + ": " + p.Type.Code()
		default:
			parts[i] = p.Name
			if len(p.Bounds) > 0 {
				parts[i] += ": " + p.Bounds.Code()
			}
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// Ty renders the parameters as arguments of the declared type:
// "<'a, T, N>".
func (g Generics) Ty() string {
	if len(g.Params) == 0 {
		return ""
	}
	parts := make([]string, len(g.Params))
	for i, p := range g.Params {
		parts[i] = p.Name
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// WithType returns a copy of g with an extra unbounded type parameter.
func (g Generics) WithType(name string) Generics {
	params := make([]GenericParam, len(g.Params), len(g.Params)+1)
	copy(params, g.Params)
	g.Params = append(params, GenericParam{Kind: TypeParam, Name: name})
	return g
}

// generics parses "<...>" at c, if present.
func (r reader) generics(c Cursor) (Generics, Cursor, error) {
	var g Generics
	if !c.Peek().IsPunct('<') {
		return g, c, nil
	}
	open := c.Peek()
	_, c = c.Next()

	// Find the matching '>' to delimit the parameter list.
	start := c
	depth := 1
	for depth > 0 {
		if c.EOF() {
			return g, c, r.errorf(open, "unclosed generic parameter list")
		}
		t, next := c.Next()
		switch {
		case t.IsPunct('<'):
			depth++
		case t.IsPunct('>') && !(c.i > 0 && c.s[c.i-1].IsPunct('-') && c.s[c.i-1].Joint):
			depth--
		}
		if depth > 0 {
			c = next
			continue
		}
		list := c.Since(start)
		c = next
		for _, seg := range list.Split(',') {
			p, err := r.genericParam(seg)
			if err != nil {
				return g, c, err
			}
			g.Params = append(g.Params, p)
		}
	}
	return g, c, nil
}

func (r reader) genericParam(s Stream) (GenericParam, error) {
	c := NewCursor(s, token.NoPos)
	// Attributes on generic parameters do not affect expansion.
	for c.Peek().IsPunct('#') {
		_, next, ok := c.Skip(1).Group(Bracket)
		if !ok {
			break
		}
		c = next
	}

	var p GenericParam
	p.pos = c.Pos()
	tok := c.Peek()
	switch {
	case tok.Kind == Lifetime:
		p.Kind = LifetimeParam
		p.Name = tok.Text
		_, c = c.Next()

	case tok.Is("const"):
		p.Kind = ConstParam
		_, c = c.Next()
		name, next, ok := c.Ident()
		if !ok {
			return p, r.errorf(name, "expected const parameter name")
		}
		p.Name = name.Text
		_, next, ok = next.Punct(':')
		if !ok {
			return p, r.errorf(next.Peek(), "expected `:` after const parameter name")
		}
		t, next, err := r.typ(next)
		if err != nil {
			return p, err
		}
		p.Type = t
		if _, next, ok := next.Punct('='); ok {
			p.Default = next.Rest()
		}
		return p, nil

	case tok.Kind == Ident:
		p.Kind = TypeParam
		p.Name = tok.Text
		_, c = c.Next()

	default:
		return p, r.errorf(tok, "expected generic parameter, found %c", tok)
	}

	rest := c.Rest()
	if len(rest) > 0 && rest[0].IsPunct(':') {
		rest = rest[1:]
		bounds := rest
		if i := indexTop(rest, '='); i >= 0 {
			bounds = rest[:i]
			p.Default = rest[i+1:]
		}
		p.Bounds = bounds
	} else if len(rest) > 0 && rest[0].IsPunct('=') {
		p.Default = rest[1:]
	} else if len(rest) > 0 {
		return p, r.errorf(rest[0], "unexpected %c in generic parameter", rest[0])
	}
	return p, nil
}

// indexTop returns the index of the first punctuation ch outside angle
// brackets.
func indexTop(s Stream, ch byte) int {
	depth := 0
	for i, t := range s {
		switch {
		case t.IsPunct('<'):
			depth++
		case t.IsPunct('>') && !(i > 0 && s[i-1].IsPunct('-') && s[i-1].Joint):
			depth--
		case t.IsPunct(ch) && depth == 0:
			if ch == '=' && (t.Joint && i+1 < len(s) && s[i+1].IsPunct('=')) {
				continue
			}
			return i
		}
	}
	return -1
}

// where parses a where clause at c up to the next group or ';'.
func (r reader) where(c Cursor, g *Generics) Cursor {
	next, ok := c.Keyword("where")
	if !ok {
		return c
	}
	c = next
	start := c
	for !c.EOF() {
		t := c.Peek()
		if t.IsPunct(';') || t.Kind == Group && t.Delim == Brace {
			break
		}
		_, c = c.Next()
	}
	for _, pred := range c.Since(start).Split(',') {
		if len(pred) > 0 {
			g.Where = append(g.Where, pred)
		}
	}
	return c
}
