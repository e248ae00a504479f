package syntax

import (
	"go/token"

	"github.com/sublee/derivegen/internal/codefmt"
)

// reader parses types and declarations from token cursors. fset resolves
// positions in errors.
type reader struct {
	fset *token.FileSet
}

func (r reader) errorf(poser codefmt.Poser, format string, args ...any) error {
	return codefmt.Errorf(r.fset, poser, format, args...)
}

// ParseType parses one type at c and returns the cursor after it.
func ParseType(fset *token.FileSet, c Cursor) (Type, Cursor, error) {
	return reader{fset}.typ(c)
}

// ParseTypeString parses a standalone type such as "Vec<T>".
func ParseTypeString(s string) (Type, error) {
	fset := token.NewFileSet()
	toks, err := Lex(fset, "<type>", []byte(s))
	if err != nil {
		return nil, err
	}
	r := reader{fset}
	t, c, err := r.typ(NewCursor(toks, token.NoPos))
	if err != nil {
		return nil, err
	}
	if !c.EOF() {
		return nil, r.errorf(c.Peek(), "unexpected %c after type", c.Peek())
	}
	return t, nil
}

func (r reader) typ(c Cursor) (Type, Cursor, error) {
	start := c.Peek()
	if c.EOF() {
		return nil, c, r.errorf(start, "expected type, found end of input")
	}

	switch {
	case start.Kind == Group && start.Delim == Paren:
		inner, next, _ := c.Group(Paren)
		var elems []Type
		trailing := false
		for !inner.EOF() {
			t, rest, err := r.typ(inner)
			if err != nil {
				return nil, c, err
			}
			elems = append(elems, t)
			inner = rest
			trailing = false
			if _, rest, ok := inner.Punct(','); ok {
				inner = rest
				trailing = true
				continue
			}
			if !inner.EOF() {
				return nil, c, r.errorf(inner.Peek(), "expected `,` or `)` in tuple type")
			}
		}
		sp := span{start.pos, start.end}
		if len(elems) == 1 && !trailing {
			return &ParenType{sp, elems[0]}, next, nil
		}
		return &TupleType{sp, elems}, next, nil

	case start.Kind == Group && start.Delim == Bracket:
		inner, next, _ := c.Group(Bracket)
		elem, rest, err := r.typ(inner)
		if err != nil {
			return nil, c, err
		}
		sp := span{start.pos, start.end}
		if _, rest, ok := rest.Punct(';'); ok {
			return &ArrayType{sp, elem, rest.Rest()}, next, nil
		}
		if !rest.EOF() {
			return nil, c, r.errorf(rest.Peek(), "expected `;` or `]` in slice type")
		}
		return &SliceType{sp, elem}, next, nil

	case start.IsPunct('&'):
		_, c = c.Next()
		t := &RefType{}
		if lt := c.Peek(); lt.Kind == Lifetime {
			t.Lifetime = lt.Text
			_, c = c.Next()
		}
		c, t.Mut = c.Keyword("mut")
		elem, c, err := r.typ(c)
		if err != nil {
			return nil, c, err
		}
		t.Elem = elem
		t.span = span{start.pos, elem.End()}
		return t, c, nil

	case start.IsPunct('*'):
		_, c = c.Next()
		t := &PtrType{}
		var ok bool
		if c, ok = c.Keyword("mut"); ok {
			t.Mut = true
		} else if c, ok = c.Keyword("const"); !ok {
			return nil, c, r.errorf(c.Peek(), "expected `mut` or `const` in raw pointer type")
		}
		elem, c, err := r.typ(c)
		if err != nil {
			return nil, c, err
		}
		t.Elem = elem
		t.span = span{start.pos, elem.End()}
		return t, c, nil

	case start.IsPunct('!'):
		_, c = c.Next()
		return &NeverType{span{start.pos, start.end}}, c, nil

	case start.Is("_"):
		_, c = c.Next()
		return &InferType{span{start.pos, start.end}}, c, nil

	case start.Is("fn") || start.Is("unsafe") || start.Is("extern"):
		return r.fnType(c)

	case start.Is("for") && c.PeekAt(1).IsPunct('<'):
		// A higher-ranked prefix: either a bare fn type or a bound.
		after, ok := QSelfSpan(Cursor{c.s, c.i + 1, c.end})
		if ok && (after.Peek().Is("fn") || after.Peek().Is("unsafe") || after.Peek().Is("extern")) {
			return r.fnType(after)
		}
		bounds, next, err := r.bounds(c)
		if err != nil {
			return nil, c, err
		}
		return &TraitObjectType{span{start.pos, next.prevEnd()}, false, bounds}, next, nil

	case start.Is("dyn"):
		_, c = c.Next()
		bounds, next, err := r.bounds(c)
		if err != nil {
			return nil, c, err
		}
		return &TraitObjectType{span{start.pos, next.prevEnd()}, true, bounds}, next, nil

	case start.Is("impl"):
		_, c = c.Next()
		bounds, next, err := r.bounds(c)
		if err != nil {
			return nil, c, err
		}
		return &ImplTraitType{span{start.pos, next.prevEnd()}, bounds}, next, nil

	case start.IsPunct('<'), start.IsPunct(':'), start.Kind == Ident:
		path, next, err := r.path(c)
		if err != nil {
			return nil, c, err
		}
		if bang, group := next.Peek(), next.PeekAt(1); bang.IsPunct('!') && group.Kind == Group {
			end := Cursor{next.s, next.i + 2, next.end}
			return &VerbatimType{span{start.pos, group.end}, end.Since(c)}, end, nil
		}
		return path, next, nil
	}

	return nil, c, r.errorf(start, "expected type, found %c", start)
}

// prevEnd returns the end of the token before the cursor.
func (c Cursor) prevEnd() token.Pos {
	if c.i == 0 || c.i > len(c.s) {
		return c.end
	}
	return c.s[c.i-1].end
}

func (r reader) fnType(c Cursor) (Type, Cursor, error) {
	start := c
	for !c.EOF() && !c.Peek().Is("fn") {
		_, c = c.Next()
	}
	t := &FnType{Prefix: c.Since(start)}
	c, _ = c.Keyword("fn")
	inner, next, ok := c.Group(Paren)
	if !ok {
		return nil, c, r.errorf(c.Peek(), "expected parameters of fn type")
	}
	inputs, err := r.fnInputs(inner)
	if err != nil {
		return nil, c, err
	}
	t.Inputs = inputs
	c = next
	if out, ok := r.arrow(c); ok {
		output, next, err := r.typ(out)
		if err != nil {
			return nil, c, err
		}
		t.Output = output
		c = next
	}
	t.span = span{start.Pos(), c.prevEnd()}
	return t, c, nil
}

// arrow consumes "->".
func (r reader) arrow(c Cursor) (Cursor, bool) {
	t, next, ok := c.Punct('-')
	if !ok || !t.Joint {
		return c, false
	}
	if _, next, ok = next.Punct('>'); !ok {
		return c, false
	}
	return next, true
}

// fnInputs parses comma-separated parameter types, skipping parameter
// names such as "x: T".
func (r reader) fnInputs(c Cursor) ([]Type, error) {
	var ts []Type
	for !c.EOF() {
		if name := c.Peek(); name.Kind == Ident || name.Is("_") {
			if colon := c.PeekAt(1); colon.IsPunct(':') && !colon.Joint {
				c = Cursor{c.s, c.i + 2, c.end}
			}
		}
		t, next, err := r.typ(c)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
		c = next
		if _, next, ok := c.Punct(','); ok {
			c = next
		} else if !c.EOF() {
			return nil, r.errorf(c.Peek(), "expected `,` between parameters")
		}
	}
	return ts, nil
}

func (r reader) path(c Cursor) (*PathType, Cursor, error) {
	start := c.Peek()
	t := &PathType{}

	if start.IsPunct('<') {
		_, c = c.Next()
		self, next, err := r.typ(c)
		if err != nil {
			return nil, c, err
		}
		c = next
		t.QSelf = &QSelf{Type: self}
		if next, ok := c.Keyword("as"); ok {
			trait, next, err := r.path(next)
			if err != nil {
				return nil, c, err
			}
			t.QSelf.Trait = trait
			c = next
		}
		if _, next, ok := c.Punct('>'); ok {
			c = next
		} else {
			return nil, c, r.errorf(c.Peek(), "expected `>` to close qualified path")
		}
		next, ok := Colon2(c)
		if !ok {
			return nil, c, r.errorf(c.Peek(), "expected `::` after qualified self type")
		}
		c = next
	} else if next, ok := Colon2(c); ok {
		t.Leading = true
		c = next
	}

	for {
		name, next, ok := c.Ident()
		if !ok {
			return nil, c, r.errorf(name, "expected identifier in path, found %c", name)
		}
		c = next
		seg := Segment{Name: name.Text}

		// Generic arguments, with or without turbofish.
		argc := c
		if next, ok := Colon2(c); ok && next.Peek().IsPunct('<') {
			argc = next
		}
		if argc.Peek().IsPunct('<') {
			args, next, err := r.genericArgs(argc)
			if err != nil {
				return nil, c, err
			}
			seg.Args = args
			c = next
		} else if inner, next, ok := c.Group(Paren); ok && isFnTrait(name.Text) {
			inputs, err := r.fnInputs(inner)
			if err != nil {
				return nil, c, err
			}
			seg.Fn = &FnSugar{Inputs: inputs}
			c = next
			if out, ok := r.arrow(c); ok {
				output, next, err := r.typ(out)
				if err != nil {
					return nil, c, err
				}
				seg.Fn.Output = output
				c = next
			}
		}
		t.Segments = append(t.Segments, seg)

		next, ok = Colon2(c)
		if !ok || next.Peek().Kind != Ident {
			break
		}
		c = next
	}

	t.span = span{start.pos, c.prevEnd()}
	return t, c, nil
}

func isFnTrait(name string) bool {
	return name == "Fn" || name == "FnMut" || name == "FnOnce"
}

// genericArgs parses "<...>" at c.
func (r reader) genericArgs(c Cursor) ([]GenericArg, Cursor, error) {
	_, c, _ = c.Punct('<')
	args := []GenericArg{}
	for {
		if _, next, ok := c.Punct('>'); ok {
			return args, next, nil
		}
		if c.EOF() {
			return nil, c, r.errorf(c.Peek(), "expected `>` to close generic arguments")
		}

		var arg GenericArg
		tok := c.Peek()
		switch {
		case tok.Kind == Lifetime:
			arg.Lifetime = tok.Text
			_, c = c.Next()

		case tok.Kind == Literal, tok.Kind == Group && tok.Delim == Brace:
			_, next := c.Next()
			arg.Const = next.Since(c)
			c = next

		case tok.IsPunct('-') && c.PeekAt(1).Kind == Literal:
			next := Cursor{c.s, c.i + 2, c.end}
			arg.Const = next.Since(c)
			c = next

		case tok.Kind == Ident && c.PeekAt(1).IsPunct('=') && !c.PeekAt(1).Joint:
			arg.Assoc = tok.Text
			t, next, err := r.typ(Cursor{c.s, c.i + 2, c.end})
			if err != nil {
				return nil, c, err
			}
			arg.Type = t
			c = next

		case tok.Kind == Ident && c.PeekAt(1).IsPunct(':') && !c.PeekAt(1).Joint:
			arg.Assoc = tok.Text
			bounds, next, err := r.bounds(Cursor{c.s, c.i + 2, c.end})
			if err != nil {
				return nil, c, err
			}
			arg.Bounds = bounds
			c = next

		default:
			t, next, err := r.typ(c)
			if err != nil {
				return nil, c, err
			}
			arg.Type = t
			c = next
		}
		args = append(args, arg)

		if _, next, ok := c.Punct(','); ok {
			c = next
		} else if !c.Peek().IsPunct('>') {
			return nil, c, r.errorf(c.Peek(), "expected `,` or `>` in generic arguments, found %c", c.Peek())
		}
	}
}

// bounds parses "Bound + Bound + ...".
func (r reader) bounds(c Cursor) ([]Bound, Cursor, error) {
	var bs []Bound
	for {
		var b Bound
		tok := c.Peek()
		switch {
		case tok.Kind == Lifetime:
			b.Lifetime = tok.Text
			_, c = c.Next()
		default:
			if tok.Is("for") {
				after, ok := QSelfSpan(Cursor{c.s, c.i + 1, c.end})
				if !ok {
					return nil, c, r.errorf(tok, "expected `<` after `for`")
				}
				b.ForLts = Stream(after.Since(c)[1:])
				c = after
			}
			if _, next, ok := c.Punct('?'); ok {
				b.Maybe = true
				c = next
			}
			p, next, err := r.path(c)
			if err != nil {
				return nil, c, err
			}
			b.Path = p
			c = next
		}
		bs = append(bs, b)

		next, ok := PunctP('+')(c)
		if !ok {
			return bs, c, nil
		}
		c = next
	}
}
