package syntax

import "go/token"

// Cursor is an immutable position in a token stream. Advancing returns a
// new cursor, so saving and restoring a position is plain assignment.
type Cursor struct {
	s   Stream
	i   int
	end token.Pos
}

// NewCursor returns a cursor at the start of s. end is reported as the
// position of the end of input; it is usually the closing delimiter of the
// group holding s.
func NewCursor(s Stream, end token.Pos) Cursor {
	if !end.IsValid() {
		end = s.End()
	}
	return Cursor{s: s, end: end}
}

// EOF reports whether the cursor is at the end of its stream.
func (c Cursor) EOF() bool { return c.i >= len(c.s) }

// Peek returns the current token, or an EOF token positioned at the end.
func (c Cursor) Peek() Token {
	if c.EOF() {
		return Token{Kind: EOF, pos: c.end, end: c.end}
	}
	return c.s[c.i]
}

// PeekAt returns the token n positions ahead.
func (c Cursor) PeekAt(n int) Token {
	return Cursor{s: c.s, i: c.i + n, end: c.end}.Peek()
}

// Next returns the current token and the cursor after it.
func (c Cursor) Next() (Token, Cursor) {
	t := c.Peek()
	if !c.EOF() {
		c.i++
	}
	return t, c
}

// Skip advances the cursor by n tokens.
func (c Cursor) Skip(n int) Cursor {
	c.i = min(c.i+n, len(c.s))
	return c
}

// Pos returns the position of the current token.
func (c Cursor) Pos() token.Pos { return c.Peek().pos }

// Rest returns the remaining tokens.
func (c Cursor) Rest() Stream {
	if c.EOF() {
		return nil
	}
	return c.s[c.i:]
}

// Since returns the tokens between an earlier cursor and c.
func (c Cursor) Since(from Cursor) Stream {
	return c.s[from.i:c.i]
}

// Ident consumes an identifier.
func (c Cursor) Ident() (Token, Cursor, bool) {
	t := c.Peek()
	if t.Kind != Ident {
		return t, c, false
	}
	return t, Cursor{c.s, c.i + 1, c.end}, true
}

// Keyword consumes the identifier kw.
func (c Cursor) Keyword(kw string) (Cursor, bool) {
	if t := c.Peek(); t.Kind == Ident && t.Text == kw {
		return Cursor{c.s, c.i + 1, c.end}, true
	}
	return c, false
}

// Punct consumes the punctuation ch.
func (c Cursor) Punct(ch byte) (Token, Cursor, bool) {
	t := c.Peek()
	if !t.IsPunct(ch) {
		return t, c, false
	}
	return t, Cursor{c.s, c.i + 1, c.end}, true
}

// Group consumes a group delimited by d and returns a cursor over its
// inner stream as well.
func (c Cursor) Group(d Delim) (inner Cursor, next Cursor, ok bool) {
	t := c.Peek()
	if t.Kind != Group || t.Delim != d {
		return Cursor{}, c, false
	}
	return NewCursor(t.Inner, t.end-1), Cursor{c.s, c.i + 1, c.end}, true
}
