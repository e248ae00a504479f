// Package syntax reads the declarations derivegen expands: a token-tree
// lexer, a save/restore cursor with small parser combinators, and readers
// for types, generics and item declarations.
package syntax

import (
	"go/token"
	"strings"
)

// Kind classifies a token tree.
type Kind int

const (
	EOF Kind = iota
	Ident
	Lifetime
	Literal
	Punct
	Group
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "identifier"
	case Lifetime:
		return "lifetime"
	case Literal:
		return "literal"
	case Punct:
		return "punctuation"
	case Group:
		return "group"
	}
	return "end of input"
}

// Delim is the delimiter of a group.
type Delim int

const (
	NoDelim Delim = iota
	Paren
	Bracket
	Brace
)

func (d Delim) open() string {
	switch d {
	case Paren:
		return "("
	case Bracket:
		return "["
	case Brace:
		return "{"
	}
	return ""
}

func (d Delim) close() string {
	switch d {
	case Paren:
		return ")"
	case Bracket:
		return "]"
	case Brace:
		return "}"
	}
	return ""
}

// Token is a single token tree: a leaf token or a delimited group holding
// its inner stream.
type Token struct {
	Kind Kind
	Text string

	// Joint reports that a punctuation is immediately followed by another
	// punctuation, as in "::" or "=>".
	Joint bool

	// Space reports that whitespace preceded the token in the source.
	Space bool

	Delim      Delim
	Inner      Stream
	CloseSpace bool

	pos token.Pos
	end token.Pos
}

func (t Token) Pos() token.Pos { return t.pos }
func (t Token) End() token.Pos { return t.end }

// Is reports whether t is an identifier or a punctuation spelled s.
func (t Token) Is(s string) bool {
	return (t.Kind == Ident || t.Kind == Punct) && t.Text == s
}

// IsPunct reports whether t is the punctuation ch.
func (t Token) IsPunct(ch byte) bool {
	return t.Kind == Punct && len(t.Text) == 1 && t.Text[0] == ch
}

// IsString reports whether t is a plain or raw string literal.
func (t Token) IsString() bool {
	if t.Kind != Literal {
		return false
	}
	return strings.HasPrefix(t.Text, `"`) || strings.HasPrefix(t.Text, "r\"") || strings.HasPrefix(t.Text, "r#")
}

// Code returns the source form of the token.
func (t Token) Code() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Token) write(b *strings.Builder) {
	if t.Kind == EOF {
		b.WriteString("end of input")
		return
	}
	if t.Kind != Group {
		b.WriteString(t.Text)
		return
	}
	b.WriteString(t.Delim.open())
	t.Inner.write(b, true)
	if t.CloseSpace && len(t.Inner) > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(t.Delim.close())
}

// Stream is a sequence of token trees.
type Stream []Token

// Code returns the source form of the stream. Spacing between tokens
// follows the source: a single space wherever the source had whitespace.
func (s Stream) Code() string {
	var b strings.Builder
	s.write(&b, false)
	return b.String()
}

func (s Stream) String() string { return s.Code() }

func (s Stream) write(b *strings.Builder, inGroup bool) {
	for i, t := range s {
		if t.Space && (i > 0 || inGroup) {
			b.WriteByte(' ')
		}
		t.write(b)
	}
}

func (s Stream) Pos() token.Pos {
	if len(s) == 0 {
		return token.NoPos
	}
	return s[0].pos
}

func (s Stream) End() token.Pos {
	if len(s) == 0 {
		return token.NoPos
	}
	return s[len(s)-1].end
}

// Split splits the stream at top-level occurrences of the punctuation sep.
// Angle brackets count as nesting so "Map<K, V>" stays whole. Empty
// trailing segments are dropped.
func (s Stream) Split(sep byte) []Stream {
	var out []Stream
	depth := 0
	start := 0
	for i, t := range s {
		switch {
		case t.IsPunct('<'):
			depth++
		case t.IsPunct('>') && !(i > 0 && s[i-1].IsPunct('-') && s[i-1].Joint):
			if depth > 0 {
				depth--
			}
		case t.IsPunct(sep) && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
