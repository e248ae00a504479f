package codefmt

import (
	"go/token"
)

// Errorf is a shorthand for [Formatter.Errorf].
func Errorf(fset *token.FileSet, poser Poser, format string, args ...any) error {
	return New(fset).Errorf(poser, format, args...)
}

type poser struct{ pos token.Pos }

func (p poser) Pos() token.Pos { return p.pos }
func Pos(pos token.Pos) Poser  { return poser{pos} }

type span struct{ pos, end token.Pos }

func (s span) Pos() token.Pos { return s.pos }
func (s span) End() token.Pos { return s.end }

// Span returns a Poser which also reports an end position.
func Span(pos, end token.Pos) Poser { return span{pos, end} }
