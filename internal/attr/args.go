package attr

import (
	"go/token"

	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/syntax"
)

// FmtArgument is one argument after a format literal: "expr" or
// "alias = expr".
type FmtArgument struct {
	Alias *syntax.Token
	Expr  syntax.Stream
}

// Ident returns the identifier when the expression is a single bare
// identifier.
func (a FmtArgument) Ident() (string, bool) {
	if len(a.Expr) == 1 && a.Expr[0].Kind == syntax.Ident {
		return a.Expr[0].Text, true
	}
	return "", false
}

// Code renders the argument.
func (a FmtArgument) Code() string {
	if a.Alias != nil {
		return a.Alias.Text + " = " + a.Expr.Code()
	}
	return a.Expr.Code()
}

func (a FmtArgument) Pos() token.Pos {
	if a.Alias != nil {
		return a.Alias.Pos()
	}
	return a.Expr.Pos()
}

func (a FmtArgument) End() token.Pos { return a.Expr.End() }

// argPart consumes one balanced piece of an argument expression. Turbofish
// arguments, qualified paths and closure parameters may contain commas
// which do not separate arguments.
var argPart = syntax.Alt(
	syntax.Seq(syntax.Colon2, syntax.QSelfSpan),
	syntax.Seq(syntax.QSelfSpan, syntax.Colon2),
	syntax.BalancedPair(syntax.PunctP('|'), syntax.PunctP('|')),
	syntax.TokenTree,
)

var argExpr = syntax.TakeUntil1(argPart, syntax.PunctP(','))

// ParseArgs parses a comma-separated argument list. A trailing comma does
// not produce an empty argument.
func ParseArgs(fset *token.FileSet, c syntax.Cursor) ([]FmtArgument, error) {
	args := []FmtArgument{}
	for !c.EOF() {
		var arg FmtArgument

		// Optional "alias =", but not "a == b".
		if alias, next, ok := c.Ident(); ok {
			if eq := next.Peek(); eq.IsPunct('=') && !next.PeekAt(1).IsPunct('=') {
				arg.Alias = &alias
				c = next.Skip(1)
			}
		}

		// Fast path: a bare identifier before a comma or the end.
		if ident, next, ok := c.Ident(); ok && (next.EOF() || next.Peek().IsPunct(',')) {
			arg.Expr = syntax.Stream{ident}
			c = next
		} else {
			next, ok := argExpr(c)
			if !ok {
				return nil, codefmt.Errorf(fset, c.Peek(), "expected expression, found %c", c.Peek())
			}
			arg.Expr = next.Since(c)
			c = next
		}
		args = append(args, arg)

		if _, next, ok := c.Punct(','); ok {
			c = next
		}
	}
	return args, nil
}
