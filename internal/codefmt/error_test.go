package codefmt_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sublee/derivegen/internal/codefmt"
)

func newFset() *token.FileSet {
	fset := token.NewFileSet()
	fset.AddFile("test.rs", -1, 100).AddLine(10)
	return fset
}

type poser struct{ pos int }

func (p poser) Pos() token.Pos { return token.Pos(p.pos) }

type coder string

func (c coder) Code() string { return string(c) }

func TestErrorfNilNil(t *testing.T) {
	err := codefmt.Errorf(nil, nil, "simple error")
	assert.Equal(t, "simple error", err.Error())
}

func TestErrorfPos(t *testing.T) {
	err := codefmt.Errorf(newFset(), poser{1}, "error")
	assert.Equal(t, "test.rs:1:1: error", err.Error())
}

func TestErrorfPosSecondLine(t *testing.T) {
	err := codefmt.Errorf(newFset(), poser{13}, "error")
	assert.Equal(t, "test.rs:2:3: error", err.Error())
}

func TestErrorfW(t *testing.T) {
	assert.Panics(t, func() {
		_ = codefmt.Errorf(newFset(), poser{1}, "error: %w", assert.AnError)
	})
}

func TestErrorfCode(t *testing.T) {
	err := codefmt.Errorf(nil, nil, "unknown argument `%c`", coder("fmt"))
	assert.Equal(t, "unknown argument `fmt`", err.Error())
}

func TestErrorfPosVerb(t *testing.T) {
	err := codefmt.Errorf(newFset(), nil, "first defined at %b", token.Pos(12))
	assert.Equal(t, "first defined at test.rs:2:2", err.Error())
}

func TestErrorMessageAndPosition(t *testing.T) {
	err := codefmt.Errorf(newFset(), codefmt.Span(2, 5), "bad")
	cerr, ok := err.(*codefmt.CodeError)
	assert.True(t, ok)
	assert.Equal(t, "bad", cerr.Message())
	start, end := cerr.Position()
	assert.Equal(t, 2, start.Column)
	assert.Equal(t, 5, end.Column)
}
