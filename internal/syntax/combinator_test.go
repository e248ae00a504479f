package syntax_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublee/derivegen/internal/syntax"
)

func TestQSelfSpan(t *testing.T) {
	s, err := syntax.LexString("<T as Trait<U>>::X")
	require.NoError(t, err)
	c := syntax.NewCursor(s, token.NoPos)

	next, ok := syntax.QSelfSpan(c)
	require.True(t, ok)
	assert.Equal(t, "<T as Trait<U>>", next.Since(c).Code())

	next, ok = syntax.Colon2(next)
	require.True(t, ok)
	id, _, ok := next.Ident()
	require.True(t, ok)
	assert.Equal(t, "X", id.Text)

	s, err = syntax.LexString("<T as Trait")
	require.NoError(t, err)
	_, ok = syntax.QSelfSpan(syntax.NewCursor(s, token.NoPos))
	assert.False(t, ok)
}

func TestFnTypeOutput(t *testing.T) {
	ty := mustType(t, "fn(u8) -> Vec<u8>")
	assert.Equal(t, "fn(u8) -> Vec<u8>", ty.Code())
	ty = mustType(t, "Box<dyn FnMut(&str) -> bool>")
	assert.Equal(t, "Box<dyn FnMut(&str) -> bool>", ty.Code())
}
