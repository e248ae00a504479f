package attr_test

import (
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublee/derivegen/internal/attr"
	"github.com/sublee/derivegen/internal/syntax"
)

var argCases = []string{
	"ident",
	"alias = ident",
	"[a , b , c , d]",
	"counter += 1",
	"async { fut . await }",
	"a < b",
	"a > b",
	"{ let x = (a , b) ; }",
	"invoke (a , b)",
	"foo as f64",
	"| a , b | a + b",
	"obj . k",
	"for pat in expr { break pat ; }",
	"if expr { true } else { false }",
	"vector [2]",
	"1",
	"\"foo\"",
	"loop { break i ; }",
	"format ! (\"{}\" , q)",
	"match n { Some (n) => {} , None => {} }",
	"x . foo ::< T > (a , b)",
	"x . foo ::< T < [T < T >; if a < b { 1 } else { 2 }] >, { a < b } > (a , b)",
	"(a + b)",
	"i32 :: MAX",
	"1 .. 2",
	"& a",
	"[0u8 ; N]",
	"(a , b , c , d)",
	"< Ty as Trait > :: T",
	"< Ty < Ty < T >, { a < b } > as Trait < T > > :: T",
}

func parseArgs(t *testing.T, input string) []string {
	t.Helper()
	fset := token.NewFileSet()
	toks, err := syntax.Lex(fset, "args", []byte(input))
	require.NoError(t, err, input)
	args, err := attr.ParseArgs(fset, syntax.NewCursor(toks, token.NoPos))
	require.NoError(t, err, input)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Code()
	}
	return out
}

// permutations calls f with every ordered selection of k distinct items.
func permutations(items []string, k int, f func([]string)) {
	used := make([]bool, len(items))
	var pick []string
	var rec func()
	rec = func() {
		if len(pick) == k {
			f(pick)
			return
		}
		for i, item := range items {
			if used[i] {
				continue
			}
			used[i] = true
			pick = append(pick, item)
			rec()
			pick = pick[:len(pick)-1]
			used[i] = false
		}
	}
	rec()
}

func TestParseArgsBalance(t *testing.T) {
	assert.Empty(t, parseArgs(t, ""))

	for k := 1; k <= 3; k++ {
		permutations(argCases, k, func(pick []string) {
			input := strings.Join(pick, ",")
			if !assert.Equal(t, pick, parseArgs(t, input), input) {
				t.FailNow()
			}
			if !assert.Equal(t, pick, parseArgs(t, input+","), input+",") {
				t.FailNow()
			}
		})
	}
}

func TestParseArgsAlias(t *testing.T) {
	fset := token.NewFileSet()
	toks, err := syntax.Lex(fset, "args", []byte("a = self.x, b == c, d"))
	require.NoError(t, err)
	args, err := attr.ParseArgs(fset, syntax.NewCursor(toks, token.NoPos))
	require.NoError(t, err)
	require.Len(t, args, 3)

	require.NotNil(t, args[0].Alias)
	assert.Equal(t, "a", args[0].Alias.Text)
	assert.Equal(t, "self.x", args[0].Expr.Code())
	_, ok := args[0].Ident()
	assert.False(t, ok)

	assert.Nil(t, args[1].Alias)
	assert.Equal(t, "b == c", args[1].Expr.Code())

	name, ok := args[2].Ident()
	assert.True(t, ok)
	assert.Equal(t, "d", name)
}

func TestParseArgsMissingExpr(t *testing.T) {
	fset := token.NewFileSet()
	toks, err := syntax.Lex(fset, "args", []byte("a = , b"))
	require.NoError(t, err)
	_, err = attr.ParseArgs(fset, syntax.NewCursor(toks, token.NoPos))
	assert.EqualError(t, err, "args:1:5: expected expression, found ,")
}
