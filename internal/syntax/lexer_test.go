package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublee/derivegen/internal/syntax"
)

func TestLexRoundTrip(t *testing.T) {
	for _, src := range []string{
		`a < b`,
		`x.foo::<T>(a, b)`,
		`|a, b| a + b`,
		`<Ty as Trait>::T`,
		`format!("{}", q)`,
		`[0u8; N]`,
		`r#"raw "str""#`,
		`'a' b'c' 'static`,
		`1.5e-3f64 0x1F 1..2`,
		`r#type`,
		`{ x }`,
	} {
		s, err := syntax.LexString(src)
		require.NoError(t, err, src)
		assert.Equal(t, src, s.Code())
	}
}

func TestLexNormalizesSpace(t *testing.T) {
	s, err := syntax.LexString("a  /* c */ +\n\tb // tail")
	require.NoError(t, err)
	assert.Equal(t, "a + b", s.Code())
}

func TestLexKinds(t *testing.T) {
	s, err := syntax.LexString(`x 'a 'b' "s" :: (y)`)
	require.NoError(t, err)
	require.Len(t, s, 7)
	kinds := make([]syntax.Kind, len(s))
	for i, tok := range s {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []syntax.Kind{
		syntax.Ident, syntax.Lifetime, syntax.Literal, syntax.Literal,
		syntax.Punct, syntax.Punct, syntax.Group,
	}, kinds)
	assert.True(t, s[4].Joint)
	assert.False(t, s[5].Joint)
	assert.Equal(t, syntax.Paren, s[6].Delim)
	assert.True(t, s[3].IsString())
}

func TestLexErrors(t *testing.T) {
	for _, tt := range []struct {
		src string
		err string
	}{
		{"a (b", "<input>:1:3: unclosed delimiter"},
		{"a ]", "<input>:1:3: unexpected closing delimiter `]`"},
		{`"abc`, "<input>:1:1: unterminated literal"},
		{"/* a", "<input>:1:1: unterminated block comment"},
	} {
		_, err := syntax.LexString(tt.src)
		assert.EqualError(t, err, tt.err, tt.src)
	}
}

func TestSplit(t *testing.T) {
	s, err := syntax.LexString("T: Fn(A) -> B, Map<K, V>: Clone, U,")
	require.NoError(t, err)
	var got []string
	for _, part := range s.Split(',') {
		got = append(got, part.Code())
	}
	assert.Equal(t, []string{"T: Fn(A) -> B", "Map<K, V>: Clone", "U"}, got)
}

func TestUnquote(t *testing.T) {
	for _, tt := range []struct {
		lit  string
		want string
	}{
		{`"plain"`, "plain"},
		{`"a\n\t\"b\""`, "a\n\t\"b\""},
		{`"\x41\u{1F600}"`, "A\U0001F600"},
		{"\"line \\\n    continued\"", "line continued"},
		{`r"C:\path"`, `C:\path`},
		{`r#"say "hi""#`, `say "hi"`},
		{`b"bytes"`, "bytes"},
		{`"{{}}"`, "{{}}"},
	} {
		got, err := syntax.Unquote(tt.lit)
		require.NoError(t, err, tt.lit)
		assert.Equal(t, tt.want, got, tt.lit)
	}

	_, err := syntax.Unquote(`"\q"`)
	assert.Error(t, err)
}
