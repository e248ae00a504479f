package attr_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublee/derivegen/internal/attr"
	"github.com/sublee/derivegen/internal/fmtstr"
	"github.com/sublee/derivegen/internal/syntax"
)

var (
	displayGrammar = attr.Grammar{Format: true, Skip: []string{"skip", "ignore"}}
	asRefGrammar   = attr.Grammar{Empty: true, Forward: true, Types: true, Skip: []string{"skip", "ignore"}}
)

// attrsOf parses the outer attributes of a unit struct written after them.
func attrsOf(t *testing.T, src string) (*token.FileSet, []syntax.Attribute) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := syntax.ParseFile(fset, "a.rs", []byte(src+"\nstruct A;"))
	require.NoError(t, err)
	require.Len(t, f.Decls, 1)
	return fset, f.Decls[0].Attrs
}

func parse(t *testing.T, names []string, g attr.Grammar, src string) (attr.Directive, error) {
	t.Helper()
	fset, attrs := attrsOf(t, src)
	return attr.Parser{Fset: fset, Names: names, Grammar: g}.ParseAttrs(attrs)
}

func TestParseFormat(t *testing.T) {
	d, err := parse(t, []string{"display"}, displayGrammar, `#[display("{x} and {}", self.y)]`)
	require.NoError(t, err)
	f, ok := d.(*attr.Format)
	require.True(t, ok)
	assert.Equal(t, "{x} and {}", f.Value)
	assert.Len(t, f.Placeholders, 2)
	require.Len(t, f.Args, 1)
	assert.Equal(t, "self.y", f.Args[0].Expr.Code())
	assert.Equal(t, `"{x} and {}", self.y`, f.Code())
}

func TestParseAbsent(t *testing.T) {
	d, err := parse(t, []string{"display"}, displayGrammar, `#[debug("x")]`)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestParseSkipAliases(t *testing.T) {
	for _, word := range []string{"skip", "ignore"} {
		d, err := parse(t, []string{"display"}, displayGrammar, "#[display("+word+")]")
		require.NoError(t, err)
		s, ok := d.(*attr.Skip)
		require.True(t, ok)
		assert.Equal(t, word, s.Word)
	}
}

func TestParseTypes(t *testing.T) {
	d, err := parse(t, []string{"as_ref"}, asRefGrammar, `#[as_ref(str, [u8])]`)
	require.NoError(t, err)
	ts, ok := d.(*attr.Types)
	require.True(t, ok)
	require.Len(t, ts.List, 2)
	assert.Equal(t, "str", ts.List[0].Code())
	assert.Equal(t, "[u8]", ts.List[1].Code())
}

func TestParseForwardAndEmpty(t *testing.T) {
	d, err := parse(t, []string{"as_ref"}, asRefGrammar, `#[as_ref(forward)]`)
	require.NoError(t, err)
	assert.Equal(t, attr.KindForward, d.Kind())

	d, err = parse(t, []string{"as_ref"}, asRefGrammar, `#[as_ref]`)
	require.NoError(t, err)
	assert.Equal(t, attr.KindEmpty, d.Kind())
}

func TestParseMarker(t *testing.T) {
	g := attr.Grammar{Empty: true, Markers: []string{"source"}, Skip: []string{"ignore"}}
	d, err := parse(t, []string{"error"}, g, `#[error(source)]`)
	require.NoError(t, err)
	e, ok := d.(*attr.Empty)
	require.True(t, ok)
	assert.Equal(t, "source", e.Word)
}

func TestMergeTypesConcatenates(t *testing.T) {
	d, err := parse(t, []string{"as_ref"}, asRefGrammar, "#[as_ref(str)]\n#[as_ref([u8])]\n#[as_ref(String)]")
	require.NoError(t, err)
	ts := d.(*attr.Types)
	var got []string
	for _, ty := range ts.List {
		got = append(got, ty.Code())
	}
	assert.Equal(t, []string{"str", "[u8]", "String"}, got)
}

func TestMergeTypesAssociative(t *testing.T) {
	fset, attrs := attrsOf(t, "#[as_ref(A)]\n#[as_ref(B)]\n#[as_ref(C)]")
	p := attr.Parser{Fset: fset, Names: []string{"as_ref"}, Grammar: asRefGrammar}
	var ds []attr.Directive
	for _, a := range attrs {
		d, err := p.Parse(a)
		require.NoError(t, err)
		ds = append(ds, d)
	}

	ab, err := p.Merge(ds[0], ds[1])
	require.NoError(t, err)
	left, err := p.Merge(ab, ds[2])
	require.NoError(t, err)

	bc, err := p.Merge(ds[1], ds[2])
	require.NoError(t, err)
	right, err := p.Merge(ds[0], bc)
	require.NoError(t, err)

	codes := func(d attr.Directive) []string {
		var out []string
		for _, ty := range d.(*attr.Types).List {
			out = append(out, ty.Code())
		}
		return out
	}
	assert.Equal(t, codes(left), codes(right))
}

func TestMergeBoundsIntoFormat(t *testing.T) {
	d, err := parse(t, []string{"display"}, displayGrammar, "#[display(bound(T: Clone))]\n#[display(\"{}\", x)]\n#[display(bounds(U: Copy, V: Send))]")
	require.NoError(t, err)
	f := d.(*attr.Format)
	assert.Equal(t, "{}", f.Value)
	var bounds []string
	for _, b := range f.Bounds {
		bounds = append(bounds, b.Code())
	}
	assert.Equal(t, []string{"T: Clone", "U: Copy", "V: Send"}, bounds)
}

func TestMergeErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		g    attr.Grammar
		src  string
		err  string
	}{
		{
			"DuplicateFormat", displayGrammar,
			"#[display(\"a\")]\n#[display(\"b\")]",
			"a.rs:2:1: duplicate format specification in `#[display(...)]`",
		},
		{
			"SkipAndFormat", displayGrammar,
			"#[display(\"a\")]\n#[display(skip)]",
			"a.rs:2:1: conflicting `#[display(...)]` directives: `format` and `skip`",
		},
		{
			"DoubleSkip", displayGrammar,
			"#[display(skip)]\n#[display(ignore)]",
			"a.rs:2:1: only a single `#[display(...)]` attribute is allowed here",
		},
		{
			"DoubleForward", asRefGrammar,
			"#[display(forward)]\n#[display(forward)]",
			"a.rs:2:1: only a single `#[display(...)]` attribute is allowed here",
		},
		{
			"TypesAndForward", asRefGrammar,
			"#[display(str)]\n#[display(forward)]",
			"a.rs:2:1: only a single `#[display(...)]` attribute is allowed here",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, []string{"display"}, tt.g, tt.src)
			assert.EqualError(t, err, tt.err)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		src  string
		err  string
	}{
		{
			"LegacyFormat",
			`#[display(fmt = "{}", x)]`,
			"a.rs:1:11: legacy syntax, use `#[display(\"{}\", x)]` instead",
		},
		{
			"LegacyBound",
			`#[display(bound = "T: Clone")]`,
			"a.rs:1:11: legacy syntax, use `#[display(bound(T: Clone))]` instead",
		},
		{
			"Suggestion",
			`#[display(skipp)]`,
			"a.rs:1:11: unknown argument `skipp` in `#[display(...)]`\n\tdid you mean `skip`?",
		},
		{
			"Unknown",
			`#[display(xyz)]`,
			"a.rs:1:11: unknown argument `xyz` in `#[display(...)]`\n\tallowed: `skip`, `ignore`, `bound`",
		},
		{
			"BadPlaceholder",
			`#[display("a{")]`,
			"a.rs:1:13: invalid format string: expected `}` but string was terminated",
		},
		{
			"Bare",
			`#[display]`,
			"a.rs:1:1: `#[display]` requires arguments",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, []string{"display"}, displayGrammar, tt.src)
			assert.EqualError(t, err, tt.err)
		})
	}
}

func TestTransparentCall(t *testing.T) {
	for _, tt := range []struct {
		src   string
		expr  string
		trait fmtstr.Trait
		ok    bool
	}{
		{`#[display("{}", self.0)]`, "self.0", fmtstr.Display, true},
		{`#[display("{x:?}")]`, "x", fmtstr.Debug, true},
		{`#[display("{v:x}", v = self.n)]`, "self.n", fmtstr.LowerHex, true},
		{`#[display("{:>4}", x)]`, "", 0, false},
		{`#[display("a{}", x)]`, "", 0, false},
		{`#[display("{}{}", x, y)]`, "", 0, false},
		{`#[display("{x}", y)]`, "", 0, false},
	} {
		d, err := parse(t, []string{"display"}, displayGrammar, tt.src)
		require.NoError(t, err, tt.src)
		expr, trait, ok := d.(*attr.Format).TransparentCall()
		assert.Equal(t, tt.ok, ok, tt.src)
		assert.Equal(t, tt.expr, expr, tt.src)
		assert.Equal(t, tt.trait, trait, tt.src)
	}
}

func TestRefs(t *testing.T) {
	d, err := parse(t, []string{"display"}, displayGrammar, `#[display("{a} {} {} {b:x} {:?}", _0, self.c, b = field, d = e.f)]`)
	require.NoError(t, err)
	f := d.(*attr.Format)
	assert.Equal(t, []attr.Ref{
		{Name: "a", Trait: fmtstr.Display},
		{Name: "_0", Trait: fmtstr.Display},
		{Name: "field", Trait: fmtstr.LowerHex},
	}, f.Refs())
	assert.True(t, f.ContainsArg("a"))
	assert.False(t, f.ContainsArg("_0"))
}
