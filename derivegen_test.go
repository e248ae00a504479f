package derivegen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublee/derivegen"
	"github.com/sublee/derivegen/internal/corpora"
)

// TestExpand expands every .rs file under testdata/expand. The generated
// code is compared with the ".out" file next to it and the error with the
// ".err" file.
//
// To rewrite expected outputs:
//
//	DERIVEGEN_REFRESH='**' go test -run TestExpand .
func TestExpand(t *testing.T) {
	corpora.Corpus{
		Root:      "testdata/expand",
		Refresh:   "DERIVEGEN_REFRESH",
		Extension: "rs",
		Outputs: []corpora.Output{
			{Extension: "out"},
			{Extension: "err"},
		},
		Test: func(t *testing.T, path, text string) []string {
			code, err := derivegen.Expand(path, []byte(text), derivegen.WithCrate("dm"))
			if err != nil {
				return []string{string(code), err.Error() + "\n"}
			}
			return []string{string(code), ""}
		},
	}.Run(t)
}

func TestExpandNothing(t *testing.T) {
	code, err := derivegen.Expand("a.rs", []byte("#[derive(Clone)]\nstruct A;\n"))
	require.NoError(t, err)
	assert.Nil(t, code)
}

func TestExpandOptions(t *testing.T) {
	src := []byte("#[derive(Display, Deref)]\nstruct Id(u32);\n")
	code, err := derivegen.Expand("id.rs", src, derivegen.WithDerives("Deref"), derivegen.WithHeader("// hi"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "// Source: id.rs\n// hi\n\n")
	assert.Contains(t, string(code), "impl derive_more::core::ops::Deref for Id {")
	assert.NotContains(t, string(code), "Display")

	_, err = derivegen.Expand("id.rs", src, derivegen.WithDerives("Clone"))
	assert.ErrorContains(t, err, `unknown derive "Clone"`)
}

func TestExpandSyntaxError(t *testing.T) {
	_, err := derivegen.Expand("bad.rs", []byte("struct A { x: i32 ]"))
	assert.ErrorContains(t, err, "bad.rs:1:")
}

func TestExpandFile(t *testing.T) {
	path := filepath.Join("testdata", "expand", "display", "unit.rs")
	got, err := derivegen.ExpandFile(path, derivegen.WithCrate("dm"))
	require.NoError(t, err)

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := derivegen.Expand(path, src, derivegen.WithCrate("dm"))
	require.NoError(t, err)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("ExpandFile mismatch (-want +got):\n%s", diff)
	}
}

func TestDerives(t *testing.T) {
	assert.Equal(t, []string{
		"AsMut", "AsRef", "Binary", "Debug", "Deref", "DerefMut", "Display", "Eq",
		"Error", "LowerExp", "LowerHex", "Octal", "PartialEq", "Pointer", "UpperExp", "UpperHex",
	}, derivegen.Derives())
}

func TestExpandBlankLines(t *testing.T) {
	src := []byte("#[derive(Display, Deref)]\nstruct Id(u32);\n\n#[derive(PartialEq)]\nstruct Unit;\n")
	code, err := derivegen.Expand("id.rs", src)
	require.NoError(t, err)
	assert.NotContains(t, string(code), "\n\n\n")
	assert.True(t, strings.HasSuffix(string(code), "}\n"))
	assert.False(t, strings.HasSuffix(string(code), "\n\n"))
}
