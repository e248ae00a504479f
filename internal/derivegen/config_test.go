package derivegeninternal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derivegeninternal "github.com/sublee/derivegen/internal/derivegen"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), derivegeninternal.ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := derivegeninternal.LoadConfig(writeConfig(t, `
crate: ::derive_more
suffix: .gen.rs
derives: [Display, PartialEq]
header: |
  // lint: allow everything
`))
	require.NoError(t, err)
	assert.Equal(t, derivegeninternal.Config{
		Crate:   "::derive_more",
		Suffix:  ".gen.rs",
		Derives: []string{"Display", "PartialEq"},
		Header:  "// lint: allow everything\n",
	}, cfg)
}

func TestLoadConfigMissingOrEmpty(t *testing.T) {
	cfg, err := derivegeninternal.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Zero(t, cfg)

	cfg, err = derivegeninternal.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Zero(t, cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := derivegeninternal.LoadConfig(writeConfig(t, "crate: x\ncolor: always\n"))
	assert.ErrorContains(t, err, "field color not found")

	_, err = derivegeninternal.LoadConfig(writeConfig(t, "derives: [Display, Clone, display]\n"))
	assert.ErrorContains(t, err, `unknown derive "Clone"`)
	assert.ErrorContains(t, err, `unknown derive "display"`)
	assert.NotContains(t, err.Error(), `unknown derive "Display"`)

	_, err = derivegeninternal.LoadConfig(writeConfig(t, "suffix: .rs\n"))
	assert.ErrorContains(t, err, `invalid suffix ".rs"`)

	_, err = derivegeninternal.LoadConfig(writeConfig(t, "suffix: _gen.go\n"))
	assert.ErrorContains(t, err, `invalid suffix "_gen.go"`)
}

func TestConfigUpdate(t *testing.T) {
	base := derivegeninternal.Config{Crate: "a", Suffix: "_a.rs", Header: "// a"}
	got := base.Update(derivegeninternal.Config{Crate: "b", Derives: []string{"Eq"}})
	assert.Equal(t, derivegeninternal.Config{Crate: "b", Suffix: "_a.rs", Derives: []string{"Eq"}, Header: "// a"}, got)
	assert.Equal(t, "a", base.Crate)
}
