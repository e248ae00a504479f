package derivegeninternal_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	derivegeninternal "github.com/sublee/derivegen/internal/derivegen"
)

// TestMainArchives runs every archive in testdata. Files under "want/" are the
// expected outputs; "want/errors" lists lines the error must contain. The
// archive comment names the patterns on a "patterns:" line.
func TestMainArchives(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, archives)

	for _, path := range archives {
		t.Run(filepath.Base(path), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			require.NoError(t, err)

			wd := t.TempDir()
			want := map[string]string{}
			var wantErrs []string
			for _, f := range ar.Files {
				switch {
				case f.Name == "want/errors":
					wantErrs = strings.Split(strings.TrimSpace(string(f.Data)), "\n")
				case strings.HasPrefix(f.Name, "want/"):
					want[filepath.FromSlash(strings.TrimPrefix(f.Name, "want/"))] = string(f.Data)
				default:
					p := filepath.Join(wd, filepath.FromSlash(f.Name))
					require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
					require.NoError(t, os.WriteFile(p, f.Data, 0o644))
				}
			}

			cfg, err := derivegeninternal.LoadConfig(filepath.Join(wd, derivegeninternal.ConfigFile))
			require.NoError(t, err)

			outs, _, err := derivegeninternal.Main(context.Background(), wd, cfg, nil, patterns(ar.Comment))
			if wantErrs != nil {
				require.Error(t, err)
				assert.Nil(t, outs)
				for _, line := range wantErrs {
					assert.Contains(t, err.Error(), line)
				}
				assertSorted(t, err)
				return
			}
			require.NoError(t, err)

			got := map[string]string{}
			for name, code := range outs {
				got[name] = string(code)
			}
			assert.Equal(t, want, got)
		})
	}
}

func patterns(comment []byte) []string {
	for _, line := range strings.Split(string(comment), "\n") {
		if rest, ok := strings.CutPrefix(line, "patterns:"); ok {
			return strings.Fields(rest)
		}
	}
	return nil
}

func assertSorted(t *testing.T, err error) {
	t.Helper()
	u, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return
	}
	errs := u.Unwrap()
	for i := 1; i < len(errs); i++ {
		assert.LessOrEqual(t, errs[i-1].Error(), errs[i].Error())
	}
}

func TestMainNoFiles(t *testing.T) {
	_, _, err := derivegeninternal.Main(context.Background(), t.TempDir(), derivegeninternal.Config{}, nil, []string{"*.rs"})
	assert.EqualError(t, err, "no files found: [*.rs]")
}

func TestMainSkipsOutputs(t *testing.T) {
	wd := t.TempDir()
	src := "#[derive(Deref)]\nstruct Id(u32);\n"
	require.NoError(t, os.WriteFile(filepath.Join(wd, "id.rs"), []byte(src), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(wd, "id_derive.rs"), []byte(src), 0o644))

	outs, _, err := derivegeninternal.Main(context.Background(), wd, derivegeninternal.Config{}, nil, []string{"*.rs"})
	require.NoError(t, err)
	assert.Len(t, outs, 1)
	assert.Contains(t, outs, "id_derive.rs")
}

func TestMainCanceled(t *testing.T) {
	wd := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(wd, "a.rs"), []byte("struct A;\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := derivegeninternal.Main(ctx, wd, derivegeninternal.Config{}, nil, []string{"a.rs"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMainParseError(t *testing.T) {
	wd := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(wd, "a.rs"), []byte("#[derive(Display)]\nstruct A {\n"), 0o644))

	_, fset, err := derivegeninternal.Main(context.Background(), wd, derivegeninternal.Config{}, nil, []string{"a.rs"})
	require.Error(t, err)
	assert.NotNil(t, fset)
	assert.True(t, strings.HasPrefix(err.Error(), "a.rs:"), err.Error())
}
