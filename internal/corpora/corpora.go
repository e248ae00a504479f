// Package corpora runs table-driven tests whose table lives in the file
// system: every input file under a root is a case, and its expected outputs
// are sibling files named after it.
package corpora

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Corpus describes a directory of test cases.
type Corpus struct {
	// Root is the test data directory, relative to the file calling
	// [Corpus.Run].
	Root string

	// Refresh names an environment variable holding a glob. Cases whose
	// path matches it get their expected outputs rewritten instead of
	// compared.
	Refresh string

	// Extension of input files, without the dot: "rs".
	Extension string

	// Outputs of every case. A missing output file means the output is
	// expected to be empty.
	Outputs []Output

	// Test runs one case and returns one string per element of Outputs.
	Test func(t *testing.T, path, text string) []string
}

// Output is one expected output of a case. For an input "a.rs" and an
// extension "out" the expected output is in "a.rs.out".
type Output struct {
	Extension string

	// Compare compares outputs. Nil compares them byte for byte.
	Compare Compare
}

// Compare returns "" when got matches want, or a description of the
// difference.
type Compare func(got, want string) string

// Run runs every case of the corpus as a subtest.
func (c Corpus) Run(t *testing.T) {
	testDir := callerDir(0)
	root := filepath.Join(testDir, c.Root)

	var cases []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.TrimPrefix(filepath.Ext(p), ".") == c.Extension {
			cases = append(cases, p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("corpora: walking %q: %v", root, err)
	}
	if len(cases) == 0 {
		t.Fatalf("corpora: no .%s files in %q", c.Extension, root)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if refresh != "" && !doublestar.ValidatePattern(refresh) {
			t.Fatalf("corpora: invalid glob in %s: %q", c.Refresh, refresh)
		}
	}
	if refresh != "" {
		// A refreshing run never passes, so it is never mistaken for a
		// verified one.
		t.Logf("corpora: refreshing outputs matching %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	for _, path := range cases {
		name, _ := filepath.Rel(testDir, path)
		name = filepath.ToSlash(name)
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("corpora: reading %q: %v", path, err)
			}
			results := c.Test(t, name, string(src))
			if len(results) != len(c.Outputs) {
				t.Fatalf("corpora: got %d results, want %d", len(results), len(c.Outputs))
			}

			rewrite := refresh != ""
			if rewrite {
				rewrite, _ = doublestar.Match(refresh, name)
			}
			for i, out := range c.Outputs {
				c.check(t, path+"."+out.Extension, results[i], out.Compare, rewrite)
			}
		})
	}
}

func (c Corpus) check(t *testing.T, path, got string, cmp Compare, rewrite bool) {
	t.Helper()
	if rewrite {
		var err error
		if got == "" {
			err = os.Remove(path)
			if errors.Is(err, os.ErrNotExist) {
				err = nil
			}
		} else {
			err = os.WriteFile(path, []byte(got), 0o644)
		}
		if err != nil {
			t.Errorf("corpora: refreshing %q: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Errorf("corpora: reading %q: %v", path, err)
		return
	}
	if cmp == nil {
		cmp = Diff
	}
	if msg := cmp(got, string(want)); msg != "" {
		t.Errorf("output mismatch for %q:\n%s", path, msg)
	}
}

// Diff compares byte for byte and describes a mismatch as a unified diff.
func Diff(got, want string) string {
	if got == want {
		return ""
	}
	if strings.HasSuffix(got, "\n") && strings.HasSuffix(want, "\n") {
		got, want = got[:len(got)-1], want[:len(want)-1]
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 2)
	if !ok {
		panic("corpora: could not determine the directory of the test")
	}
	return filepath.Dir(file)
}
