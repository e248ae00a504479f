// Package derivegeninternal drives expansion over files: it matches input
// files, runs every derive on their declarations and collects the output
// files together with every error.
package derivegeninternal

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/sublee/derivegen/internal/syntax"
)

var Version string

// Main is the main entry point for derivegen. It is used by the command-line
// tool directly.
//
// wd is the working directory. Patterns are doublestar globs relative to it;
// a pattern naming a directory stands for every ".rs" file below it. Files
// already named with the output suffix are never inputs.
//
// It returns a map of output file paths, relative to wd, to their contents,
// and the file set positions in errors refer to. If any error occurs, it
// returns no outputs and a non-nil error.
func Main(ctx context.Context, wd string, cfg Config, log *slog.Logger, patterns []string) (map[string][]byte, *token.FileSet, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	fset := token.NewFileSet()

	files, err := match(os.DirFS(wd), patterns, cfg.suffix())
	if err != nil {
		return nil, fset, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fset, err
	}

	var (
		mu   sync.Mutex
		outs = make(map[string][]byte)
		errs error
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, name := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, code, err := expandFile(ctx, wd, name, fset, cfg, log)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				errs = errors.Join(errs, err)
			case len(code) != 0:
				outs[out] = code
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fset, err
	}
	if errs != nil {
		// errs already contains comprehensive error messages. So we don't need
		// to attach another error message.
		return nil, fset, reorderErrors(errs)
	}

	return outs, fset, nil
}

// expandFile generates the output of one input file. It returns the output
// path and no code when nothing is derived.
func expandFile(ctx context.Context, wd, name string, fset *token.FileSet, cfg Config, log *slog.Logger) (string, []byte, error) {
	src, err := os.ReadFile(filepath.Join(wd, filepath.FromSlash(name)))
	if err != nil {
		return "", nil, err
	}
	file, err := syntax.ParseFile(fset, name, src)
	if err != nil {
		return "", nil, err
	}
	log.DebugContext(ctx, "loaded", "file", name, "decls", len(file.Decls))

	g, err := New(file, cfg, log)
	if err != nil {
		return "", nil, err
	}
	if err := g.Build(ctx); err != nil {
		return "", nil, err
	}

	out := strings.TrimSuffix(name, ".rs") + cfg.suffix()
	return filepath.FromSlash(out), g.Generate(), nil
}

// match resolves patterns to slash-separated file names in fsys, sorted and
// deduplicated.
func match(fsys fs.FS, patterns []string, suffix string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		pattern = path.Clean(filepath.ToSlash(pattern))
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern: %q", pattern)
		}
		if fi, err := fs.Stat(fsys, pattern); err == nil && fi.IsDir() {
			pattern = path.Join(escapeMeta(pattern), "**", "*.rs")
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to match %q: %w", pattern, err)
		}
		for _, m := range matches {
			if strings.HasSuffix(m, ".rs") && !strings.HasSuffix(m, suffix) {
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found: %v", patterns)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// escapeMeta quotes the glob metacharacters of a literal path.
func escapeMeta(p string) string {
	var b strings.Builder
	for _, r := range p {
		if strings.ContainsRune(`\*?[]{}`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func reorderErrors(errs error) error {
	if errs == nil {
		return nil
	}

	// Flatten nested errors
	list := []error{errs}
	for i := 0; i < len(list); i++ {
		if u, ok := list[i].(interface{ Unwrap() []error }); ok {
			// errors.Join collapses errors with a single error having Unwrap()
			// []error method. The underlying errors could be retrieved using
			// the Unwrap() method.
			list = append(list, u.Unwrap()...)
			list[i] = nil
		}
	}
	list = slices.DeleteFunc(list, func(err error) bool {
		return err == nil
	})

	// Sort errors by message. Positions lead messages, so errors of a file
	// come together.
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Error() < list[j].Error()
	})
	return errors.Join(list...)
}
