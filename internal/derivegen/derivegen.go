package derivegeninternal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/sublee/derivegen/internal/codefmt"
	"github.com/sublee/derivegen/internal/derive"
	"github.com/sublee/derivegen/internal/syntax"
)

// Derivegen generates trait implementations for the declarations of one
// file. Call [Derivegen.Build] and then [Derivegen.Generate]. All potential
// errors are returned by Build. Once Build succeeds, Generate never fails.
type Derivegen struct {
	file *syntax.File
	cfg  Config
	log  *slog.Logger

	// impls holds the expanded code of each declaration, in declaration
	// order.
	impls [][]byte
}

// New creates a [Derivegen] for a parsed file.
func New(file *syntax.File, cfg Config, log *slog.Logger) (*Derivegen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Derivegen{file: file, cfg: cfg, log: log}, nil
}

// Build expands every derive requested by the declarations of the file. A
// declaration contributes no code unless all of its derives succeed. Errors
// of every declaration are returned together.
func (g *Derivegen) Build(ctx context.Context) error {
	var errs error
	for _, decl := range g.file.Decls {
		code, err := g.expand(ctx, decl)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if len(code) != 0 {
			g.impls = append(g.impls, code)
		}
	}
	return errs
}

// selected returns the derives decl requests, in request order. Names
// which are not derivable here, such as "Clone", are left to other
// derive providers.
func (g *Derivegen) selected(ctx context.Context, decl *syntax.Decl) ([]*derive.Derive, error) {
	var errs error
	seen := linkedhashset.New()
	var ds []*derive.Derive
	for _, tok := range decl.Derives {
		d, ok := derive.Lookup(tok.Text)
		if !ok || d.Name != tok.Text {
			g.log.DebugContext(ctx, "derive not handled", "decl", decl.Name, "derive", tok.Text)
			continue
		}
		if !g.cfg.allows(d.Name) {
			g.log.DebugContext(ctx, "derive not allowed", "decl", decl.Name, "derive", d.Name)
			continue
		}
		if seen.Contains(d.Name) {
			errs = errors.Join(errs, codefmt.Errorf(g.file.Fset, tok, "`%s` is derived more than once", d.Name))
			continue
		}
		seen.Add(d.Name)
		ds = append(ds, d)
	}
	return ds, errs
}

func (g *Derivegen) expand(ctx context.Context, decl *syntax.Decl) ([]byte, error) {
	ds, errs := g.selected(ctx, decl)

	var buf bytes.Buffer
	for _, d := range ds {
		var out bytes.Buffer
		if err := d.Expand(g.file.Fset, decl, g.cfg.deriveConfig(), &out); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		g.log.DebugContext(ctx, "expanded", "decl", decl.Name, "derive", d.Name)
		if buf.Len() != 0 {
			buf.WriteString("\n\n")
		}
		buf.Write(out.Bytes())
	}
	if errs != nil {
		return nil, errs
	}
	return buf.Bytes(), nil
}

// Generate renders the output file. It returns nil when no declaration of
// the file requested a derive. It must be called after
// [Derivegen.Build] succeeds.
func (g *Derivegen) Generate() []byte {
	if len(g.impls) == 0 {
		return nil
	}
	return g.frameCode(bytes.Join(g.impls, []byte("\n\n")))
}

func (g *Derivegen) frameCode(code []byte) []byte {
	versionSuffix := ""
	if Version != "" {
		versionSuffix = "@" + Version
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by derivegen%s. DO NOT EDIT.\n", versionSuffix)
	fmt.Fprintf(&buf, "// Source: %s\n", filepath.ToSlash(g.file.Name))
	if h := strings.TrimRight(g.cfg.Header, "\n"); h != "" {
		fmt.Fprintf(&buf, "%s\n", h)
	}
	buf.WriteByte('\n')
	buf.Write(code)
	buf.WriteByte('\n')
	return buf.Bytes()
}
