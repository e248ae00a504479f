package codefmt

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
)

// Formatter formats positions and source fragments of one file set.
type Formatter struct {
	Fset *token.FileSet
}

func New(fset *token.FileSet) Formatter {
	return Formatter{fset}
}

// wd is the cached working directory.
var wd, _ = os.Getwd()

// FormatPosition renders a position as "file:line:column", with the file
// relative to the working directory when possible.
func FormatPosition(pos token.Position) string {
	if !pos.IsValid() {
		return "-:-"
	}

	filename := pos.Filename
	if rel, err := filepath.Rel(wd, filename); err == nil {
		filename = rel
	}

	return fmt.Sprintf("%s:%d:%d", filename, pos.Line, pos.Column)
}
