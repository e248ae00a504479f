package codefmt

import (
	"io"
)

// Writer writes generated code. Format verbs of [Formatter] are available
// in [Writer.Printf].
type Writer struct {
	w   io.Writer
	fmt Formatter
}

// NewWriter creates a new [Writer].
func NewWriter(w io.Writer, f Formatter) *Writer {
	return &Writer{w: w, fmt: f}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// Printf writes a formatted string to the underlying writer using
// [Formatter.Fprintf].
func (w *Writer) Printf(format string, args ...any) (int, error) {
	return w.fmt.Fprintf(w.w, format, args...)
}
