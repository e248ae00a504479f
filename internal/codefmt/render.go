package codefmt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

// TabstopWidth is the width tabs are rendered with in excerpts.
const TabstopWidth = 4

// Render writes err as a diagnostic. A [CodeError] with a resolvable
// position is followed by the offending source line and a caret underline
// spanning the error range on that line. source returns the content of a
// file, or nil when it is unavailable.
func Render(w io.Writer, err error, source func(filename string) []byte) {
	fmt.Fprintln(w, err.Error())

	var cerr *CodeError
	if !errors.As(err, &cerr) || source == nil {
		return
	}
	start, end := cerr.Position()
	if !start.IsValid() {
		return
	}
	src := source(start.Filename)
	if src == nil {
		return
	}

	lines := strings.Split(string(src), "\n")
	if start.Line > len(lines) {
		return
	}
	line := strings.TrimRight(lines[start.Line-1], "\r")
	from := min(start.Column-1, len(line))
	to := len(line)
	if end.IsValid() && end.Line == start.Line {
		to = min(end.Column-1, len(line))
	}
	if to <= from {
		to = min(from+1, len(line))
	}

	gutter := fmt.Sprintf("%d", start.Line)
	pad := strings.Repeat(" ", len(gutter))
	fmt.Fprintf(w, "%s |\n", pad)
	fmt.Fprintf(w, "%s | %s\n", gutter, expandTabs(line))

	col := stringWidth(0, line[:from])
	width := max(stringWidth(col, line[from:to])-col, 1)
	fmt.Fprintf(w, "%s | %s%s\n", pad, strings.Repeat(" ", col), strings.Repeat("^", width))
}

// stringWidth returns the column reached by printing text at column,
// honoring tabstops and wide characters.
func stringWidth(column int, text string) int {
	for text != "" {
		next := text
		tab := strings.IndexByte(text, '\t')
		if tab >= 0 {
			next, text = text[:tab], text[tab+1:]
		} else {
			text = ""
		}
		column += uniseg.StringWidth(next)
		if tab >= 0 {
			column += TabstopWidth - column%TabstopWidth
		}
	}
	return column
}

func expandTabs(line string) string {
	var b strings.Builder
	column := 0
	for line != "" {
		next := line
		tab := strings.IndexByte(line, '\t')
		if tab >= 0 {
			next, line = line[:tab], line[tab+1:]
		} else {
			line = ""
		}
		b.WriteString(next)
		column += uniseg.StringWidth(next)
		if tab >= 0 {
			n := TabstopWidth - column%TabstopWidth
			b.WriteString(strings.Repeat(" ", n))
			column += n
		}
	}
	return b.String()
}
