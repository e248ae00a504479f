package codefmt

import (
	"bytes"
	"strings"
)

// IndentUnit is one level of indentation in generated code.
const IndentUnit = "    "

// Indent re-indents generated code by its bracket nesting. Lines are
// expected to carry no indentation of their own beyond deliberate
// continuation indents, which are kept. Brackets inside string and
// character literals do not count. Trailing newlines are dropped.
func Indent(code []byte) []byte {
	var out bytes.Buffer
	depth := 0
	for _, line := range strings.Split(string(code), "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			out.WriteByte('\n')
			continue
		}

		trimmed := strings.TrimLeft(line, " \t")
		lead := len(trimmed) - len(strings.TrimLeft(trimmed, ")]}"))
		out.WriteString(strings.Repeat(IndentUnit, max(depth-lead, 0)))
		out.WriteString(line)
		out.WriteByte('\n')
		depth = max(depth+nesting(trimmed), 0)
	}
	return bytes.TrimRight(out.Bytes(), "\n")
}

// nesting returns the net bracket depth change of a line.
func nesting(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '(', '[', '{':
			n++
		case ')', ']', '}':
			n--
		case '"':
			for i++; i < len(line) && line[i] != '"'; i++ {
				if line[i] == '\\' {
					i++
				}
			}
		case '\'':
			// Character literals; lifetimes have no closing quote.
			if i+2 < len(line) && line[i+1] == '\\' {
				if j := strings.IndexByte(line[i+2:], '\''); j >= 0 {
					i += j + 2
				}
			} else if i+2 < len(line) && line[i+2] == '\'' {
				i += 2
			}
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return n
			}
		}
	}
	return n
}
