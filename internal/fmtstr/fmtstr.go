// Package fmtstr parses format string literals into literal text and
// placeholders.
//
// A placeholder has the form
//
//	'{' [argument] [':' [[fill]align][sign]['#']['0'][width]['.' precision][type]] '}'
//
// and "{{" and "}}" stand for literal braces. Placeholders without an
// explicit argument take the next positional argument.
package fmtstr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Trait is the formatting trait a placeholder requests.
type Trait int

const (
	Display Trait = iota
	Debug
	LowerHex
	UpperHex
	Octal
	Binary
	LowerExp
	UpperExp
	Pointer
)

var traitNames = [...]string{
	Display:  "Display",
	Debug:    "Debug",
	LowerHex: "LowerHex",
	UpperHex: "UpperHex",
	Octal:    "Octal",
	Binary:   "Binary",
	LowerExp: "LowerExp",
	UpperExp: "UpperExp",
	Pointer:  "Pointer",
}

var traitPlaceholders = [...]string{
	Display:  "{}",
	Debug:    "{:?}",
	LowerHex: "{:x}",
	UpperHex: "{:X}",
	Octal:    "{:o}",
	Binary:   "{:b}",
	LowerExp: "{:e}",
	UpperExp: "{:E}",
	Pointer:  "{:p}",
}

func (t Trait) String() string { return traitNames[t] }

// Placeholder returns the modifier-free placeholder requesting t.
func (t Trait) Placeholder() string { return traitPlaceholders[t] }

// Traits returns every formatting trait in declaration order.
func Traits() []Trait {
	return []Trait{Display, Debug, LowerHex, UpperHex, Octal, Binary, LowerExp, UpperExp, Pointer}
}

// TraitByName looks up a trait by its name, such as "LowerHex".
func TraitByName(name string) (Trait, bool) {
	for i, n := range traitNames {
		if n == name {
			return Trait(i), true
		}
	}
	return 0, false
}

// traitByType maps the type part of a format spec to a trait.
func traitByType(typ string) (Trait, bool) {
	switch typ {
	case "":
		return Display, true
	case "?", "x?", "X?":
		return Debug, true
	case "x":
		return LowerHex, true
	case "X":
		return UpperHex, true
	case "o":
		return Octal, true
	case "b":
		return Binary, true
	case "e":
		return LowerExp, true
	case "E":
		return UpperExp, true
	case "p":
		return Pointer, true
	}
	return 0, false
}

// Parameter refers to a format argument by position or by name.
type Parameter struct {
	Index int
	Name  string
}

func Positional(i int) Parameter   { return Parameter{Index: i} }
func Named(name string) Parameter  { return Parameter{Name: name} }
func (p Parameter) IsNamed() bool  { return p.Name != "" }
func (p Parameter) String() string {
	if p.IsNamed() {
		return p.Name
	}
	return strconv.Itoa(p.Index)
}

// Placeholder is a parsed "{...}" directive.
type Placeholder struct {
	// Arg is the argument to format. Implicit arguments are resolved with
	// the next-argument counter.
	Arg Parameter

	// Explicit reports whether Arg was written in the literal.
	Explicit bool

	// Width and Precision are set when they refer to an argument ("N$",
	// "name$" or ".*"). Literal counts are not arguments.
	Width     *Parameter
	Precision *Parameter

	Trait Trait

	// HasModifiers reports whether anything besides the argument and the
	// trait was given: fill, alignment, sign, '#', '0', width, precision or
	// a debug-hex flag.
	HasModifiers bool

	// Offset is the byte offset of the opening brace in the literal.
	Offset int
}

// Piece is either a literal span or a placeholder.
type Piece struct {
	Literal     string
	Placeholder *Placeholder
	Offset      int
}

// Error is a format string parse error.
type Error struct {
	Offset int
	Msg    string
}

func (e *Error) Error() string { return "invalid format string: " + e.Msg }

// Scanner yields the pieces of a format string from left to right. It
// cannot be restarted.
type Scanner struct {
	s    string
	off  int
	next int
	err  error
}

// Parse returns a scanner over the format string s.
func Parse(s string) *Scanner {
	return &Scanner{s: s}
}

// Err returns the first error the scanner met.
func (sc *Scanner) Err() error { return sc.err }

func (sc *Scanner) fail(off int, format string, args ...any) (Piece, bool) {
	sc.err = &Error{Offset: off, Msg: fmt.Sprintf(format, args...)}
	sc.off = len(sc.s)
	return Piece{}, false
}

// Next returns the next piece. It returns false at the end of the string
// or after an error.
func (sc *Scanner) Next() (Piece, bool) {
	if sc.err != nil || sc.off >= len(sc.s) {
		return Piece{}, false
	}

	start := sc.off
	var lit strings.Builder
	for sc.off < len(sc.s) {
		c := sc.s[sc.off]
		switch {
		case c == '{' && strings.HasPrefix(sc.s[sc.off:], "{{"):
			lit.WriteByte('{')
			sc.off += 2
		case c == '}' && strings.HasPrefix(sc.s[sc.off:], "}}"):
			lit.WriteByte('}')
			sc.off += 2
		case c == '}':
			return sc.fail(sc.off, "unmatched `}` found")
		case c == '{':
			if lit.Len() > 0 {
				return Piece{Literal: lit.String(), Offset: start}, true
			}
			return sc.placeholder()
		default:
			lit.WriteByte(c)
			sc.off++
		}
	}
	return Piece{Literal: lit.String(), Offset: start}, true
}

func (sc *Scanner) placeholder() (Piece, bool) {
	open := sc.off
	end := strings.IndexByte(sc.s[open:], '}')
	if end < 0 {
		return sc.fail(open, "expected `}` but string was terminated")
	}
	body := sc.s[open+1 : open+end]
	if i := strings.IndexByte(body, '{'); i >= 0 {
		return sc.fail(open+1+i, "unexpected `{` inside placeholder")
	}
	sc.off = open + end + 1

	p := &Placeholder{Offset: open}
	arg, spec, hasSpec := strings.Cut(body, ":")

	if arg != "" {
		param, ok := parseArgument(arg)
		if !ok {
			return sc.fail(open+1, "invalid argument name `%s`", arg)
		}
		p.Arg = param
		p.Explicit = true
	}

	if hasSpec {
		if err := sc.parseSpec(p, spec, open+1+len(arg)+1); err != nil {
			sc.err = err
			sc.off = len(sc.s)
			return Piece{}, false
		}
	}

	if !p.Explicit {
		p.Arg = Positional(sc.next)
		sc.next++
	}
	return Piece{Placeholder: p, Offset: open}, true
}

func parseArgument(s string) (Parameter, bool) {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && s[0] != '+' {
		return Positional(n), true
	}
	if isIdent(s) {
		return Named(s), true
	}
	return Parameter{}, false
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != "_"
}

func isAlign(r rune) bool { return r == '<' || r == '^' || r == '>' }

// parseSpec parses the part after ':'. base is the offset of spec in the
// literal.
func (sc *Scanner) parseSpec(p *Placeholder, spec string, base int) error {
	i := 0
	errorf := func(format string, args ...any) error {
		return &Error{Offset: base + i, Msg: fmt.Sprintf(format, args...)}
	}

	// [[fill]align]
	if r, size := utf8.DecodeRuneInString(spec); size > 0 {
		if r2, size2 := utf8.DecodeRuneInString(spec[size:]); size2 > 0 && isAlign(r2) {
			i = size + size2
			p.HasModifiers = true
		} else if isAlign(r) {
			i = size
			p.HasModifiers = true
		}
	}

	// [sign]['#']
	if i < len(spec) && (spec[i] == '+' || spec[i] == '-') {
		i++
		p.HasModifiers = true
	}
	if i < len(spec) && spec[i] == '#' {
		i++
		p.HasModifiers = true
	}

	// ['0'], unless it is the start of a "0$" width argument.
	if i < len(spec) && spec[i] == '0' && !(i+1 < len(spec) && spec[i+1] == '$') {
		i++
		p.HasModifiers = true
	}

	// [width]
	if count, n, ok := parseCount(spec[i:]); ok {
		p.Width = count
		p.HasModifiers = true
		i += n
	}

	// ['.' precision]
	if i < len(spec) && spec[i] == '.' {
		i++
		p.HasModifiers = true
		switch {
		case i < len(spec) && spec[i] == '*':
			i++
			prec := Positional(sc.next)
			sc.next++
			p.Precision = &prec
		default:
			count, n, ok := parseCount(spec[i:])
			if !ok {
				return errorf("expected precision after `.`")
			}
			p.Precision = count
			i += n
		}
	}

	// [type]
	typ := spec[i:]
	trait, ok := traitByType(typ)
	if !ok {
		if !isIdent(typ) && typ != "" {
			return errorf("invalid format spec `%s`", typ)
		}
		return errorf("unknown format trait `%s`", typ)
	}
	p.Trait = trait
	if typ == "x?" || typ == "X?" {
		p.HasModifiers = true
	}
	return nil
}

// parseCount parses a width or precision: an integer, "N$" or "name$". A
// literal integer is consumed but yields no parameter. An identifier not
// followed by '$' is not a count; it is the type.
func parseCount(s string) (*Parameter, int, bool) {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n > 0 {
		if n < len(s) && s[n] == '$' {
			idx, _ := strconv.Atoi(s[:n])
			param := Positional(idx)
			return &param, n + 1, true
		}
		return nil, n, true
	}

	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if r == '_' || unicode.IsLetter(r) || n > 0 && unicode.IsDigit(r) {
			n += size
			continue
		}
		break
	}
	if n > 0 && n < len(s) && s[n] == '$' {
		param := Named(s[:n])
		return &param, n + 1, true
	}
	return nil, 0, false
}

// Placeholders parses every placeholder of s.
func Placeholders(s string) ([]Placeholder, error) {
	sc := Parse(s)
	var ps []Placeholder
	for {
		piece, ok := sc.Next()
		if !ok {
			break
		}
		if piece.Placeholder != nil {
			ps = append(ps, *piece.Placeholder)
		}
	}
	return ps, sc.Err()
}
