package syntax

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sublee/derivegen/internal/codefmt"
)

const punctChars = "+-*/%^!&|=<>@.,;:#$?~\\"

type lexer struct {
	fset *token.FileSet
	file *token.File
	src  []byte
	off  int
}

// Lex splits src into token trees. The file is registered in fset so that
// every token carries a resolvable position.
func Lex(fset *token.FileSet, filename string, src []byte) (Stream, error) {
	file := fset.AddFile(filename, -1, len(src))
	file.SetLinesForContent(src)
	l := &lexer{fset: fset, file: file, src: src}
	s, _, err := l.stream(0, token.NoPos)
	return s, err
}

// LexString lexes a standalone snippet. It is convenient for tests and for
// re-parsing directive arguments.
func LexString(s string) (Stream, error) {
	return Lex(token.NewFileSet(), "<input>", []byte(s))
}

func (l *lexer) pos(off int) token.Pos { return l.file.Pos(off) }

func (l *lexer) errorf(off int, format string, args ...any) error {
	return codefmt.Errorf(l.fset, codefmt.Pos(l.pos(off)), format, args...)
}

// skipSpace skips whitespace and comments and reports whether anything was
// skipped.
func (l *lexer) skipSpace() (bool, error) {
	skipped := false
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.off++
		case c == '/' && l.peekAt(1) == '/':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.off++
			}
		case c == '/' && l.peekAt(1) == '*':
			start := l.off
			depth := 0
			for {
				if l.off >= len(l.src) {
					return skipped, l.errorf(start, "unterminated block comment")
				}
				if l.src[l.off] == '/' && l.peekAt(1) == '*' {
					depth++
					l.off += 2
					continue
				}
				if l.src[l.off] == '*' && l.peekAt(1) == '/' {
					depth--
					l.off += 2
					if depth == 0 {
						break
					}
					continue
				}
				l.off++
			}
		default:
			return skipped, nil
		}
		skipped = true
	}
	return skipped, nil
}

func (l *lexer) peekAt(n int) byte {
	if l.off+n < len(l.src) {
		return l.src[l.off+n]
	}
	return 0
}

// stream lexes token trees until the closing delimiter closer, or until
// the end of input when closer is 0.
func (l *lexer) stream(closer byte, open token.Pos) (s Stream, closeSpace bool, err error) {
	for {
		space, err := l.skipSpace()
		if err != nil {
			return nil, false, err
		}
		if l.off >= len(l.src) {
			if closer != 0 {
				return nil, false, codefmt.Errorf(l.fset, codefmt.Pos(open), "unclosed delimiter")
			}
			return s, false, nil
		}

		start := l.off
		c := l.src[l.off]
		switch c {
		case ')', ']', '}':
			if c != closer {
				return nil, false, l.errorf(start, "unexpected closing delimiter `%c`", c)
			}
			l.off++
			return s, space, nil

		case '(', '[', '{':
			l.off++
			delim, close := Paren, byte(')')
			switch c {
			case '[':
				delim, close = Bracket, ']'
			case '{':
				delim, close = Brace, '}'
			}
			inner, cs, err := l.stream(close, l.pos(start))
			if err != nil {
				return nil, false, err
			}
			s = append(s, Token{
				Kind: Group, Delim: delim, Inner: inner, CloseSpace: cs, Space: space,
				pos: l.pos(start), end: l.pos(l.off),
			})
			continue
		}

		tok, err := l.leaf()
		if err != nil {
			return nil, false, err
		}
		tok.Space = space
		tok.pos = l.pos(start)
		tok.end = l.pos(l.off)
		s = append(s, tok)
	}
}

func (l *lexer) leaf() (Token, error) {
	start := l.off
	c := l.src[l.off]

	switch {
	case c == '"':
		if err := l.quoted('"'); err != nil {
			return Token{}, err
		}
		return l.literal(start), nil

	case c == '\'':
		return l.quote()

	case c >= '0' && c <= '9':
		l.number()
		return l.literal(start), nil

	case c == 'r' && (l.peekAt(1) == '"' || l.peekAt(1) == '#' && (l.peekAt(2) == '"' || l.peekAt(2) == '#')):
		l.off++
		if err := l.raw(start); err != nil {
			return Token{}, err
		}
		return l.literal(start), nil

	case (c == 'b' || c == 'c') && l.peekAt(1) == '"':
		l.off++
		if err := l.quoted('"'); err != nil {
			return Token{}, err
		}
		return l.literal(start), nil

	case c == 'b' && l.peekAt(1) == '\'':
		l.off++
		if err := l.quoted('\''); err != nil {
			return Token{}, err
		}
		return l.literal(start), nil

	case (c == 'b' || c == 'c') && l.peekAt(1) == 'r' && (l.peekAt(2) == '"' || l.peekAt(2) == '#'):
		l.off += 2
		if err := l.raw(start); err != nil {
			return Token{}, err
		}
		return l.literal(start), nil

	case c == 'r' && l.peekAt(1) == '#' && isIdentStart(rune(l.peekAt(2))):
		l.off += 2
		l.ident()
		return Token{Kind: Ident, Text: string(l.src[start:l.off])}, nil

	case strings.IndexByte(punctChars, c) >= 0:
		l.off++
		joint := l.off < len(l.src) && strings.IndexByte(punctChars, l.src[l.off]) >= 0
		return Token{Kind: Punct, Text: string(c), Joint: joint}, nil
	}

	r, _ := utf8.DecodeRune(l.src[l.off:])
	if isIdentStart(r) {
		l.ident()
		return Token{Kind: Ident, Text: string(l.src[start:l.off])}, nil
	}
	return Token{}, l.errorf(start, "unexpected character %s", strconv.QuoteRune(r))
}

func (l *lexer) literal(start int) Token {
	l.suffix()
	return Token{Kind: Literal, Text: string(l.src[start:l.off])}
}

// suffix consumes a literal suffix such as "u8" in "0u8".
func (l *lexer) suffix() {
	if l.off < len(l.src) && isIdentStart(rune(l.src[l.off])) {
		l.ident()
	}
}

func (l *lexer) ident() {
	for l.off < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.off:])
		if !isIdentContinue(r) {
			return
		}
		l.off += size
	}
}

func (l *lexer) number() {
	hex := l.src[l.off] == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X')
	dot := false
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c >= '0' && c <= '9' || c == '_':
			l.off++
		case c == '.' && !dot && !hex && l.peekAt(1) >= '0' && l.peekAt(1) <= '9':
			dot = true
			l.off++
		case (c == '+' || c == '-') && !hex && l.off > 0 && (l.src[l.off-1] == 'e' || l.src[l.off-1] == 'E'):
			l.off++
		case c < utf8.RuneSelf && isIdentContinue(rune(c)):
			l.off++
		default:
			return
		}
	}
}

// quoted consumes a quoted literal starting at the opening quote q.
func (l *lexer) quoted(q byte) error {
	start := l.off
	l.off++
	for l.off < len(l.src) {
		switch l.src[l.off] {
		case '\\':
			l.off += 2
			continue
		case q:
			l.off++
			return nil
		}
		l.off++
	}
	return l.errorf(start, "unterminated literal")
}

// raw consumes a raw string starting at its hashes or opening quote.
func (l *lexer) raw(start int) error {
	hashes := 0
	for l.off < len(l.src) && l.src[l.off] == '#' {
		hashes++
		l.off++
	}
	if l.off >= len(l.src) || l.src[l.off] != '"' {
		return l.errorf(start, "invalid raw string literal")
	}
	l.off++
	closing := "\"" + strings.Repeat("#", hashes)
	i := strings.Index(string(l.src[l.off:]), closing)
	if i < 0 {
		return l.errorf(start, "unterminated raw string literal")
	}
	l.off += i + len(closing)
	return nil
}

// quote lexes a character literal or a lifetime.
func (l *lexer) quote() (Token, error) {
	start := l.off
	if l.peekAt(1) == '\\' {
		if err := l.quoted('\''); err != nil {
			return Token{}, err
		}
		return l.literal(start), nil
	}
	r, size := utf8.DecodeRune(l.src[l.off+1:])
	if l.off+1+size < len(l.src) && l.src[l.off+1+size] == '\'' {
		l.off += 2 + size
		return l.literal(start), nil
	}
	if !isIdentStart(r) {
		return Token{}, l.errorf(start, "invalid character literal")
	}
	l.off++
	l.ident()
	return Token{Kind: Lifetime, Text: string(l.src[start:l.off])}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
