package syntax

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unquote returns the value of a string literal token text. Plain strings
// are unescaped, raw strings are returned verbatim.
func Unquote(lit string) (string, error) {
	lit = strings.TrimLeft(lit, "bc")
	if strings.HasPrefix(lit, "r") {
		lit = lit[1:]
		hashes := len(lit) - len(strings.TrimLeft(lit, "#"))
		lit = lit[hashes:]
		if len(lit) < 2+hashes || lit[0] != '"' || lit[len(lit)-1-hashes] != '"' {
			return "", errors.New("invalid raw string literal")
		}
		return lit[1 : len(lit)-1-hashes], nil
	}

	if len(lit) < 2 || lit[0] != '"' {
		return "", errors.New("not a string literal")
	}
	end := strings.LastIndexByte(lit, '"')
	if end == 0 {
		return "", errors.New("unterminated string literal")
	}
	body := lit[1:end]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", errors.New("invalid escape at end of literal")
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(body[i])
		case '\n':
			// Line continuation skips the newline and leading whitespace.
			for i+1 < len(body) && strings.IndexByte(" \t\r\n", body[i+1]) >= 0 {
				i++
			}
		case 'x':
			if i+3 > len(body) {
				return "", errors.New("invalid \\x escape")
			}
			n, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", errors.New("invalid \\x escape")
			}
			b.WriteByte(byte(n))
			i += 2
		case 'u':
			close := strings.IndexByte(body[i:], '}')
			if i+1 >= len(body) || body[i+1] != '{' || close < 0 {
				return "", errors.New("invalid \\u escape")
			}
			hex := strings.ReplaceAll(body[i+2:i+close], "_", "")
			n, err := strconv.ParseUint(hex, 16, 32)
			if err != nil || !utf8.ValidRune(rune(n)) {
				return "", errors.New("invalid \\u escape")
			}
			b.WriteRune(rune(n))
			i += close
		default:
			return "", errors.New("unknown character escape")
		}
	}
	return b.String(), nil
}
