package syntax

// Parser tries to consume tokens at a cursor. On success it returns the
// cursor after the consumed tokens; on failure the returned cursor is
// meaningless and the caller keeps its own.
type Parser func(c Cursor) (Cursor, bool)

// PunctP matches the single punctuation ch.
func PunctP(ch byte) Parser {
	return func(c Cursor) (Cursor, bool) {
		_, c, ok := c.Punct(ch)
		return c, ok
	}
}

// Colon2 matches "::" written without a gap.
func Colon2(c Cursor) (Cursor, bool) {
	t, next, ok := c.Punct(':')
	if !ok || !t.Joint {
		return c, false
	}
	_, next, ok = next.Punct(':')
	return next, ok
}

// TokenTree matches any single token tree.
func TokenTree(c Cursor) (Cursor, bool) {
	if c.EOF() {
		return c, false
	}
	_, next := c.Next()
	return next, true
}

// Seq matches every parser in order.
func Seq(ps ...Parser) Parser {
	return func(c Cursor) (Cursor, bool) {
		for _, p := range ps {
			var ok bool
			if c, ok = p(c); !ok {
				return c, false
			}
		}
		return c, true
	}
}

// Alt matches the first parser that succeeds.
func Alt(ps ...Parser) Parser {
	return func(c Cursor) (Cursor, bool) {
		for _, p := range ps {
			if next, ok := p(c); ok {
				return next, true
			}
		}
		return c, false
	}
}

// Opt never fails; it consumes what p matches, if anything.
func Opt(p Parser) Parser {
	return func(c Cursor) (Cursor, bool) {
		if next, ok := p(c); ok {
			return next, true
		}
		return c, true
	}
}

// BalancedPair matches open, then everything up to the close that balances
// it. When open and close match the same token, the first close ends the
// pair. Fails if the input ends before the pair balances.
func BalancedPair(open, close Parser) Parser {
	return func(c Cursor) (Cursor, bool) {
		c, ok := open(c)
		if !ok {
			return c, false
		}
		depth := 1
		for {
			if c.EOF() {
				return c, false
			}
			if next, ok := close(c); ok {
				c = next
				if depth--; depth == 0 {
					return c, true
				}
				continue
			}
			if next, ok := open(c); ok {
				c = next
				depth++
				continue
			}
			_, c = c.Next()
		}
	}
}

// TakeUntil1 repeatedly applies p until the input ends or until matches.
// The terminator is left unconsumed. It needs at least one match of p.
func TakeUntil1(p, until Parser) Parser {
	return func(c Cursor) (Cursor, bool) {
		n := 0
		for {
			if _, ok := until(c); ok || c.EOF() {
				return c, n > 0
			}
			next, ok := p(c)
			if !ok {
				return c, n > 0
			}
			c = next
			n++
		}
	}
}

// QSelfSpan matches an angle-bracketed span such as "<T as Trait>".
var QSelfSpan = BalancedPair(PunctP('<'), PunctP('>'))
