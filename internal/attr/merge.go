package attr

import (
	"slices"
)

// Merge combines two occurrences of the same attribute on one item. Type
// lists concatenate, and a bounds-only format merges with a format literal.
// Every other combination is an error reported at the second occurrence.
func (p Parser) Merge(prev, next Directive) (Directive, error) {
	switch prev := prev.(type) {
	case *Types:
		if next, ok := next.(*Types); ok {
			return &Types{
				span: span{prev.pos, next.end},
				List: slices.Concat(prev.List, next.List),
			}, nil
		}

	case *Format:
		if next, ok := next.(*Format); ok {
			if prev.HasLit() && next.HasLit() {
				return nil, p.errorf(next, "duplicate format specification in `#[%s(...)]`", p.name())
			}
			merged := *prev
			if next.HasLit() {
				merged = *next
			}
			merged.span = span{prev.pos, next.end}
			merged.Bounds = slices.Concat(prev.Bounds, next.Bounds)
			return &merged, nil
		}
	}

	prevSkip, nextSkip := prev.Kind() == KindSkip, next.Kind() == KindSkip
	if prevSkip != nextSkip {
		return nil, p.errorf(next, "conflicting `#[%s(...)]` directives: `%s` and `%s`",
			p.name(), word(prev), word(next))
	}
	return nil, p.errorf(next, "only a single `#[%s(...)]` attribute is allowed here", p.name())
}

func (p Parser) name() string {
	if len(p.Names) == 0 {
		return ""
	}
	return p.Names[0]
}

// word names a directive the way it is written.
func word(d Directive) string {
	switch d := d.(type) {
	case *Skip:
		return d.Word
	case *Empty:
		if d.Word != "" {
			return d.Word
		}
	}
	return d.Kind().String()
}
