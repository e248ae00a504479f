// Package bound infers the where-clause predicates of generated impls.
package bound

import (
	"slices"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/sublee/derivegen/internal/syntax"
)

// Search finds mentions of the generic parameters of a declaration.
type Search struct {
	types     []string
	lifetimes []string
	consts    []string
}

// NewSearch returns a search over the parameters of g. When typesOnly is
// set, only type parameters count as mentions.
func NewSearch(g syntax.Generics, typesOnly bool) Search {
	s := Search{types: g.Names(syntax.TypeParam)}
	if !typesOnly {
		s.lifetimes = g.Names(syntax.LifetimeParam)
		s.consts = g.Names(syntax.ConstParam)
	}
	return s
}

// Mentions reports whether t mentions any of the parameters.
func (s Search) Mentions(t syntax.Type) bool {
	found := false
	syntax.Inspect(t, func(n any) bool {
		if found {
			return false
		}
		switch n := n.(type) {
		case *syntax.PathType:
			// "T", "T::Assoc" and, for const parameters, "N".
			if n.QSelf == nil && !n.Leading && len(n.Segments) > 0 {
				first := n.Segments[0].Name
				if slices.Contains(s.types, first) || len(n.Segments) == 1 && slices.Contains(s.consts, first) {
					found = true
				}
			}
		case syntax.LifetimeRef:
			found = slices.Contains(s.lifetimes, string(n))
		case syntax.Stream:
			found = s.streamMentions(n)
		}
		return !found
	})
	return found
}

func (s Search) streamMentions(toks syntax.Stream) bool {
	for _, t := range toks {
		switch t.Kind {
		case syntax.Ident:
			if slices.Contains(s.consts, t.Text) || slices.Contains(s.types, t.Text) {
				return true
			}
		case syntax.Lifetime:
			if slices.Contains(s.lifetimes, t.Text) {
				return true
			}
		case syntax.Group:
			if s.streamMentions(t.Inner) {
				return true
			}
		}
	}
	return false
}

// Set is an insertion-ordered set of inferred predicates "Type: Trait"
// together with predicates written by the user.
type Set struct {
	inferred *linkedhashmap.Map // type code -> *entry
	user     []string
	exclude  []syntax.Type
}

type entry struct {
	typ    syntax.Type
	traits *linkedhashset.Set // of string
}

// NewSet returns an empty set for impls on d. Types containing Self or the
// implementor type itself are never bounded.
func NewSet(d *syntax.Decl) *Set {
	s := &Set{
		inferred: linkedhashmap.New(),
		exclude:  []syntax.Type{syntax.NewPath("Self")},
	}
	if self, err := syntax.ParseTypeString(d.Name + d.Generics.Ty()); err == nil {
		s.exclude = append(s.exclude, self)
	}
	return s
}

// Excluded reports whether t contains Self or the implementor type.
func (s *Set) Excluded(t syntax.Type) bool {
	for _, x := range s.exclude {
		if syntax.Contains(t, x) {
			return true
		}
	}
	return false
}

// Add adds the predicate "t: trait" unless t is excluded. It reports
// whether the predicate is in the set afterwards.
func (s *Set) Add(t syntax.Type, trait string) bool {
	if s.Excluded(t) {
		return false
	}
	key := t.Code()
	v, ok := s.inferred.Get(key)
	if !ok {
		v = &entry{typ: t, traits: linkedhashset.New()}
		s.inferred.Put(key, v)
	}
	v.(*entry).traits.Add(trait)
	return true
}

// AddUser adds predicates written by the user. They are kept verbatim even
// when an inferred predicate says the same.
func (s *Set) AddUser(preds ...syntax.Stream) {
	for _, p := range preds {
		s.user = append(s.user, p.Code())
	}
}

// AddRaw adds a predicate built by a derive, such as "Self: Debug".
func (s *Set) AddRaw(pred string) {
	if !slices.Contains(s.user, pred) {
		s.user = append(s.user, pred)
	}
}

// Len returns the number of predicates.
func (s *Set) Len() int { return s.inferred.Size() + len(s.user) }

// Predicates renders the inferred predicates followed by the user
// predicates. Traits on the same type are joined: "T: Display + Debug".
func (s *Set) Predicates() []string {
	var preds []string
	it := s.inferred.Iterator()
	for it.Next() {
		e := it.Value().(*entry)
		traits := make([]string, 0, e.traits.Size())
		for _, tr := range e.traits.Values() {
			traits = append(traits, tr.(string))
		}
		preds = append(preds, e.typ.Code()+": "+strings.Join(traits, " + "))
	}
	return append(preds, s.user...)
}
