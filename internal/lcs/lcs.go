// Package lcs compares names by their common prefixes and splits them into
// words.
package lcs

import "slices"

// CommonPrefix returns the longest common prefix of the strings in ss. It
// never splits a multi-byte character.
func CommonPrefix(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	// The common prefix of the lexicographic extremes is common to all.
	lo, hi := slices.Min(ss), slices.Max(ss)
	n := 0
	for i, r := range lo {
		if i >= len(hi) || !hasRuneAt(hi, i, r) {
			break
		}
		n = i + len(string(r))
	}
	return lo[:n]
}

func hasRuneAt(s string, i int, r rune) bool {
	for j, q := range s[i:] {
		return j == 0 && q == r
	}
	return false
}

// Closest returns the candidate sharing the longest prefix with word, as
// long as the prefix covers at least half of the candidate. It returns ""
// when no candidate is close enough. Ties go to the earlier candidate.
func Closest(word string, candidates []string) string {
	best, bestLen := "", 0
	for _, c := range candidates {
		n := len(CommonPrefix([]string{word, c}))
		if n > bestLen && n*2 >= len(c) {
			best, bestLen = c, n
		}
	}
	return best
}
