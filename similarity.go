package quizverify

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen is exclusive: tokens must be longer than this
const minTokenLen = 2

// tokenSet lowercases s, drops everything but letters, digits and spaces,
// and keeps the distinct words longer than minTokenLen.
func tokenSet(s string) map[string]struct{} {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	set := make(map[string]struct{})
	for _, w := range strings.Fields(b.String()) {
		if utf8.RuneCountInString(w) > minTokenLen {
			set[w] = struct{}{}
		}
	}
	return set
}

// Similarity is the Jaccard index of the token sets of a and b.
// It is 0 when either side has no qualifying token.
func Similarity(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	if len(tb) < len(ta) {
		ta, tb = tb, ta
	}
	inter := 0
	for w := range ta {
		if _, ok := tb[w]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}
