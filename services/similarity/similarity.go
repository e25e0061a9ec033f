// Package similarity holds the string primitives used for fuzzy song matching:
// normalization, character n-grams, the Dice coefficient and edit distance.
package similarity

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordRegex    = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, folds diacritics, replaces every non-word character
// with a space and collapses runs of whitespace.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = FoldDiacritics(s)
	s = strings.ToLower(s)
	s = nonWordRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FoldDiacritics decomposes s and drops combining marks, so "Beyoncé" becomes "Beyonce".
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// NGrams returns the set of contiguous k-rune substrings of s.
// The set is empty when s is shorter than k.
func NGrams(s string, k int) map[string]struct{} {
	set := make(map[string]struct{})
	r := []rune(s)
	if k <= 0 || len(r) < k {
		return set
	}
	for i := 0; i+k <= len(r); i++ {
		set[string(r[i:i+k])] = struct{}{}
	}
	return set
}

// DiceCoefficient compares the bigram sets of a and b.
// Two empty strings are identical (1.0); one empty string never matches (0.0).
func DiceCoefficient(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	ga, gb := NGrams(a, 2), NGrams(b, 2)
	if len(ga)+len(gb) == 0 {
		// distinct single-rune strings
		return 0.0
	}

	intersection := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			intersection++
		}
	}
	return 2 * float64(intersection) / float64(len(ga)+len(gb))
}

// Levenshtein returns the rune-level edit distance between a and b.
func Levenshtein(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// LevenshteinSimilarity maps the edit distance onto [0,1] relative to the longer string.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1 - float64(Levenshtein(a, b))/float64(maxLen)
}
