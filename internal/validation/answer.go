package validation

import (
	"strings"
	"unicode"
)

// similarityThreshold is the largest edit distance, as a fraction of the
// longer normalized answer, still accepted as a match.
const similarityThreshold = 0.2

var articles = []string{"the ", "a ", "an "}

// NormalizeAnswer lowercases an answer and strips leading articles, punctuation and extra spaces
func NormalizeAnswer(answer string) string {
	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, article := range articles {
		answer = strings.TrimPrefix(answer, article)
	}

	var b strings.Builder
	for _, r := range answer {
		if !unicode.IsPunct(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// MatchAnswer reports whether a player's answer is close enough to the expected one
func MatchAnswer(expected, given string) bool {
	want := NormalizeAnswer(expected)
	got := NormalizeAnswer(given)
	if got == "" {
		return false
	}
	if want == got {
		return true
	}

	distance := Levenshtein(want, got)
	longest := max(len([]rune(want)), len([]rune(got)))
	return float64(distance)/float64(longest) < similarityThreshold
}

// Levenshtein returns the edit distance between two strings, counted in runes
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
