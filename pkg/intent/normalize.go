package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prompts arrive in Turkish and English. Lower-casing must be Turkish-aware
// (İ→i, I→ı) or TR keywords fail to match; diacritics are preserved.
var turkishLower = cases.Lower(language.Turkish)

// Normalize prepares a prompt for matching: trim, Turkish-aware lower-case,
// collapse internal whitespace. The original prompt is kept by callers for
// audit.
func Normalize(prompt string) string {
	s := strings.TrimSpace(prompt)
	if s == "" {
		return ""
	}
	s = turkishLower.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits normalized text into letter/digit word tokens, dropping
// punctuation.
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// levenshteinDistance calculates the edit distance between two strings using
// the Wagner-Fischer dynamic programming approach with O(min(m,n)) space.
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	if len1 > len2 {
		r1, r2 = r2, r1
		len1, len2 = len2, len1
	}

	prev := make([]int, len1+1)
	curr := make([]int, len1+1)
	for i := 0; i <= len1; i++ {
		prev[i] = i
	}

	for j := 1; j <= len2; j++ {
		curr[0] = j
		for i := 1; i <= len1; i++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[i] = min(prev[i]+1, min(curr[i-1]+1, prev[i-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len1]
}
