package router

import (
	"strings"
	"time"

	"github.com/ayhangulbjk/ebs-insight/pkg/catalog"
	"github.com/ayhangulbjk/ebs-insight/pkg/intent"
)

// Keyword match-class weights: exact phrase, substring, fuzzy/typo-tolerant.
const (
	keywordExactWeight     = 1.0
	keywordSubstringWeight = 0.7
	keywordFuzzyWeight     = 0.4

	keywordFuzzyThreshold = 2 // max edit distance per keyword token
)

// vagueTermLimit is the number of vague-vocabulary terms a prompt may contain
// before the ambiguity penalty applies.
const vagueTermLimit = 2

// stairRule is one step of a score staircase: ordered (predicate, outcome)
// pairs evaluated top to bottom, first match wins.
type stairRule[T any] struct {
	matches func(T) bool
	outcome float64
}

func evalStairs[T any](rules []stairRule[T], v T, fallback float64) float64 {
	for _, r := range rules {
		if r.matches(v) {
			return r.outcome
		}
	}
	return fallback
}

// sqlShapeStairs maps query count and aggregate column count to a coarse
// complexity proxy.
var sqlShapeStairs = []stairRule[*catalog.Control]{
	{func(c *catalog.Control) bool { return len(c.Queries) >= 3 && c.ColumnCount() >= 10 }, 0.8},
	{func(c *catalog.Control) bool { return len(c.Queries) == 1 && c.ColumnCount() < 5 }, 0.3},
}

// recencyStairs maps days since the control's version date to a step value.
var recencyStairs = []stairRule[float64]{
	{func(days float64) bool { return days < 30 }, 0.10},
	{func(days float64) bool { return days < 90 }, 0.07},
	{func(days float64) bool { return days < 180 }, 0.03},
}

// sqlShapeScore returns 0.8, 0.5 or 0.3 from the query/column staircase.
func sqlShapeScore(c *catalog.Control) float64 {
	return evalStairs(sqlShapeStairs, c, 0.5)
}

// recencyScore returns the recency step for the control's version date at
// the given reference time.
func recencyScore(c *catalog.Control, now time.Time) float64 {
	if c.VersionDate.IsZero() {
		return 0
	}
	days := now.Sub(c.VersionDate).Hours() / 24
	return evalStairs(recencyStairs, days, 0)
}

// priorityScore returns the tier boost. Tier membership never bypasses the
// confidence gate.
func priorityScore(c *catalog.Control) float64 {
	switch c.PriorityTier {
	case catalog.TierCritical:
		return 0.10
	case catalog.TierHealthBundle:
		return 0.05
	default:
		return 0
	}
}

// ambiguityPenalty returns 0.05 when the prompt contains more than
// vagueTermLimit terms from the vague-word vocabulary, else 0.
func ambiguityPenalty(promptTokens []string, vagueWords []string) float64 {
	vague := make(map[string]bool, len(vagueWords))
	for _, w := range vagueWords {
		vague[intent.Normalize(w)] = true
	}

	count := 0
	for _, tok := range promptTokens {
		if vague[tok] {
			count++
		}
	}
	if count > vagueTermLimit {
		return 0.05
	}
	return 0
}

// keywordMatchScore scores a control's full bilingual keyword set against
// the normalized prompt. Every keyword is classified as an exact-phrase,
// substring, or fuzzy match; matched weights are summed and divided by the
// total keyword count, rewarding controls where a large fraction of their
// vocabulary is present.
func keywordMatchScore(normalizedPrompt string, promptTokens []string, c *catalog.Control) (float64, []string) {
	keywords := c.Keywords.All()
	if len(keywords) == 0 {
		return 0, nil
	}

	var matched []string
	total := 0.0
	for _, kw := range keywords {
		phrase := intent.Normalize(kw)
		if phrase == "" {
			continue
		}
		switch classifyKeywordMatch(normalizedPrompt, promptTokens, phrase) {
		case keywordExactWeight:
			total += keywordExactWeight
			matched = append(matched, kw)
		case keywordSubstringWeight:
			total += keywordSubstringWeight
			matched = append(matched, kw)
		case keywordFuzzyWeight:
			total += keywordFuzzyWeight
			matched = append(matched, kw+" (fuzzy)")
		}
	}

	return total / float64(len(keywords)), matched
}

// classifyKeywordMatch returns the match-class weight for one keyword phrase
// against the prompt, or 0 for no match.
func classifyKeywordMatch(normalizedPrompt string, promptTokens []string, phrase string) float64 {
	// Exact phrase: the whole phrase appears on word boundaries.
	if containsPhrase(normalizedPrompt, phrase) {
		return keywordExactWeight
	}

	// Substring: the phrase appears inside the prompt without boundaries
	// (agglutinative Turkish suffixes land here: "sağlık" in "sağlığı" does
	// not, but "manager" in "managerlar" does).
	if strings.Contains(normalizedPrompt, phrase) {
		return keywordSubstringWeight
	}

	// Fuzzy: every token of the phrase has a prompt token within the edit
	// distance threshold.
	phraseTokens := intent.Tokenize(phrase)
	if len(phraseTokens) == 0 {
		return 0
	}
	for _, pt := range phraseTokens {
		if !fuzzyTokenMatch(pt, promptTokens) {
			return 0
		}
	}
	return keywordFuzzyWeight
}

// containsPhrase reports whether phrase occurs in text on token boundaries.
func containsPhrase(text, phrase string) bool {
	padded := " " + strings.Join(intent.Tokenize(text), " ") + " "
	needle := " " + strings.Join(intent.Tokenize(phrase), " ") + " "
	return strings.Contains(padded, needle)
}

func fuzzyTokenMatch(keywordToken string, promptTokens []string) bool {
	for _, tok := range promptTokens {
		if levenshteinWithin(tok, keywordToken, keywordFuzzyThreshold) {
			return true
		}
	}
	return false
}

// levenshteinWithin reports whether the edit distance between two strings is
// at most threshold, with a cheap length pre-check.
func levenshteinWithin(s1, s2 string, threshold int) bool {
	l1 := len([]rune(s1))
	l2 := len([]rune(s2))
	diff := l1 - l2
	if diff < 0 {
		diff = -diff
	}
	if diff > threshold {
		return false
	}
	return levenshteinDistance(s1, s2) <= threshold
}

// levenshteinDistance is the Wagner-Fischer edit distance with O(min(m,n))
// space.
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
