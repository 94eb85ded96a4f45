package intent

import (
	"strings"

	"github.com/ayhangulbjk/ebs-insight/pkg/catalog"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
)

// Match-class weights applied when scoring a prompt token against a
// vocabulary: exact token hit, substring hit, typo-tolerant hit.
const (
	exactWeight     = 1.0
	substringWeight = 0.7
	fuzzyWeight     = 0.4

	fuzzyEditDistance = 1
)

// defaultNegativeSamples is the fixed bilingual chit-chat sample set the
// model is trained against. Extendable via config, never replaced.
var defaultNegativeSamples = []string{
	"merhaba", "selam", "nasılsın", "naber", "günaydın", "iyi akşamlar",
	"teşekkürler", "teşekkür ederim", "sağol", "görüşürüz", "hoşça kal",
	"hello", "hi", "hey", "good morning", "good evening", "how are you",
	"thanks", "thank you", "bye", "goodbye", "see you", "what's up",
}

// Model is the trained classification state: two token vocabularies built
// once from the catalog keyword sets and the negative sample set. It is
// immutable after construction; a catalog reload builds a whole new Model.
type Model struct {
	controlTokens  map[string]bool
	controlPhrases []string
	chitTokens     map[string]bool
	chitPhrases    []string
}

// TrainModel builds a Model from the catalog snapshot's bilingual keyword
// sets plus the fixed negative sample set (optionally extended).
func TrainModel(snap *catalog.Snapshot, extraNegatives []string) *Model {
	m := &Model{
		controlTokens: make(map[string]bool),
		chitTokens:    make(map[string]bool),
	}

	for _, c := range snap.Controls() {
		for _, phrase := range c.Keywords.All() {
			norm := Normalize(phrase)
			if norm == "" {
				continue
			}
			m.controlPhrases = append(m.controlPhrases, norm)
			for _, tok := range Tokenize(norm) {
				m.controlTokens[tok] = true
			}
		}
	}

	negatives := append(append([]string(nil), defaultNegativeSamples...), extraNegatives...)
	for _, phrase := range negatives {
		norm := Normalize(phrase)
		if norm == "" {
			continue
		}
		m.chitPhrases = append(m.chitPhrases, norm)
		for _, tok := range Tokenize(norm) {
			m.chitTokens[tok] = true
		}
	}

	logging.Infof("Intent model trained: %d control tokens, %d chit-chat tokens (controls=%d)",
		len(m.controlTokens), len(m.chitTokens), snap.Len())
	return m
}

// Score computes the two class scores for a normalized prompt. Each prompt
// token contributes its best match weight against a vocabulary; the sum is
// divided by the token count, so both scores land in [0,1].
func (m *Model) Score(normalized string) (chitChat, ebsControl float64) {
	tokens := Tokenize(normalized)
	if len(tokens) == 0 {
		return 0, 0
	}

	ebsControl = scoreAgainst(tokens, normalized, m.controlTokens, m.controlPhrases)
	chitChat = scoreAgainst(tokens, normalized, m.chitTokens, m.chitPhrases)
	return chitChat, ebsControl
}

func scoreAgainst(tokens []string, normalized string, vocab map[string]bool, phrases []string) float64 {
	total := 0.0
	for _, tok := range tokens {
		total += bestTokenWeight(tok, vocab)
	}

	// Whole-phrase presence dominates token evidence: a prompt containing a
	// full registered phrase scores at least substring weight.
	score := total / float64(len(tokens))
	for _, phrase := range phrases {
		if strings.Contains(normalized, phrase) {
			if score < substringWeight {
				score = substringWeight
			}
			break
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

// bestTokenWeight returns the strongest match class for one token: exact,
// substring (either direction, 4+ runes to avoid stopword noise), or fuzzy
// within one edit.
func bestTokenWeight(tok string, vocab map[string]bool) float64 {
	if vocab[tok] {
		return exactWeight
	}

	best := 0.0
	for v := range vocab {
		if len([]rune(tok)) >= 4 && len([]rune(v)) >= 4 {
			if strings.Contains(v, tok) || strings.Contains(tok, v) {
				if substringWeight > best {
					best = substringWeight
				}
				continue
			}
		}
		if best < fuzzyWeight && levenshteinDistance(tok, v) <= fuzzyEditDistance {
			best = fuzzyWeight
		}
	}
	return best
}
