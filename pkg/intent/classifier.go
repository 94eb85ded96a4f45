// Package intent classifies a free-text prompt into one of four intents:
// chit_chat, ebs_control, ambiguous, unknown. The classifier is a pure
// function of its trained model state; it never fails on string input.
package intent

import (
	"sync/atomic"
	"time"

	"github.com/ayhangulbjk/ebs-insight/pkg/config"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/metrics"
)

// Intent labels produced by the classifier.
const (
	ChitChat   = "chit_chat"
	EBSControl = "ebs_control"
	Ambiguous  = "ambiguous"
	Unknown    = "unknown"
)

// Result is the classification output: the chosen intent, a probability-like
// confidence in [0,1], and the per-class score breakdown.
type Result struct {
	Intent         string             `json:"intent"`
	Confidence     float64            `json:"confidence"`
	PerClassScores map[string]float64 `json:"per_class_scores"`
}

// thresholdRule is one step of the decision staircase. Rules are evaluated
// top to bottom with first-match-wins semantics.
type thresholdRule struct {
	matches    func(chitChat, ebs float64) bool
	intent     string
	confidence func(chitChat, ebs float64) float64
}

// Classifier turns prompts into a stable four-way intent signal. The model
// reference is swapped atomically on catalog reload; each Classify call
// reads it exactly once.
type Classifier struct {
	model atomic.Pointer[Model]
	rules []thresholdRule
}

// NewClassifier creates a Classifier with the given trained model and
// threshold configuration.
func NewClassifier(model *Model, cfg config.ClassifierConfig) *Classifier {
	c := &Classifier{}
	c.model.Store(model)

	c.rules = []thresholdRule{
		{
			matches:    func(cc, _ float64) bool { return cc > cfg.ChitChatThreshold },
			intent:     ChitChat,
			confidence: func(cc, _ float64) float64 { return cc },
		},
		{
			matches:    func(_, ebs float64) bool { return ebs > cfg.EBSThreshold },
			intent:     EBSControl,
			confidence: func(_, ebs float64) float64 { return ebs },
		},
		{
			matches:    func(cc, ebs float64) bool { return max(cc, ebs) > cfg.AmbiguousThreshold },
			intent:     Ambiguous,
			confidence: func(cc, ebs float64) float64 { return max(cc, ebs) },
		},
	}
	return c
}

// ReplaceModel atomically publishes a new trained model. In-flight Classify
// calls keep the model they already resolved.
func (c *Classifier) ReplaceModel(model *Model) {
	c.model.Store(model)
}

// Classify maps a raw prompt to a Result. Empty or whitespace-only input
// yields unknown with confidence 0. Side-effect free apart from metrics.
func (c *Classifier) Classify(prompt string) Result {
	start := time.Now()

	normalized := Normalize(prompt)
	if normalized == "" {
		res := Result{
			Intent:         Unknown,
			Confidence:     0,
			PerClassScores: map[string]float64{ChitChat: 0, EBSControl: 0},
		}
		metrics.RecordIntentClassification(Unknown, time.Since(start).Seconds())
		return res
	}

	chitChat, ebs := c.model.Load().Score(normalized)
	scores := map[string]float64{ChitChat: chitChat, EBSControl: ebs}

	for _, rule := range c.rules {
		if rule.matches(chitChat, ebs) {
			res := Result{
				Intent:         rule.intent,
				Confidence:     rule.confidence(chitChat, ebs),
				PerClassScores: scores,
			}
			metrics.RecordIntentClassification(rule.intent, time.Since(start).Seconds())
			return res
		}
	}

	res := Result{
		Intent:         Unknown,
		Confidence:     max(chitChat, ebs),
		PerClassScores: scores,
	}
	metrics.RecordIntentClassification(Unknown, time.Since(start).Seconds())
	return res
}
