/*
Copyright 2025 EBS Insight.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package router ranks catalog controls for an actionable prompt and emits a
// single explainable routing decision. "No confident answer" is represented
// as data, never as an error: a route call always returns a Decision.
package router

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayhangulbjk/ebs-insight/pkg/catalog"
	"github.com/ayhangulbjk/ebs-insight/pkg/config"
	"github.com/ayhangulbjk/ebs-insight/pkg/intent"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/metrics"
)

// Router computes per-candidate score vectors, ranks candidates, applies
// confidence and ambiguity gates, and breaks ties deterministically. It is a
// pure function of (prompt, intent result, snapshot) plus its immutable
// configuration, and is safe for concurrent use.
type Router struct {
	cfg config.RouterConfig

	// now is injectable for deterministic recency tests.
	now func() time.Time
}

// New creates a Router with the given scoring configuration.
func New(cfg config.RouterConfig) *Router {
	return &Router{cfg: cfg, now: time.Now}
}

// Route ranks the snapshot's controls for a classified prompt and returns
// one Decision. The snapshot must be validated and non-nil; invoking the
// router with no snapshot is a programming-contract violation. An empty
// requestID is replaced with a fresh UUID; passing one keeps the decision
// fully reproducible from logged inputs.
func (r *Router) Route(requestID, prompt string, intentResult intent.Result, snap *catalog.Snapshot) *Decision {
	if snap == nil {
		panic("router: Route called with nil catalog snapshot")
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	start := time.Now()
	decision := &Decision{
		RequestID:        requestID,
		PromptIntent:     intentResult.Intent,
		IntentConfidence: intentResult.Confidence,
		SnapshotVersion:  snap.Version(),
	}

	// Step 1 — candidate generation: controls whose intent matches the
	// classified intent. For the coarse ebs_control intent every control is
	// a candidate; a specific diagnostic intent restricts the set.
	candidates := r.generateCandidates(intentResult.Intent, snap)
	if len(candidates) == 0 {
		decision.AmbiguityFlag = true
		decision.JustificationText = fmt.Sprintf(
			"no controls registered for intent %q in snapshot %s; nothing to execute",
			intentResult.Intent, snap.Version())
		metrics.RecordRoutingDecision("no_candidates", time.Since(start).Seconds())
		logging.Warnf("Routing found no candidates for intent %q (snapshot=%s)",
			intentResult.Intent, snap.Version())
		return decision
	}

	// Step 2 — per-candidate scoring.
	normalized := intent.Normalize(prompt)
	tokens := intent.Tokenize(normalized)
	penalty := ambiguityPenalty(tokens, r.cfg.VagueWords)
	now := r.now()

	scored := make([]CandidateScore, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, r.scoreCandidate(normalized, tokens, penalty, c, intentResult.Intent, now))
	}

	// Step 3 — ranking. The comparator is a total order: final score, then
	// the tie-break chain, ending at unique catalog declaration order, so no
	// residual randomness is possible.
	sort.Slice(scored, func(i, j int) bool { return candidateLess(&scored[i], &scored[j]) })
	decision.RankedCandidates = scored

	top := scored[0]
	if top.FinalScore < r.cfg.ConfidenceThreshold {
		decision.AmbiguityFlag = true
		decision.SuggestedAlternatives = topIDs(scored, r.cfg.MaxAlternatives)
		decision.JustificationText = fmt.Sprintf(
			"top candidate %q scored %.3f, below the confidence threshold %.2f; suggesting %d alternatives instead of executing",
			top.ControlID, top.FinalScore, r.cfg.ConfidenceThreshold, len(decision.SuggestedAlternatives))
		metrics.RecordRoutingDecision("below_threshold", time.Since(start).Seconds())
		metrics.TopCandidateScore.Observe(top.FinalScore)
		return decision
	}

	// Step 4 — ambiguity by closeness: best-effort selection with the flag
	// set so callers can confirm with the user before acting.
	decision.SelectedControlID = top.ControlID
	if len(scored) > 1 && top.FinalScore-scored[1].FinalScore < r.cfg.ClosenessGap {
		decision.AmbiguityFlag = true
		decision.SuggestedAlternatives = topIDs(scored, r.cfg.MaxAlternatives)
		decision.JustificationText = fmt.Sprintf(
			"selected %q at %.3f, but runner-up %q scored %.3f (gap %.3f < %.2f); caller should confirm before executing",
			top.ControlID, top.FinalScore, scored[1].ControlID, scored[1].FinalScore,
			top.FinalScore-scored[1].FinalScore, r.cfg.ClosenessGap)
		metrics.RecordRoutingDecision("ambiguous", time.Since(start).Seconds())
		metrics.TopCandidateScore.Observe(top.FinalScore)
		return decision
	}

	decision.JustificationText = justifySelection(&top, r.cfg.Weights)
	metrics.RecordRoutingDecision("selected", time.Since(start).Seconds())
	metrics.TopCandidateScore.Observe(top.FinalScore)
	logging.Infof("Routed to control %q (score=%.3f, snapshot=%s)",
		top.ControlID, top.FinalScore, snap.Version())
	return decision
}

// generateCandidates restricts the snapshot to controls matching the
// classified intent. The coarse ebs_control label admits the whole catalog;
// anything else must match the control's diagnostic intent exactly.
func (r *Router) generateCandidates(intentLabel string, snap *catalog.Snapshot) []*catalog.Control {
	if intentLabel == intent.EBSControl {
		return snap.Controls()
	}
	return snap.ByIntent(intentLabel)
}

// scoreCandidate computes the six component scores and the weighted final
// score for one control.
func (r *Router) scoreCandidate(
	normalizedPrompt string,
	promptTokens []string,
	penalty float64,
	c *catalog.Control,
	classifiedIntent string,
	now time.Time,
) CandidateScore {
	keywordScore, matchedKeywords := keywordMatchScore(normalizedPrompt, promptTokens, c)

	// Always 1.0 among candidates by construction of candidate generation;
	// retained for transparency and for relaxed-generation scenarios.
	intentScore := 0.0
	if classifiedIntent == intent.EBSControl || c.Intent == classifiedIntent {
		intentScore = 1.0
	}

	cs := CandidateScore{
		ControlID:        c.ControlID,
		Title:            c.Title,
		KeywordMatch:     keywordScore,
		IntentMatch:      intentScore,
		SQLShape:         sqlShapeScore(c),
		Recency:          recencyScore(c, now),
		Priority:         priorityScore(c),
		AmbiguityPenalty: penalty,
		MatchedKeywords:  matchedKeywords,
		queryCount:       len(c.Queries),
		catalogOrder:     c.Order(),
	}

	w := r.cfg.Weights
	cs.FinalScore = w.KeywordMatch*cs.KeywordMatch +
		w.IntentMatch*cs.IntentMatch +
		w.SQLShape*cs.SQLShape +
		w.Recency*cs.Recency +
		w.Priority*cs.Priority -
		w.AmbiguityPenalty*cs.AmbiguityPenalty
	return cs
}

// candidateLess is the strict ranking order: final score descending, then
// the deterministic tie-break chain — higher intent match, higher keyword
// match, fewer queries (simpler control wins), catalog declaration order.
func candidateLess(a, b *CandidateScore) bool {
	if a.FinalScore != b.FinalScore {
		return a.FinalScore > b.FinalScore
	}
	if a.IntentMatch != b.IntentMatch {
		return a.IntentMatch > b.IntentMatch
	}
	if a.KeywordMatch != b.KeywordMatch {
		return a.KeywordMatch > b.KeywordMatch
	}
	if a.queryCount != b.queryCount {
		return a.queryCount < b.queryCount
	}
	return a.catalogOrder < b.catalogOrder
}

func topIDs(scored []CandidateScore, n int) []string {
	if n > len(scored) {
		n = len(scored)
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = scored[i].ControlID
	}
	return ids
}

// justifySelection renders the winning score vector as a reproducible,
// human-readable justification.
func justifySelection(top *CandidateScore, w config.ScoreWeights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "selected %q with final score %.3f = %.2f·keyword(%.3f) + %.2f·intent(%.1f) + %.2f·sql_shape(%.1f) + %.2f·recency(%.2f) + %.2f·priority(%.2f) − %.2f·ambiguity(%.2f)",
		top.ControlID, top.FinalScore,
		w.KeywordMatch, top.KeywordMatch,
		w.IntentMatch, top.IntentMatch,
		w.SQLShape, top.SQLShape,
		w.Recency, top.Recency,
		w.Priority, top.Priority,
		w.AmbiguityPenalty, top.AmbiguityPenalty)
	if len(top.MatchedKeywords) > 0 {
		fmt.Fprintf(&b, "; matched keywords: %s", strings.Join(top.MatchedKeywords, ", "))
	}
	return b.String()
}
