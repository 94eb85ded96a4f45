// Package service wires the guard, classifier, router and audit recorder
// into one request-handling engine. Each call pins a single catalog snapshot
// for its whole duration.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ayhangulbjk/ebs-insight/pkg/audit"
	"github.com/ayhangulbjk/ebs-insight/pkg/catalog"
	"github.com/ayhangulbjk/ebs-insight/pkg/guard"
	"github.com/ayhangulbjk/ebs-insight/pkg/intent"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
	"github.com/ayhangulbjk/ebs-insight/pkg/router"
)

// Outcome is what the engine hands back to the caller for one prompt.
type Outcome struct {
	RequestID string `json:"request_id"`

	// Rejected means the guard refused the prompt; nothing was classified.
	Rejected     bool   `json:"rejected,omitempty"`
	RejectReason string `json:"reject_reason,omitempty"`

	IntentResult intent.Result `json:"intent_result"`

	// Decision is nil when the prompt was conversational (chit_chat),
	// unclassifiable (unknown), or rejected — the router is never invoked
	// for those.
	Decision *router.Decision `json:"decision,omitempty"`
}

// Engine is the top-level query-to-action facade.
type Engine struct {
	guard      *guard.Chain
	classifier *intent.Classifier
	router     *router.Router
	catalog    *catalog.Store
	recorder   *audit.Recorder
}

// NewEngine assembles an Engine from its collaborators.
func NewEngine(
	g *guard.Chain,
	c *intent.Classifier,
	r *router.Router,
	cat *catalog.Store,
	rec *audit.Recorder,
) *Engine {
	return &Engine{guard: g, classifier: c, router: r, catalog: cat, recorder: rec}
}

// Handle processes one prompt end to end: guard, classify, intent gate,
// route, audit. It never returns an error for well-formed string input —
// "no good answer" is data in the Decision.
func (e *Engine) Handle(ctx context.Context, prompt string) Outcome {
	snap := e.catalog.Current()
	receivedAt := time.Now()

	verdict := e.guard.Check(prompt)
	if verdict.Rejected {
		out := Outcome{
			RequestID:    uuid.NewString(),
			Rejected:     true,
			RejectReason: verdict.Warning,
		}
		e.record(ctx, out.RequestID, prompt, receivedAt, verdict, intent.Result{Intent: intent.Unknown}, nil, snap)
		return out
	}

	result := e.classifier.Classify(verdict.Sanitized)

	requestID := uuid.NewString()

	// Intent gate: only ebs_control prompts reach the router. Chit-chat,
	// ambiguous and unknown prompts are answered (or re-prompted) by the
	// caller.
	var decision *router.Decision
	if result.Intent == intent.EBSControl {
		decision = e.router.Route(requestID, verdict.Sanitized, result, snap)
	} else {
		logging.Debugf("Intent gate held: %q prompt not routed (confidence=%.2f)",
			result.Intent, result.Confidence)
	}

	out := Outcome{RequestID: requestID, IntentResult: result, Decision: decision}

	e.record(ctx, out.RequestID, prompt, receivedAt, verdict, result, decision, snap)
	return out
}

func (e *Engine) record(
	ctx context.Context,
	requestID, prompt string,
	receivedAt time.Time,
	verdict guard.Verdict,
	result intent.Result,
	decision *router.Decision,
	snap *catalog.Snapshot,
) {
	if e.recorder == nil {
		return
	}
	e.recorder.Record(ctx, &audit.Record{
		ID:              requestID,
		ReceivedAt:      receivedAt,
		Prompt:          prompt,
		Suspicious:      verdict.Suspicious,
		GuardWarning:    verdict.Warning,
		IntentResult:    result,
		Decision:        decision,
		SnapshotVersion: snap.Version(),
	})
}
