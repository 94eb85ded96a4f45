// Package guard validates and sanitizes user prompts before they reach the
// classifier. Providers are evaluated in order with first-deny semantics: a
// rejection stops the chain, sanitizing providers transform the prompt, and
// detectors flag suspicious input without blocking it.
package guard

import (
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/metrics"
)

// Verdict is the outcome of one provider or of the whole chain.
type Verdict struct {
	// Sanitized is the (possibly transformed) prompt to pass downstream.
	Sanitized string

	// Rejected means the prompt must not be processed at all.
	Rejected bool

	// Suspicious flags probable injection; the prompt is still processed
	// but the flag rides the audit record.
	Suspicious bool

	// Warning describes what was detected, for logs and audit.
	Warning string
}

// Provider inspects or transforms a prompt. Implementations must be
// stateless and safe for concurrent use.
type Provider interface {
	Name() string
	Check(prompt string) Verdict
}

// Chain evaluates providers in registration order.
type Chain struct {
	providers []Provider
}

// NewChain creates a guard chain over the given providers.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Check runs the chain. Each provider sees the output of the previous one.
// The first rejection wins; suspicion and warnings accumulate.
func (c *Chain) Check(prompt string) Verdict {
	out := Verdict{Sanitized: prompt}
	for _, p := range c.providers {
		v := p.Check(out.Sanitized)
		if v.Sanitized != "" || v.Rejected {
			out.Sanitized = v.Sanitized
		}
		if v.Rejected {
			out.Rejected = true
			out.Warning = v.Warning
			metrics.GuardRejectionCounter.WithLabelValues(p.Name(), "reject").Inc()
			logging.Warnf("Prompt rejected by guard provider %q: %s", p.Name(), v.Warning)
			return out
		}
		if v.Suspicious {
			out.Suspicious = true
			if out.Warning == "" {
				out.Warning = v.Warning
			} else {
				out.Warning += "; " + v.Warning
			}
			metrics.GuardRejectionCounter.WithLabelValues(p.Name(), "flag").Inc()
			logging.Warnf("Prompt flagged by guard provider %q: %s", p.Name(), v.Warning)
		}
	}
	return out
}
