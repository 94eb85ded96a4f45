// Package audit records every route call so an auditor can recompute the
// decision offline from the logged inputs and the referenced catalog
// snapshot version.
package audit

import (
	"context"

	"github.com/ayhangulbjk/ebs-insight/pkg/audit/store"
	"github.com/ayhangulbjk/ebs-insight/pkg/guard"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
)

// Record is re-exported for callers that build records directly.
type Record = store.Record

// Recorder writes audit records to a pluggable store. Store failures are
// logged and never propagate into the request path.
type Recorder struct {
	store store.AuditStore
}

// NewRecorder creates a Recorder over the given store.
func NewRecorder(s store.AuditStore) *Recorder {
	return &Recorder{store: s}
}

// Record sanitizes the user-controlled fields and persists the record.
func (r *Recorder) Record(ctx context.Context, rec *Record) {
	rec.Prompt = guard.SanitizeLogValue(rec.Prompt, guard.DefaultLogValueLength)
	rec.GuardWarning = guard.SanitizeLogValue(rec.GuardWarning, guard.DefaultLogValueLength)

	if err := r.store.Put(ctx, rec); err != nil {
		logging.Errorf("Failed to persist audit record %s: %v", rec.ID, err)
		return
	}
	logging.Debugf("Audit record %s persisted (intent=%s)", rec.ID, rec.IntentResult.Intent)
}

// Get retrieves a record by ID.
func (r *Recorder) Get(ctx context.Context, id string) (*Record, error) {
	return r.store.Get(ctx, id)
}

// List returns records newest-first.
func (r *Recorder) List(ctx context.Context, opts store.ListOptions) ([]*Record, error) {
	return r.store.List(ctx, opts)
}

// Close releases the underlying store.
func (r *Recorder) Close() error {
	return r.store.Close()
}
