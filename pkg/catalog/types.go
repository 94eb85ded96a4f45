// Package catalog defines the control data model and the immutable snapshot
// the classifier and router read. A snapshot is loaded once from a directory
// of control JSON files and never mutated; reloads publish a whole new
// snapshot via the Store.
package catalog

import (
	"time"
)

// Intent labels form a closed set. Anything outside this set is a load-time
// validation failure.
const (
	IntentConcMgr        = "conc_mgr"
	IntentWorkflow       = "workflow"
	IntentAdop           = "adop"
	IntentInvalidObjects = "invalid_objects"
	IntentDataIntegrity  = "data_integrity"
	IntentPerformance    = "performance"
)

// ValidIntents is the catalog's valid-intent set.
var ValidIntents = map[string]bool{
	IntentConcMgr:        true,
	IntentWorkflow:       true,
	IntentAdop:           true,
	IntentInvalidObjects: true,
	IntentDataIntegrity:  true,
	IntentPerformance:    true,
}

// Priority tier names. Membership is a scoring boost only, never a gate bypass.
const (
	TierCritical     = "critical"
	TierHealthBundle = "health-bundle"
)

// Keywords holds the bilingual matching vocabulary of a control. Order does
// not imply priority.
type Keywords struct {
	EN []string `json:"en"`
	TR []string `json:"tr"`
}

// All returns both language lists as one slice.
func (k Keywords) All() []string {
	out := make([]string, 0, len(k.EN)+len(k.TR))
	out = append(out, k.EN...)
	out = append(out, k.TR...)
	return out
}

// Column describes one column of a query result schema.
type Column struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Sensitive bool   `json:"sensitive"`
}

// QueryDef is one query of a control. The router only consumes the count of
// queries and the schema breadth; SQL content is opaque to this core.
type QueryDef struct {
	Name         string   `json:"name"`
	SQL          string   `json:"sql"`
	ResultSchema []Column `json:"result_schema"`
}

// Control is a named, versioned, pre-approved unit of diagnostic capability.
type Control struct {
	ControlID   string     `json:"control_id"`
	Version     string     `json:"version"`
	VersionDate time.Time  `json:"version_date"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Intent      string     `json:"intent"`
	Keywords    Keywords   `json:"keywords"`
	Queries     []QueryDef `json:"queries"`

	// PriorityTier is optional membership in a named priority set
	// ("critical" or "health-bundle").
	PriorityTier string `json:"priority_tier,omitempty"`

	// order is the stable declaration position within the snapshot, used as
	// the final tie-break. Assigned by the loader.
	order int
}

// Order returns the control's stable declaration position in its snapshot.
func (c *Control) Order() int { return c.order }

// ColumnCount returns the aggregate result-schema column count across all
// queries.
func (c *Control) ColumnCount() int {
	n := 0
	for _, q := range c.Queries {
		n += len(q.ResultSchema)
	}
	return n
}

// Snapshot is an immutable, versioned view of all controls at a point in
// time. Routing calls pin one snapshot for their entire duration.
type Snapshot struct {
	version  string
	loadedAt time.Time
	controls []*Control
	byID     map[string]*Control
}

// NewSnapshot builds a snapshot from already-validated controls. Slice
// position becomes the stable declaration order used by the tie-break.
// Loaders must validate before calling; the router assumes a validated
// snapshot.
func NewSnapshot(version string, controls []*Control) *Snapshot {
	snap := &Snapshot{
		version:  version,
		loadedAt: time.Now(),
		controls: controls,
		byID:     make(map[string]*Control, len(controls)),
	}
	for i, c := range controls {
		c.order = i
		snap.byID[c.ControlID] = c
	}
	return snap
}

// Version returns the snapshot version identifier.
func (s *Snapshot) Version() string { return s.version }

// LoadedAt returns when this snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Controls returns all controls in declaration order. Callers must not
// mutate the returned slice.
func (s *Snapshot) Controls() []*Control { return s.controls }

// Get returns the control with the given ID, or nil.
func (s *Snapshot) Get(controlID string) *Control { return s.byID[controlID] }

// Len returns the number of controls in the snapshot.
func (s *Snapshot) Len() int { return len(s.controls) }

// ByIntent returns the controls whose intent equals the given label, in
// declaration order.
func (s *Snapshot) ByIntent(intent string) []*Control {
	var out []*Control
	for _, c := range s.controls {
		if c.Intent == intent {
			out = append(out, c)
		}
	}
	return out
}
