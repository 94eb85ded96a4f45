// Package store provides pluggable persistence for routing audit records.
// Implementations must be safe for concurrent use.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ayhangulbjk/ebs-insight/pkg/intent"
	"github.com/ayhangulbjk/ebs-insight/pkg/router"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("audit record not found")

// Record is one route call's audit trail. Together with the catalog snapshot
// it references, it is sufficient to recompute the decision offline.
type Record struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`

	// Prompt is the original user text, log-sanitized but otherwise as
	// received, for reproducibility.
	Prompt string `json:"prompt"`

	// Suspicious is set when the guard chain flagged probable injection.
	Suspicious   bool   `json:"suspicious,omitempty"`
	GuardWarning string `json:"guard_warning,omitempty"`

	IntentResult intent.Result `json:"intent_result"`

	// Decision is nil for prompts that never reached the router
	// (chit_chat, unknown, guard-rejected).
	Decision *router.Decision `json:"decision,omitempty"`

	SnapshotVersion string `json:"snapshot_version,omitempty"`
}

// ListOptions filters and paginates record listing.
type ListOptions struct {
	Limit int

	// Intent filters by classified intent label.
	Intent string

	// SelectedControl filters by the selected control ID.
	SelectedControl string

	// Since/Until bound ReceivedAt.
	Since *time.Time
	Until *time.Time
}

// DefaultListLimit bounds unpaginated listings.
const DefaultListLimit = 20

// AuditStore persists and retrieves audit records.
type AuditStore interface {
	// Put stores a record.
	Put(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records newest-first, applying opts.
	List(ctx context.Context, opts ListOptions) ([]*Record, error)

	// Close releases resources held by the store.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend    string // "memory" or "redis"
	MaxRecords int    // memory backend capacity

	RedisAddress   string
	RedisDatabase  int
	RedisPassword  string
	RedisKeyPrefix string
	RedisTTL       time.Duration
}

// New creates the configured store backend.
func New(cfg Config) (AuditStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.MaxRecords), nil
	case "redis":
		return NewRedisStore(cfg)
	default:
		return nil, errors.New("unknown audit store backend: " + cfg.Backend)
	}
}
