// Package incident records rejected and suspicious validation attempts for
// offline review. Records are append-only and never returned to end users.
package incident

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	SeveritySoftWarn  = "soft_warn"
	SeverityHardBlock = "hard_block"
)

const (
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable" // classifier could not be reached or answered garbage
	OutcomeWatch       = "watch"       // accepted, but below the soft-watch confidence
)

// Record is a single incident. Category is one of the sentinel security
// categories, or empty when no category could be attributed.
type Record struct {
	ID          uuid.UUID
	Timestamp   time.Time
	Category    string
	Severity    string
	Outcome     string
	InputDigest string
	Excerpt     string // empty for sensitive categories
	UserID      *string
	Confidence  int
	Detail      string // internal stage and model rationale
}

// Logger is the incident logging interface. Log is fire-and-forget.
type Logger interface {
	Log(ctx context.Context, rec Record)
	Close() error
}

// Writer persists a batch of records to a sink.
type Writer interface {
	WriteBatch(ctx context.Context, records []Record) error
}

// NopLogger discards every record.
type NopLogger struct{}

func (NopLogger) Log(context.Context, Record) {}
func (NopLogger) Close() error                { return nil }
