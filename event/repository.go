package event

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an event lookup misses
var ErrNotFound = errors.New("event not found")

// ErrVersionConflict is returned when an Update carries a stale version,
// meaning a concurrent cycle already wrote a newer state
var ErrVersionConflict = errors.New("event version conflict")

// Reader provides read operations for events
type Reader interface {
	Get(ctx context.Context, id string) (Event, error)
	// ListRecent returns the newest events first, up to limit
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	// CountByStatus returns how many events sit in each status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// Writer provides write operations for events
type Writer interface {
	Create(ctx context.Context, event Event) error
	/* Update replaces the event row if and only if the stored version
	 * matches event.Version; on success the stored version is bumped
	 * Returns ErrVersionConflict on a stale write
	 */
	Update(ctx context.Context, event Event) error
	// Reset overwrites delivery-cycle state unconditionally (manual retry)
	Reset(ctx context.Context, event Event) error
}

// AttemptLog is the append-only per-destination audit trail
type AttemptLog interface {
	AppendAttempt(ctx context.Context, attempt DeliveryAttempt) error
	// ListAttempts returns attempts newest-first
	ListAttempts(ctx context.Context, eventID string) ([]DeliveryAttempt, error)
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Repository interface {
	Reader
	Writer
	AttemptLog
	Close(ctx context.Context) error
}
