package queue

import (
	"context"
	"time"
)

/* The delivery queue is an at-least-once job queue keyed by event id
 * Jobs are single-shot: the queue never retries on its own, all retry
 * logic is application-level re-enqueueing with a delay
 */

// Job is the payload carried by one delivery job
type Job struct {
	EventID string `json:"eventId"`
}

// Enqueuer schedules delivery jobs, optionally delayed
type Enqueuer interface {
	// Enqueue schedules a delivery job; delay 0 makes it ready immediately
	Enqueue(ctx context.Context, eventID string, delay time.Duration) error
}

// Dequeuer claims ready jobs for processing
type Dequeuer interface {
	/* Dequeue claims at most one due job
	 * The boolean is false when no job is ready; claiming is atomic, so a
	 * job is handed to exactly one caller (it may still be re-enqueued by
	 * the producer, the queue does not deduplicate event ids)
	 */
	Dequeue(ctx context.Context) (Job, bool, error)
}

type Queue interface {
	Enqueuer
	Dequeuer
	// Len returns the number of jobs currently scheduled, due or not
	Len(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}
