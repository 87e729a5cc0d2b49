package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhookhub/event"
	"github.com/marcelsud/webhookhub/queue"
	"github.com/marcelsud/webhookhub/route"
)

/* Orchestrator is the retry state machine
 * One Process call is one delivery cycle: sequential fan-out to the
 * route's active destinations in priority order, one attempt record per
 * destination, then a single versioned event update and, when retries
 * remain, a delayed re-enqueue
 */

// Outcome names how a delivery cycle ended, so the job runner can log an
// explicit result even when nothing was delivered
type Outcome string

const (
	// OutcomeSkipped means the job was dropped without touching state:
	// the event vanished or its route went inactive
	OutcomeSkipped Outcome = "skipped"

	// OutcomeSuccess means every active destination accepted the payload
	OutcomeSuccess Outcome = "success"

	// OutcomeRetrying means at least one destination failed and a retry
	// cycle was scheduled
	OutcomeRetrying Outcome = "retrying"

	// OutcomeFailed means the retry budget is exhausted (or the route has
	// no active destinations) and no further cycle will run
	OutcomeFailed Outcome = "failed"

	// OutcomeStale means a concurrent cycle or manual retry won the write
	// race; this cycle's result was discarded
	OutcomeStale Outcome = "stale"
)

type Orchestrator struct {
	events event.Repository
	routes route.Reader
	queue  queue.Enqueuer
	sender Sender
	logger *slog.Logger
}

// NewOrchestrator creates the delivery orchestrator with explicit dependencies
func NewOrchestrator(events event.Repository, routes route.Reader, q queue.Enqueuer, sender Sender, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		events: events,
		routes: routes,
		queue:  q,
		sender: sender,
		logger: logger,
	}
}

// Process runs one delivery cycle for the given event id
// Store and queue errors propagate to the caller; per-destination delivery
// failures never do, they become attempt records
func (o *Orchestrator) Process(ctx context.Context, eventID string) (Outcome, error) {
	ev, err := o.events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			o.logger.WarnContext(ctx, "delivery skipped", "event_id", eventID, "reason", "event not found")
			return OutcomeSkipped, nil
		}
		return "", fmt.Errorf("loading event: %w", err)
	}

	rt, err := o.routes.GetByID(ctx, ev.RouteID)
	if err != nil {
		if errors.Is(err, route.ErrNotFound) {
			o.logger.WarnContext(ctx, "delivery skipped", "event_id", eventID, "reason", "route not found")
			return OutcomeSkipped, nil
		}
		return "", fmt.Errorf("loading route: %w", err)
	}
	if !rt.IsActive {
		o.logger.WarnContext(ctx, "delivery skipped", "event_id", eventID, "route", rt.Slug, "reason", "route inactive")
		return OutcomeSkipped, nil
	}

	active := rt.ActiveDestinations()
	if len(active) == 0 {
		ev.Status = event.Failed
		ev.ErrorMessage = "Route has no active destinations"
		if err := o.events.Update(ctx, ev); err != nil {
			if errors.Is(err, event.ErrVersionConflict) {
				return OutcomeStale, nil
			}
			return "", fmt.Errorf("failing event: %w", err)
		}
		return OutcomeFailed, nil
	}

	deliveredCount := 0
	lastError := ""

	for _, destination := range active {
		result := o.sender.Send(ctx, rt, ev, destination)

		attempt := event.DeliveryAttempt{
			ID:             uuid.New().String(),
			EventID:        ev.ID,
			DestinationID:  destination.ID,
			TargetEndpoint: destination.Endpoint,
			ResponseStatus: result.ResponseStatus,
			ResponseBody:   truncate(result.ResponseBody, event.MaxResponseBodyLength),
			Success:        result.Success,
			ErrorMessage:   result.ErrorMessage,
			CreatedAt:      time.Now(),
		}
		if err := o.events.AppendAttempt(ctx, attempt); err != nil {
			return "", fmt.Errorf("recording attempt: %w", err)
		}

		if result.Success {
			deliveredCount++
		} else {
			// A single destination's failure never aborts the cycle
			lastError = result.ErrorMessage
		}
	}

	nextAttemptCount := ev.AttemptCount + 1
	deliveredAll := deliveredCount == len(active)

	nextStatus := event.Retrying
	switch {
	case deliveredAll:
		nextStatus = event.Success
	case nextAttemptCount >= rt.MaxRetries:
		nextStatus = event.Failed
	}

	now := time.Now()
	ev.Status = nextStatus
	ev.AttemptCount = nextAttemptCount
	ev.LastAttemptAt = &now
	ev.DestinationCount = len(active)
	ev.DeliveredCount = deliveredCount
	if deliveredAll {
		ev.ErrorMessage = ""
	} else {
		ev.ErrorMessage = lastError
	}

	if err := o.events.Update(ctx, ev); err != nil {
		if errors.Is(err, event.ErrVersionConflict) {
			// A concurrent cycle already wrote; its schedule stands
			o.logger.WarnContext(ctx, "delivery result discarded", "event_id", ev.ID, "reason", "version conflict")
			return OutcomeStale, nil
		}
		return "", fmt.Errorf("updating event: %w", err)
	}

	if !deliveredAll && nextStatus == event.Retrying {
		delay := Backoff(nextAttemptCount)
		if err := o.queue.Enqueue(ctx, ev.ID, delay); err != nil {
			return "", fmt.Errorf("scheduling retry: %w", err)
		}
		return OutcomeRetrying, nil
	}

	if deliveredAll {
		return OutcomeSuccess, nil
	}
	return OutcomeFailed, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
