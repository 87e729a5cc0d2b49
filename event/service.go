package event

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhookhub/queue"
	"github.com/marcelsud/webhookhub/route"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// ErrUnauthorized is returned when the provided inbound secret does not
// match the route secret
var ErrUnauthorized = errors.New("invalid route secret")

// ErrNoActiveDestinations is returned when a route has nothing to deliver to
var ErrNoActiveDestinations = errors.New("route has no active destinations")

// Detail is the read model for a single event: the event, its route with
// every destination, and the attempt history newest-first
type Detail struct {
	Event    Event
	Route    route.Route
	Attempts []DeliveryAttempt
}

// UseCase defines the business operations for event management
type UseCase interface {
	Receive(ctx context.Context, slug, providedSecret string, payload []byte, headers http.Header) (string, error)
	Retry(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Detail, error)
	ListRecent(ctx context.Context, limit int) ([]Event, []route.Route, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

type Service struct {
	Events Repository
	Routes route.Reader
	Queue  queue.Enqueuer
}

// NewService creates a new event service with dependency injection
func NewService(events Repository, routes route.Reader, q queue.Enqueuer) *Service {
	return &Service{
		Events: events,
		Routes: routes,
		Queue:  q,
	}
}

/* Receive validates an inbound request, persists a new pending event and
 * enqueues its first delivery cycle with zero delay
 * Exactly one store write and one enqueue happen per successful call
 */
func (s *Service) Receive(ctx context.Context, slug, providedSecret string, payload []byte, headers http.Header) (string, error) {
	rt, err := s.Routes.GetBySlug(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("looking up route: %w", err)
	}
	if !rt.IsActive {
		// An inactive route is indistinguishable from a missing one
		return "", fmt.Errorf("looking up route: %w", route.ErrNotFound)
	}

	// Plain equality, mirroring the inbound contract
	if rt.Secret != providedSecret {
		return "", ErrUnauthorized
	}

	active := rt.ActiveDestinations()
	if len(active) == 0 {
		return "", ErrNoActiveDestinations
	}

	ev := Event{
		ID:               uuid.New().String(),
		RouteID:          rt.ID,
		Payload:          payload,
		Headers:          NormalizeHeaders(headers),
		Status:           Pending,
		AttemptCount:     0,
		DestinationCount: len(active),
		DeliveredCount:   0,
		CreatedAt:        time.Now(),
	}

	if err := s.Events.Create(ctx, ev); err != nil {
		return "", fmt.Errorf("storing event: %w", err)
	}

	if err := s.Queue.Enqueue(ctx, ev.ID, 0); err != nil {
		return "", fmt.Errorf("enqueueing delivery: %w", err)
	}

	return ev.ID, nil
}

/* Retry resets an event back to its initial state and re-enqueues it
 * immediately, regardless of its prior state (including SUCCESS/FAILED)
 */
func (s *Service) Retry(ctx context.Context, id string) error {
	ev, err := s.Events.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up event: %w", err)
	}

	rt, err := s.Routes.GetByID(ctx, ev.RouteID)
	if err != nil {
		return fmt.Errorf("looking up route: %w", err)
	}

	active := rt.ActiveDestinations()
	if len(active) == 0 {
		return ErrNoActiveDestinations
	}

	ev.Status = Pending
	ev.AttemptCount = 0
	ev.DeliveredCount = 0
	ev.DestinationCount = len(active)
	ev.ErrorMessage = ""

	if err := s.Events.Reset(ctx, ev); err != nil {
		return fmt.Errorf("resetting event: %w", err)
	}

	if err := s.Queue.Enqueue(ctx, ev.ID, 0); err != nil {
		return fmt.Errorf("enqueueing delivery: %w", err)
	}

	return nil
}

// Get loads the full read model for an event
func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	ev, err := s.Events.Get(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("looking up event: %w", err)
	}

	rt, err := s.Routes.GetByID(ctx, ev.RouteID)
	if err != nil {
		return Detail{}, fmt.Errorf("looking up route: %w", err)
	}

	attempts, err := s.Events.ListAttempts(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("listing attempts: %w", err)
	}

	return Detail{
		Event:    ev,
		Route:    rt,
		Attempts: attempts,
	}, nil
}

// ListRecent returns the newest events with their routes for the listing view
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Event, []route.Route, error) {
	events, err := s.Events.ListRecent(ctx, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("listing events: %w", err)
	}

	routes := make([]route.Route, len(events))
	for i, ev := range events {
		rt, err := s.Routes.GetByID(ctx, ev.RouteID)
		if err != nil && err != route.ErrNotFound {
			return nil, nil, fmt.Errorf("looking up route: %w", err)
		}
		routes[i] = rt
	}

	return events, routes, nil
}

// CountByStatus reports how many events sit in each status
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	counts, err := s.Events.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	return counts, nil
}

/* NormalizeHeaders flattens the request header set to a string map
 * Multi-value headers are joined with commas
 */
func NormalizeHeaders(headers http.Header) map[string]string {
	normalized := make(map[string]string, len(headers))
	for key, values := range headers {
		normalized[key] = strings.Join(values, ",")
	}
	return normalized
}
