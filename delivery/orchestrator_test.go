package delivery_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/webhookhub/delivery"
	"github.com/marcelsud/webhookhub/delivery/mocks"
	"github.com/marcelsud/webhookhub/event"
	eventmocks "github.com/marcelsud/webhookhub/event/mocks"
	queuemocks "github.com/marcelsud/webhookhub/queue/mocks"
	"github.com/marcelsud/webhookhub/route"
	routemocks "github.com/marcelsud/webhookhub/route/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func deliveryRoute() route.Route {
	return route.Route{
		ID:          "route-1",
		ProjectName: "Payments",
		Slug:        "orders",
		Secret:      "s3cret",
		MaxRetries:  3,
		IsActive:    true,
		Destinations: []route.Destination{
			{ID: "d1", RouteID: "route-1", Label: "erp", Endpoint: "https://erp.example.com/hook", Priority: 1, IsActive: true},
			{ID: "d2", RouteID: "route-1", Label: "audit", Endpoint: "https://audit.example.com/hook", Priority: 2, IsActive: true},
		},
	}
}

func pendingEvent() event.Event {
	return event.Event{
		ID:               "event-1",
		RouteID:          "route-1",
		Payload:          []byte(`{"order": 42}`),
		Status:           event.Pending,
		AttemptCount:     0,
		DestinationCount: 2,
		Version:          1,
	}
}

func okResult() delivery.Result {
	status := 200
	return delivery.Result{ResponseStatus: &status, ResponseBody: "ok", Success: true}
}

func failedResult(status int) delivery.Result {
	return delivery.Result{ResponseStatus: &status, ResponseBody: "boom", Success: false, ErrorMessage: "HTTP 500"}
}

type fixture struct {
	events       *eventmocks.Repository
	routes       *routemocks.Reader
	queue        *queuemocks.Enqueuer
	sender       *mocks.Sender
	orchestrator *delivery.Orchestrator
}

func newFixture(t *testing.T) fixture {
	events := eventmocks.NewRepository(t)
	routes := routemocks.NewReader(t)
	q := queuemocks.NewEnqueuer(t)
	sender := mocks.NewSender(t)

	return fixture{
		events:       events,
		routes:       routes,
		queue:        q,
		sender:       sender,
		orchestrator: delivery.NewOrchestrator(events, routes, q, sender, nil),
	}
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("success - all destinations delivered", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		rt := deliveryRoute()

		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.sender.On("Send", ctx, rt, ev, rt.Destinations[0]).Return(okResult())
		f.sender.On("Send", ctx, rt, ev, rt.Destinations[1]).Return(okResult())
		f.events.On("AppendAttempt", ctx, event.MatchAttempt(func(a event.DeliveryAttempt) bool {
			return a.EventID == "event-1" && a.Success && *a.ResponseStatus == 200
		})).Return(nil).Times(2)
		f.events.On("Update", ctx, event.MatchEvent(func(updated event.Event) bool {
			return updated.Status == event.Success &&
				updated.AttemptCount == 1 &&
				updated.DeliveredCount == 2 &&
				updated.ErrorMessage == "" &&
				updated.LastAttemptAt != nil
		})).Return(nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeSuccess, outcome)
	})

	t.Run("sends in ascending priority order", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		rt := deliveryRoute()
		rt.Destinations = []route.Destination{
			{ID: "second", RouteID: "route-1", Label: "b", Endpoint: "https://b.example.com", Priority: 9, IsActive: true},
			{ID: "first", RouteID: "route-1", Label: "a", Endpoint: "https://a.example.com", Priority: 1, IsActive: true},
		}

		var order []string
		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.sender.On("Send", ctx, rt, ev, mock.AnythingOfType("route.Destination")).
			Run(func(args mock.Arguments) {
				order = append(order, args.Get(3).(route.Destination).ID)
			}).
			Return(okResult()).Times(2)
		f.events.On("AppendAttempt", ctx, mock.AnythingOfType("event.DeliveryAttempt")).Return(nil).Times(2)
		f.events.On("Update", ctx, mock.AnythingOfType("event.Event")).Return(nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeSuccess, outcome)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("retrying - partial failure schedules backoff", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		rt := deliveryRoute()

		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.sender.On("Send", ctx, rt, ev, rt.Destinations[0]).Return(okResult())
		f.sender.On("Send", ctx, rt, ev, rt.Destinations[1]).Return(failedResult(500))
		f.events.On("AppendAttempt", ctx, mock.AnythingOfType("event.DeliveryAttempt")).Return(nil).Times(2)
		f.events.On("Update", ctx, event.MatchEvent(func(updated event.Event) bool {
			return updated.Status == event.Retrying &&
				updated.AttemptCount == 1 &&
				updated.DeliveredCount == 1 &&
				updated.ErrorMessage == "HTTP 500"
		})).Return(nil)
		// min(2^1 * 1000ms, 60s) after the first failed cycle
		f.queue.On("Enqueue", ctx, "event-1", 2*time.Second).Return(nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeRetrying, outcome)
	})

	t.Run("failed - retry budget exhausted, no enqueue", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		ev.Status = event.Retrying
		ev.AttemptCount = 2
		rt := deliveryRoute()

		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.sender.On("Send", ctx, rt, ev, mock.AnythingOfType("route.Destination")).Return(failedResult(500)).Times(2)
		f.events.On("AppendAttempt", ctx, mock.AnythingOfType("event.DeliveryAttempt")).Return(nil).Times(2)
		f.events.On("Update", ctx, event.MatchEvent(func(updated event.Event) bool {
			return updated.Status == event.Failed &&
				updated.AttemptCount == 3 &&
				updated.ErrorMessage == "HTTP 500"
		})).Return(nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeFailed, outcome)
	})

	t.Run("failed - single retry budget fails immediately", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		rt := deliveryRoute()
		rt.MaxRetries = 1
		rt.Destinations = rt.Destinations[:1]

		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.sender.On("Send", ctx, rt, ev, rt.Destinations[0]).Return(failedResult(503))
		f.events.On("AppendAttempt", ctx, mock.AnythingOfType("event.DeliveryAttempt")).Return(nil)
		f.events.On("Update", ctx, event.MatchEvent(func(updated event.Event) bool {
			return updated.Status == event.Failed && updated.AttemptCount == 1
		})).Return(nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeFailed, outcome)
	})

	t.Run("failed - no active destinations, nothing sent", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		rt := deliveryRoute()
		for i := range rt.Destinations {
			rt.Destinations[i].IsActive = false
		}

		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.events.On("Update", ctx, event.MatchEvent(func(updated event.Event) bool {
			return updated.Status == event.Failed &&
				updated.ErrorMessage == "Route has no active destinations"
		})).Return(nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeFailed, outcome)
		f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skipped - event not found", func(t *testing.T) {
		f := newFixture(t)

		f.events.On("Get", ctx, "missing").Return(event.Event{}, event.ErrNotFound)

		outcome, err := f.orchestrator.Process(ctx, "missing")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeSkipped, outcome)
	})

	t.Run("skipped - route not found", func(t *testing.T) {
		f := newFixture(t)

		f.events.On("Get", ctx, "event-1").Return(pendingEvent(), nil)
		f.routes.On("GetByID", ctx, "route-1").Return(route.Route{}, route.ErrNotFound)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeSkipped, outcome)
	})

	t.Run("skipped - route inactive", func(t *testing.T) {
		f := newFixture(t)
		rt := deliveryRoute()
		rt.IsActive = false

		f.events.On("Get", ctx, "event-1").Return(pendingEvent(), nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeSkipped, outcome)
	})

	t.Run("stale - concurrent write wins, no enqueue", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		rt := deliveryRoute()
		rt.Destinations = rt.Destinations[:1]

		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.sender.On("Send", ctx, rt, ev, rt.Destinations[0]).Return(failedResult(500))
		f.events.On("AppendAttempt", ctx, mock.AnythingOfType("event.DeliveryAttempt")).Return(nil)
		f.events.On("Update", ctx, mock.AnythingOfType("event.Event")).Return(event.ErrVersionConflict)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeStale, outcome)
		f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transport error recorded with nil response status", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		rt := deliveryRoute()
		rt.Destinations = rt.Destinations[:1]

		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.sender.On("Send", ctx, rt, ev, rt.Destinations[0]).
			Return(delivery.Result{ErrorMessage: "connection refused"})
		f.events.On("AppendAttempt", ctx, event.MatchAttempt(func(a event.DeliveryAttempt) bool {
			return a.ResponseStatus == nil && !a.Success && a.ErrorMessage == "connection refused"
		})).Return(nil)
		f.events.On("Update", ctx, event.MatchEvent(func(updated event.Event) bool {
			return updated.Status == event.Retrying && updated.ErrorMessage == "connection refused"
		})).Return(nil)
		f.queue.On("Enqueue", ctx, "event-1", 2*time.Second).Return(nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeRetrying, outcome)
	})

	t.Run("oversized response body truncated in the attempt record", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		rt := deliveryRoute()
		rt.Destinations = rt.Destinations[:1]

		big := okResult()
		big.ResponseBody = strings.Repeat("x", event.MaxResponseBodyLength+100)

		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.sender.On("Send", ctx, rt, ev, rt.Destinations[0]).Return(big)
		f.events.On("AppendAttempt", ctx, event.MatchAttempt(func(a event.DeliveryAttempt) bool {
			return len(a.ResponseBody) == event.MaxResponseBodyLength
		})).Return(nil)
		f.events.On("Update", ctx, mock.AnythingOfType("event.Event")).Return(nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeSuccess, outcome)
	})

	t.Run("third cycle success ends at attempt count three", func(t *testing.T) {
		f := newFixture(t)
		ev := pendingEvent()
		ev.Status = event.Retrying
		ev.AttemptCount = 2
		rt := deliveryRoute()
		rt.Destinations = rt.Destinations[:1]

		f.events.On("Get", ctx, "event-1").Return(ev, nil)
		f.routes.On("GetByID", ctx, "route-1").Return(rt, nil)
		f.sender.On("Send", ctx, rt, ev, rt.Destinations[0]).Return(okResult())
		f.events.On("AppendAttempt", ctx, mock.AnythingOfType("event.DeliveryAttempt")).Return(nil)
		f.events.On("Update", ctx, event.MatchEvent(func(updated event.Event) bool {
			return updated.Status == event.Success && updated.AttemptCount == 3
		})).Return(nil)

		outcome, err := f.orchestrator.Process(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, delivery.OutcomeSuccess, outcome)
	})
}
