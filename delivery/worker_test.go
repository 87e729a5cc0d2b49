package delivery_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/webhookhub/delivery"
	"github.com/marcelsud/webhookhub/delivery/mocks"
	"github.com/marcelsud/webhookhub/event"
	eventmocks "github.com/marcelsud/webhookhub/event/mocks"
	"github.com/marcelsud/webhookhub/queue"
	queuemocks "github.com/marcelsud/webhookhub/queue/mocks"
	routemocks "github.com/marcelsud/webhookhub/route/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type recordingHeartbeater struct {
	mu       sync.Mutex
	statuses []string
}

func (h *recordingHeartbeater) SetWorkerHeartbeat(_ context.Context, _ string, status string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
	return nil
}

func (h *recordingHeartbeater) seen(status string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.statuses {
		if s == status {
			return true
		}
	}
	return false
}

func TestPool(t *testing.T) {
	t.Run("drains a job and reports heartbeats", func(t *testing.T) {
		events := eventmocks.NewRepository(t)
		routes := routemocks.NewReader(t)
		enqueuer := queuemocks.NewEnqueuer(t)
		sender := mocks.NewSender(t)
		orchestrator := delivery.NewOrchestrator(events, routes, enqueuer, sender, nil)

		dequeuer := queuemocks.NewDequeuer(t)
		processed := make(chan struct{})

		// One job, then an empty queue
		dequeuer.On("Dequeue", mock.Anything).Return(queue.Job{EventID: "event-1"}, true, nil).Once()
		dequeuer.On("Dequeue", mock.Anything).Return(queue.Job{}, false, nil).Maybe()

		// The event vanished before the cycle ran, so the job is skipped
		events.On("Get", mock.Anything, "event-1").
			Run(func(mock.Arguments) { close(processed) }).
			Return(event.Event{}, event.ErrNotFound).Once()

		heartbeat := &recordingHeartbeater{}
		pool := delivery.NewPool(dequeuer, orchestrator, heartbeat, 1, 10*time.Millisecond, nil)

		pool.Start(context.Background())
		select {
		case <-processed:
		case <-time.After(2 * time.Second):
			t.Fatal("job was never processed")
		}
		pool.Stop()

		assert.True(t, heartbeat.seen("idle"))
		assert.True(t, heartbeat.seen("processing"))
	})

	t.Run("stop waits for the workers to exit", func(t *testing.T) {
		events := eventmocks.NewRepository(t)
		routes := routemocks.NewReader(t)
		enqueuer := queuemocks.NewEnqueuer(t)
		sender := mocks.NewSender(t)
		orchestrator := delivery.NewOrchestrator(events, routes, enqueuer, sender, nil)

		dequeuer := queuemocks.NewDequeuer(t)
		dequeuer.On("Dequeue", mock.Anything).Return(queue.Job{}, false, nil).Maybe()

		pool := delivery.NewPool(dequeuer, orchestrator, nil, 3, 10*time.Millisecond, nil)
		pool.Start(context.Background())

		time.Sleep(50 * time.Millisecond)

		done := make(chan struct{})
		go func() {
			pool.Stop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Stop did not return")
		}
	})

	t.Run("dequeue errors do not kill the worker", func(t *testing.T) {
		events := eventmocks.NewRepository(t)
		routes := routemocks.NewReader(t)
		enqueuer := queuemocks.NewEnqueuer(t)
		sender := mocks.NewSender(t)
		orchestrator := delivery.NewOrchestrator(events, routes, enqueuer, sender, nil)

		dequeuer := queuemocks.NewDequeuer(t)
		recovered := make(chan struct{})

		dequeuer.On("Dequeue", mock.Anything).Return(queue.Job{}, false, assert.AnError).Once()
		dequeuer.On("Dequeue", mock.Anything).
			Run(func(mock.Arguments) {
				select {
				case <-recovered:
				default:
					close(recovered)
				}
			}).
			Return(queue.Job{}, false, nil).Maybe()

		pool := delivery.NewPool(dequeuer, orchestrator, nil, 1, 10*time.Millisecond, nil)
		pool.Start(context.Background())

		select {
		case <-recovered:
		case <-time.After(2 * time.Second):
			t.Fatal("worker stopped polling after an error")
		}
		pool.Stop()
	})
}
