package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/marcelsud/webhookhub/queue"
)

/* Pool runs the delivery workers
 * Each worker polls the queue for due jobs and runs one cycle at a time;
 * the worker count is a deployment parameter, not a correctness knob
 */

// Heartbeater lets workers report liveness for the metrics collector
type Heartbeater interface {
	SetWorkerHeartbeat(ctx context.Context, workerID, status string) error
}

type Pool struct {
	queue        queue.Dequeuer
	orchestrator *Orchestrator
	heartbeat    Heartbeater
	workers      int
	pollInterval time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a worker pool with explicit dependencies
func NewPool(q queue.Dequeuer, orchestrator *Orchestrator, heartbeat Heartbeater, workers int, pollInterval time.Duration, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		queue:        q,
		orchestrator: orchestrator,
		heartbeat:    heartbeat,
		workers:      workers,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start launches the workers; they run until Stop or context cancellation
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.workers; i++ {
		workerID := fmt.Sprintf("worker-%d", i+1)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx, workerID)
		}()
	}
}

// Stop cancels the poll loops and waits for in-flight cycles to finish
// A started cycle always runs to completion
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, workerID string) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.beat(ctx, workerID, "idle")

			job, ok, err := p.queue.Dequeue(ctx)
			if err != nil {
				p.logger.ErrorContext(ctx, "dequeue failed", "worker", workerID, "error", err)
				continue
			}
			if !ok {
				continue
			}

			p.beat(ctx, workerID, "processing")

			outcome, err := p.orchestrator.Process(ctx, job.EventID)
			if err != nil {
				// Infrastructure failure; the job is surfaced here, not retried
				p.logger.ErrorContext(ctx, "delivery job failed",
					"worker", workerID, "event_id", job.EventID, "error", err)
				continue
			}
			p.logger.InfoContext(ctx, "delivery cycle finished",
				"worker", workerID, "event_id", job.EventID, "outcome", string(outcome))
		}
	}
}

func (p *Pool) beat(ctx context.Context, workerID, status string) {
	if p.heartbeat == nil {
		return
	}
	if err := p.heartbeat.SetWorkerHeartbeat(ctx, workerID, status); err != nil {
		p.logger.DebugContext(ctx, "heartbeat failed", "worker", workerID, "error", err)
	}
}
