package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/webhookhub/event"
	queueredis "github.com/marcelsud/webhookhub/queue/redis"
)

// QueueStats exposes what the collector needs from the delivery queue
type QueueStats interface {
	Len(ctx context.Context) (int64, error)
}

// HeartbeatSource exposes worker liveness data
type HeartbeatSource interface {
	GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error)
}

// StoreCollector implements Collector on top of the event store and queue
type StoreCollector struct {
	events     event.Reader
	queue      QueueStats
	heartbeats HeartbeatSource
}

// NewStoreCollector creates a new store-backed metrics collector
func NewStoreCollector(events event.Reader, queue QueueStats, heartbeats HeartbeatSource) *StoreCollector {
	return &StoreCollector{
		events:     events,
		queue:      queue,
		heartbeats: heartbeats,
	}
}

// Collect gathers all metrics
func (c *StoreCollector) Collect(ctx context.Context) (Metrics, error) {
	queueDepth, err := c.GetQueueDepth(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue depth: %w", err)
	}

	statusCounts, err := c.GetStatusCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting status counts: %w", err)
	}

	workers, err := c.GetActiveWorkers(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting active workers: %w", err)
	}

	return Metrics{
		QueueDepth:   queueDepth,
		StatusCounts: statusCounts,
		Workers:      workers,
		Timestamp:    time.Now(),
	}, nil
}

// GetQueueDepth returns the number of scheduled delivery jobs
func (c *StoreCollector) GetQueueDepth(ctx context.Context) (int64, error) {
	return c.queue.Len(ctx)
}

// GetStatusCounts returns counts of events grouped by status
func (c *StoreCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := c.events.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	named := make(map[string]int64, len(counts))
	for status, count := range counts {
		named[status.String()] = count
	}
	return named, nil
}

// GetActiveWorkers returns information about live delivery workers
func (c *StoreCollector) GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error) {
	if c.heartbeats == nil {
		return nil, nil
	}
	return c.heartbeats.GetActiveWorkers(ctx)
}

// queueHeartbeats adapts the redis queue's heartbeat records to WorkerInfo
type queueHeartbeats struct {
	queue *queueredis.Queue
}

// NewQueueHeartbeatSource exposes the redis queue's worker heartbeats
func NewQueueHeartbeatSource(q *queueredis.Queue) HeartbeatSource {
	return queueHeartbeats{queue: q}
}

func (q queueHeartbeats) GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error) {
	heartbeats, err := q.queue.GetActiveWorkers(ctx)
	if err != nil {
		return nil, err
	}

	workers := make([]WorkerInfo, 0, len(heartbeats))
	for _, heartbeat := range heartbeats {
		workers = append(workers, WorkerInfo{
			WorkerID:      heartbeat.WorkerID,
			Status:        heartbeat.Status,
			LastHeartbeat: heartbeat.LastHeartbeat,
		})
	}
	return workers, nil
}
