package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WorkerHeartbeat represents the heartbeat data for a delivery worker
type WorkerHeartbeat struct {
	WorkerID      string    `json:"worker_id"`
	Status        string    `json:"status"` // "idle", "processing"
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// SetWorkerHeartbeat stores or updates a worker's heartbeat in Redis
// The heartbeat key has a TTL of 60 seconds - if a worker doesn't refresh it
// within that time, it's considered inactive
func (q *Queue) SetWorkerHeartbeat(ctx context.Context, workerID, status string) error {
	key := fmt.Sprintf("worker:heartbeat:%s", workerID)

	heartbeat := WorkerHeartbeat{
		WorkerID:      workerID,
		Status:        status,
		LastHeartbeat: time.Now(),
	}

	data, err := json.Marshal(heartbeat)
	if err != nil {
		return fmt.Errorf("marshaling heartbeat: %w", err)
	}

	if err := q.client.Set(ctx, key, data, 60*time.Second).Err(); err != nil {
		return fmt.Errorf("setting heartbeat: %w", err)
	}

	return nil
}

// GetActiveWorkers retrieves every worker with a live heartbeat
func (q *Queue) GetActiveWorkers(ctx context.Context) ([]WorkerHeartbeat, error) {
	var workers []WorkerHeartbeat

	var cursor uint64
	for {
		keys, nextCursor, err := q.client.Scan(ctx, cursor, "worker:heartbeat:*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning worker keys: %w", err)
		}

		for _, key := range keys {
			data, err := q.client.Get(ctx, key).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("getting heartbeat: %w", err)
			}

			var heartbeat WorkerHeartbeat
			if err := json.Unmarshal([]byte(data), &heartbeat); err != nil {
				continue
			}
			workers = append(workers, heartbeat)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return workers, nil
}
