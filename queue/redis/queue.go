package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/webhookhub/queue"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of queue.Queue
 * Jobs live in a sorted set scored by the unix millisecond at which they
 * become due; a delayed enqueue is just a future score
 * Claiming is a ZRem: only the caller that removes the member owns the job
 */

const scheduledKey = "deliveries:scheduled"

type Queue struct {
	client *redis.Client
}

// NewQueue creates a new Redis-backed delivery queue
func NewQueue(addr, password string, db int) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Queue{client: client}, nil
}

// NewQueueWithClient wraps an existing client, sharing the connection pool
func NewQueueWithClient(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// Enqueue schedules a delivery job; delay 0 makes it ready immediately
func (q *Queue) Enqueue(ctx context.Context, eventID string, delay time.Duration) error {
	job := queue.Job{EventID: eventID}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling job: %w", err)
	}

	readyAt := time.Now().Add(delay)
	err = q.client.ZAdd(ctx, scheduledKey, redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: string(data),
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueueing job: %w", err)
	}

	return nil
}

// Dequeue claims at most one due job
func (q *Queue) Dequeue(ctx context.Context) (queue.Job, bool, error) {
	now := time.Now().UnixMilli()

	members, err := q.client.ZRangeByScore(ctx, scheduledKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now),
		Count: 1,
	}).Result()
	if err != nil {
		return queue.Job{}, false, fmt.Errorf("reading due jobs: %w", err)
	}
	if len(members) == 0 {
		return queue.Job{}, false, nil
	}

	// ZRem claims the job; zero removals means another worker won the race
	removed, err := q.client.ZRem(ctx, scheduledKey, members[0]).Result()
	if err != nil {
		return queue.Job{}, false, fmt.Errorf("claiming job: %w", err)
	}
	if removed == 0 {
		return queue.Job{}, false, nil
	}

	var job queue.Job
	if err := json.Unmarshal([]byte(members[0]), &job); err != nil {
		return queue.Job{}, false, fmt.Errorf("unmarshaling job: %w", err)
	}

	return job, true, nil
}

// Len returns the number of jobs currently scheduled, due or not
func (q *Queue) Len(ctx context.Context) (int64, error) {
	length, err := q.client.ZCard(ctx, scheduledKey).Result()
	if err != nil {
		return 0, fmt.Errorf("reading queue length: %w", err)
	}
	return length, nil
}

// Close closes the Redis connection
func (q *Queue) Close(ctx context.Context) error {
	return q.client.Close()
}
