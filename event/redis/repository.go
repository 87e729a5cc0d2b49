package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/webhookhub/event"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of event.Repository
 * Uses Redis Hashes for event rows, a List per event for the append-only
 * attempt trail, a capped List as the recency index and plain counters
 * per status for the stats endpoints
 *
 * Updates are optimistic: the row carries a version field and Update runs
 * under WATCH so a stale delivery cycle loses instead of overwriting
 */

const (
	hashPrefix     = "event"          // Hash naming: event:{event_id}
	attemptsSuffix = "attempts"       // List naming: event:{event_id}:attempts
	recentKey      = "events:recent"  // List of event ids, newest first
	statusPrefix   = "events:status"  // Counter naming: events:status:{STATUS}
	recentCap      = 1000             // recency index bound
)

type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
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

	return &Repository{client: client}, nil
}

// NewRepositoryWithClient wraps an existing client, sharing the connection pool
func NewRepositoryWithClient(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Create stores a new event row and indexes it
func (r *Repository) Create(ctx context.Context, ev event.Event) error {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, ev.ID)

	fields, err := eventFields(ev)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, hashKey, fields)
		pipe.LPush(ctx, recentKey, ev.ID)
		pipe.LTrim(ctx, recentKey, 0, recentCap-1)
		pipe.Incr(ctx, statusKey(ev.Status))
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing event: %w", err)
	}

	return nil
}

// Get retrieves an event by ID from Redis hash
func (r *Repository) Get(ctx context.Context, id string) (event.Event, error) {
	data, err := r.client.HGetAll(ctx, fmt.Sprintf("%s:%s", hashPrefix, id)).Result()
	if err != nil {
		return event.Event{}, fmt.Errorf("getting event: %w", err)
	}
	if len(data) == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return eventFromFields(data)
}

/* Update replaces the event row only when the stored version matches
 * A concurrent cycle that already wrote bumps the version, so the stale
 * writer observes a mismatch and gets ErrVersionConflict
 */
func (r *Repository) Update(ctx context.Context, ev event.Event) error {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, ev.ID)

	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, hashKey).Result()
		if err != nil {
			return fmt.Errorf("reading event for update: %w", err)
		}
		if len(data) == 0 {
			return event.ErrNotFound
		}

		storedVersion := parseInt64(data["version"])
		if storedVersion != ev.Version {
			return event.ErrVersionConflict
		}
		oldStatus := event.NewStatus(data["status"])

		next := ev
		next.Version = storedVersion + 1
		fields, err := eventFields(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, fields)
			if oldStatus != ev.Status {
				pipe.Decr(ctx, statusKey(oldStatus))
				pipe.Incr(ctx, statusKey(ev.Status))
			}
			return nil
		})
		if err == redis.TxFailedErr {
			// The row changed between read and exec; treat as a stale write
			return event.ErrVersionConflict
		}
		return err
	}, hashKey)
}

/* Reset overwrites delivery-cycle state unconditionally (manual retry)
 * The version still advances so any in-flight cycle's Update turns stale
 */
func (r *Repository) Reset(ctx context.Context, ev event.Event) error {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, ev.ID)

	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, hashKey).Result()
		if err != nil {
			return fmt.Errorf("reading event for reset: %w", err)
		}
		if len(data) == 0 {
			return event.ErrNotFound
		}

		oldStatus := event.NewStatus(data["status"])

		next := ev
		next.Version = parseInt64(data["version"]) + 1
		fields, err := eventFields(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, fields)
			if oldStatus != ev.Status {
				pipe.Decr(ctx, statusKey(oldStatus))
				pipe.Incr(ctx, statusKey(ev.Status))
			}
			return nil
		})
		return err
	}, hashKey)
}

// AppendAttempt pushes an attempt record onto the event's audit trail
func (r *Repository) AppendAttempt(ctx context.Context, attempt event.DeliveryAttempt) error {
	data, err := json.Marshal(attemptRecord{
		ID:             attempt.ID,
		EventID:        attempt.EventID,
		DestinationID:  attempt.DestinationID,
		TargetEndpoint: attempt.TargetEndpoint,
		ResponseStatus: attempt.ResponseStatus,
		ResponseBody:   attempt.ResponseBody,
		Success:        attempt.Success,
		ErrorMessage:   attempt.ErrorMessage,
		CreatedAt:      attempt.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshaling attempt: %w", err)
	}

	key := fmt.Sprintf("%s:%s:%s", hashPrefix, attempt.EventID, attemptsSuffix)
	if err := r.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("appending attempt: %w", err)
	}

	return nil
}

// ListAttempts returns attempts newest-first
func (r *Repository) ListAttempts(ctx context.Context, eventID string) ([]event.DeliveryAttempt, error) {
	key := fmt.Sprintf("%s:%s:%s", hashPrefix, eventID, attemptsSuffix)

	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}

	attempts := make([]event.DeliveryAttempt, 0, len(raw))
	for _, item := range raw {
		var record attemptRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("unmarshaling attempt: %w", err)
		}
		attempts = append(attempts, event.DeliveryAttempt{
			ID:             record.ID,
			EventID:        record.EventID,
			DestinationID:  record.DestinationID,
			TargetEndpoint: record.TargetEndpoint,
			ResponseStatus: record.ResponseStatus,
			ResponseBody:   record.ResponseBody,
			Success:        record.Success,
			ErrorMessage:   record.ErrorMessage,
			CreatedAt:      record.CreatedAt,
		})
	}

	return attempts, nil
}

// ListRecent returns the newest events first, up to limit
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	ids, err := r.client.LRange(ctx, recentKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing recent events: %w", err)
	}

	events := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		ev, err := r.Get(ctx, id)
		if err == event.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, nil
}

// CountByStatus returns how many events sit in each status
func (r *Repository) CountByStatus(ctx context.Context) (map[event.Status]int64, error) {
	counts := make(map[event.Status]int64, 4)
	for _, status := range []event.Status{event.Pending, event.Retrying, event.Success, event.Failed} {
		value, err := r.client.Get(ctx, statusKey(status)).Result()
		if err == redis.Nil {
			counts[status] = 0
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading status counter: %w", err)
		}
		counts[status] = parseInt64(value)
	}
	return counts, nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// Helper functions

// attemptRecord is the stored projection of a DeliveryAttempt
type attemptRecord struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	DestinationID  string    `json:"destination_id"`
	TargetEndpoint string    `json:"target_endpoint"`
	ResponseStatus *int      `json:"response_status"`
	ResponseBody   string    `json:"response_body"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
}

func eventFields(ev event.Event) (map[string]interface{}, error) {
	headersJSON, err := json.Marshal(ev.Headers)
	if err != nil {
		return nil, fmt.Errorf("marshaling headers: %w", err)
	}

	lastAttemptAt := int64(0)
	if ev.LastAttemptAt != nil {
		lastAttemptAt = ev.LastAttemptAt.UnixMilli()
	}

	return map[string]interface{}{
		"id":                ev.ID,
		"route_id":          ev.RouteID,
		"payload":           ev.Payload,
		"headers":           string(headersJSON),
		"status":            ev.Status.String(),
		"attempt_count":     ev.AttemptCount,
		"destination_count": ev.DestinationCount,
		"delivered_count":   ev.DeliveredCount,
		"last_attempt_at":   lastAttemptAt,
		"error_message":     ev.ErrorMessage,
		"version":           ev.Version,
		"created_at":        ev.CreatedAt.UnixMilli(),
	}, nil
}

func eventFromFields(data map[string]string) (event.Event, error) {
	headers := make(map[string]string)
	if headersStr, ok := data["headers"]; ok && headersStr != "" {
		if err := json.Unmarshal([]byte(headersStr), &headers); err != nil {
			return event.Event{}, fmt.Errorf("unmarshaling headers: %w", err)
		}
	}

	var lastAttemptAt *time.Time
	if millis := parseInt64(data["last_attempt_at"]); millis > 0 {
		t := time.UnixMilli(millis)
		lastAttemptAt = &t
	}

	return event.Event{
		ID:               data["id"],
		RouteID:          data["route_id"],
		Payload:          []byte(data["payload"]),
		Headers:          headers,
		Status:           event.NewStatus(data["status"]),
		AttemptCount:     int(parseInt64(data["attempt_count"])),
		DestinationCount: int(parseInt64(data["destination_count"])),
		DeliveredCount:   int(parseInt64(data["delivered_count"])),
		LastAttemptAt:    lastAttemptAt,
		ErrorMessage:     data["error_message"],
		Version:          parseInt64(data["version"]),
		CreatedAt:        time.UnixMilli(parseInt64(data["created_at"])),
	}, nil
}

func statusKey(status event.Status) string {
	return fmt.Sprintf("%s:%s", statusPrefix, status.String())
}

func parseInt64(s string) int64 {
	var result int64
	fmt.Sscanf(s, "%d", &result)
	return result
}
