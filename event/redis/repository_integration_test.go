//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/marcelsud/webhookhub/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(id string) event.Event {
	return event.Event{
		ID:               id,
		RouteID:          "route-1",
		Payload:          []byte(`{"order": 42}`),
		Headers:          map[string]string{"Content-Type": "application/json"},
		Status:           event.Pending,
		AttemptCount:     0,
		DestinationCount: 2,
		DeliveredCount:   0,
		Version:          0,
		CreatedAt:        time.Now(),
	}
}

func TestRepository_CreateGet_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("create and retrieve event", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		ev := testEvent("event-1")
		require.NoError(t, repo.Create(ctx, ev))

		retrieved, err := repo.Get(ctx, ev.ID)
		require.NoError(t, err)

		assert.Equal(t, ev.ID, retrieved.ID)
		assert.Equal(t, ev.RouteID, retrieved.RouteID)
		assert.Equal(t, string(ev.Payload), string(retrieved.Payload))
		assert.Equal(t, "application/json", retrieved.Headers["Content-Type"])
		assert.Equal(t, event.Pending, retrieved.Status)
		assert.Equal(t, 2, retrieved.DestinationCount)
		assert.Nil(t, retrieved.LastAttemptAt)
	})

	t.Run("get non-existent event", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		_, err := repo.Get(ctx, "missing")
		require.ErrorIs(t, err, event.ErrNotFound)
	})
}

func TestRepository_Update_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("update with matching version bumps the version", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		ev := testEvent("event-2")
		require.NoError(t, repo.Create(ctx, ev))

		now := time.Now()
		ev.Status = event.Retrying
		ev.AttemptCount = 1
		ev.LastAttemptAt = &now
		ev.ErrorMessage = "HTTP 500"
		require.NoError(t, repo.Update(ctx, ev))

		retrieved, err := repo.Get(ctx, ev.ID)
		require.NoError(t, err)
		assert.Equal(t, event.Retrying, retrieved.Status)
		assert.Equal(t, 1, retrieved.AttemptCount)
		assert.Equal(t, "HTTP 500", retrieved.ErrorMessage)
		assert.Equal(t, int64(1), retrieved.Version)
		require.NotNil(t, retrieved.LastAttemptAt)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		ev := testEvent("event-3")
		require.NoError(t, repo.Create(ctx, ev))

		// First writer wins
		first := ev
		first.Status = event.Success
		require.NoError(t, repo.Update(ctx, first))

		// Second writer still holds version 0
		second := ev
		second.Status = event.Failed
		err := repo.Update(ctx, second)
		require.ErrorIs(t, err, event.ErrVersionConflict)

		retrieved, err := repo.Get(ctx, ev.ID)
		require.NoError(t, err)
		assert.Equal(t, event.Success, retrieved.Status)
	})

	t.Run("update of non-existent event", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		err := repo.Update(ctx, testEvent("missing"))
		require.ErrorIs(t, err, event.ErrNotFound)
	})
}

func TestRepository_Reset_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("reset ignores the stored version but still advances it", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		ev := testEvent("event-4")
		require.NoError(t, repo.Create(ctx, ev))

		updated := ev
		updated.Status = event.Failed
		updated.AttemptCount = 3
		require.NoError(t, repo.Update(ctx, updated))

		// Manual retry holds an arbitrary (stale) version and still wins
		reset := ev
		reset.Status = event.Pending
		reset.AttemptCount = 0
		reset.Version = 999
		require.NoError(t, repo.Reset(ctx, reset))

		retrieved, err := repo.Get(ctx, ev.ID)
		require.NoError(t, err)
		assert.Equal(t, event.Pending, retrieved.Status)
		assert.Equal(t, 0, retrieved.AttemptCount)
		assert.Equal(t, int64(2), retrieved.Version)
	})
}

func TestRepository_Attempts_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("append and list attempts newest first", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		status := 500
		first := event.DeliveryAttempt{
			ID:             "attempt-1",
			EventID:        "event-5",
			DestinationID:  "d1",
			TargetEndpoint: "https://erp.example.com/hook",
			ResponseStatus: &status,
			ResponseBody:   "boom",
			Success:        false,
			ErrorMessage:   "HTTP 500",
			CreatedAt:      time.Now(),
		}
		second := event.DeliveryAttempt{
			ID:            "attempt-2",
			EventID:       "event-5",
			DestinationID: "d1",
			Success:       true,
			CreatedAt:     time.Now(),
		}

		require.NoError(t, repo.AppendAttempt(ctx, first))
		require.NoError(t, repo.AppendAttempt(ctx, second))

		attempts, err := repo.ListAttempts(ctx, "event-5")
		require.NoError(t, err)
		require.Len(t, attempts, 2)

		assert.Equal(t, "attempt-2", attempts[0].ID)
		assert.Equal(t, "attempt-1", attempts[1].ID)
		require.NotNil(t, attempts[1].ResponseStatus)
		assert.Equal(t, 500, *attempts[1].ResponseStatus)
		assert.Nil(t, attempts[0].ResponseStatus)
	})

	t.Run("no attempts yet", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		attempts, err := repo.ListAttempts(ctx, "event-none")
		require.NoError(t, err)
		assert.Empty(t, attempts)
	})
}

func TestRepository_ListRecent_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("newest events come first", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		require.NoError(t, repo.Create(ctx, testEvent("event-a")))
		require.NoError(t, repo.Create(ctx, testEvent("event-b")))
		require.NoError(t, repo.Create(ctx, testEvent("event-c")))

		events, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "event-c", events[0].ID)
		assert.Equal(t, "event-b", events[1].ID)
	})
}

func TestRepository_CountByStatus_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("counters follow status transitions", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		repo := CreateTestRepository(t, redisContainer.Addr)
		defer repo.Close(ctx)

		first := testEvent("event-6")
		second := testEvent("event-7")
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		counts, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[event.Pending])

		first.Status = event.Success
		require.NoError(t, repo.Update(ctx, first))

		counts, err = repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[event.Pending])
		assert.Equal(t, int64(1), counts[event.Success])
		assert.Equal(t, int64(0), counts[event.Failed])
	})
}
