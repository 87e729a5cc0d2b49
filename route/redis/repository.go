package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/webhookhub/route"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of route.Repository
 * Uses Redis Hashes for route records, a slug index for inbound lookups
 * and a set for listing
 */

const (
	hashPrefix    = "route"       // Hash naming: route:{route_id}
	slugPrefix    = "route:slug"  // Slug index: route:slug:{slug} -> route_id
	routeIndexKey = "routes:all"  // Set of every route id
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

	return &Repository{
		client: client,
	}, nil
}

// NewRepositoryWithClient wraps an existing client, sharing the connection pool
func NewRepositoryWithClient(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Put stores a route and its destinations, replacing any previous version
func (r *Repository) Put(ctx context.Context, rt route.Route) error {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, rt.ID)

	destinationsJSON, err := json.Marshal(rt.Destinations)
	if err != nil {
		return fmt.Errorf("marshaling destinations: %w", err)
	}

	err = r.client.HSet(ctx, hashKey, map[string]interface{}{
		"id":             rt.ID,
		"project_id":     rt.ProjectID,
		"project_name":   rt.ProjectName,
		"name":           rt.Name,
		"slug":           rt.Slug,
		"secret":         rt.Secret,
		"retention_days": rt.RetentionDays,
		"max_retries":    rt.MaxRetries,
		"is_active":      boolToInt(rt.IsActive),
		"destinations":   string(destinationsJSON),
	}).Err()
	if err != nil {
		return fmt.Errorf("storing route: %w", err)
	}

	slugKey := fmt.Sprintf("%s:%s", slugPrefix, rt.Slug)
	if err := r.client.Set(ctx, slugKey, rt.ID, 0).Err(); err != nil {
		return fmt.Errorf("indexing route slug: %w", err)
	}

	if err := r.client.SAdd(ctx, routeIndexKey, rt.ID).Err(); err != nil {
		return fmt.Errorf("indexing route: %w", err)
	}

	return nil
}

// GetBySlug retrieves a route by its inbound slug
func (r *Repository) GetBySlug(ctx context.Context, slug string) (route.Route, error) {
	slugKey := fmt.Sprintf("%s:%s", slugPrefix, slug)

	id, err := r.client.Get(ctx, slugKey).Result()
	if err == redis.Nil {
		return route.Route{}, route.ErrNotFound
	}
	if err != nil {
		return route.Route{}, fmt.Errorf("resolving route slug: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a route by ID from Redis hash
func (r *Repository) GetByID(ctx context.Context, id string) (route.Route, error) {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, id)

	data, err := r.client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return route.Route{}, fmt.Errorf("getting route: %w", err)
	}
	if len(data) == 0 {
		return route.Route{}, route.ErrNotFound
	}

	var destinations []route.Destination
	if destinationsStr, ok := data["destinations"]; ok && destinationsStr != "" {
		if err := json.Unmarshal([]byte(destinationsStr), &destinations); err != nil {
			return route.Route{}, fmt.Errorf("unmarshaling destinations: %w", err)
		}
	}

	rt := route.Route{
		ID:            data["id"],
		ProjectID:     data["project_id"],
		ProjectName:   data["project_name"],
		Name:          data["name"],
		Slug:          data["slug"],
		Secret:        data["secret"],
		RetentionDays: int(parseInt64(data["retention_days"])),
		MaxRetries:    int(parseInt64(data["max_retries"])),
		IsActive:      parseInt64(data["is_active"]) == 1,
		Destinations:  destinations,
	}

	return rt, nil
}

// List returns every stored route
func (r *Repository) List(ctx context.Context) ([]route.Route, error) {
	ids, err := r.client.SMembers(ctx, routeIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing route ids: %w", err)
	}

	routes := make([]route.Route, 0, len(ids))
	for _, id := range ids {
		rt, err := r.GetByID(ctx, id)
		if err == route.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}

	return routes, nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// Helper functions

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseInt64(s string) int64 {
	var result int64
	fmt.Sscanf(s, "%d", &result)
	return result
}
