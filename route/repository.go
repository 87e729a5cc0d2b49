package route

import (
	"context"
	"errors"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// ErrNotFound is returned when a route lookup misses
var ErrNotFound = errors.New("route not found")

// Reader provides read operations for routes
type Reader interface {
	/* Context is always the first parameter in functions that do I/O
	 * This allows for cancellation, timeouts, and shared values
	 */
	GetBySlug(ctx context.Context, slug string) (Route, error)
	GetByID(ctx context.Context, id string) (Route, error)
	List(ctx context.Context) ([]Route, error)
}

// Writer provides write operations for routes
type Writer interface {
	// Put stores a route and its destinations, replacing any previous version
	Put(ctx context.Context, route Route) error
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
