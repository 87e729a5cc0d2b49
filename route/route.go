package route

import (
	"fmt"
	"net/url"
	"sort"
)

/* Route represents an inbound inbox configuration
 * The slug identifies the inbound URL path and the secret is shared:
 * it authenticates inbound senders and signs outbound deliveries
 */
type Route struct {
	ID            string
	ProjectID     string
	ProjectName   string
	Name          string
	Slug          string
	Secret        string
	RetentionDays int
	MaxRetries    int
	IsActive      bool
	Destinations  []Destination
}

/* Destination is one outbound target owned by a route
 * Lower priority values are delivered first; equal priorities keep
 * their stored order (stable sort, no secondary key)
 */
type Destination struct {
	ID       string
	RouteID  string
	Label    string
	Endpoint string
	Priority int
	IsActive bool
}

// Project groups routes for display purposes; its name travels in the
// x-webhookhub-project delivery header
type Project struct {
	ID   string
	Name string
}

// Validate checks if the route configuration is valid
func (r *Route) Validate() error {
	if r.Slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if r.Secret == "" {
		return fmt.Errorf("secret cannot be empty for route %s", r.Slug)
	}
	if r.MaxRetries < 1 || r.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be between 1 and 10 for route %s (got %d)", r.Slug, r.MaxRetries)
	}
	if r.RetentionDays < 7 || r.RetentionDays > 90 {
		return fmt.Errorf("retention_days must be between 7 and 90 for route %s (got %d)", r.Slug, r.RetentionDays)
	}
	for _, destination := range r.Destinations {
		if err := destination.Validate(); err != nil {
			return fmt.Errorf("invalid destination for route %s: %w", r.Slug, err)
		}
	}
	return nil
}

// Validate checks if the destination configuration is valid
func (d *Destination) Validate() error {
	if d.Label == "" {
		return fmt.Errorf("label cannot be empty")
	}
	if d.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty for destination %s", d.Label)
	}
	parsed, err := url.Parse(d.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("endpoint must be a valid URL for destination %s: %s", d.Label, d.Endpoint)
	}
	if d.Priority < 0 {
		return fmt.Errorf("priority cannot be negative for destination %s", d.Label)
	}
	return nil
}

/* ActiveDestinations returns the destinations that participate in the
 * next delivery cycle, ordered by ascending priority
 * The sort is stable: equal priorities preserve storage order
 */
func (r *Route) ActiveDestinations() []Destination {
	active := make([]Destination, 0, len(r.Destinations))
	for _, destination := range r.Destinations {
		if destination.IsActive {
			active = append(active, destination)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})
	return active
}

// SortedDestinations returns every destination (active or not) ordered by
// priority, for the read model
func (r *Route) SortedDestinations() []Destination {
	all := make([]Destination, len(r.Destinations))
	copy(all, r.Destinations)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Priority < all[j].Priority
	})
	return all
}
