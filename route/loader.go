package route

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

/* Loader manages route configuration from seed.yaml
 * Route and project management lives outside this service; the seed file
 * is how a deployment provisions projects, routes and destinations
 */

// SeedConfig represents the structure of seed.yaml
type SeedConfig struct {
	Projects []ProjectConfig `yaml:"projects"`
}

// ProjectConfig represents a project and its routes in the YAML file
type ProjectConfig struct {
	ID     string        `yaml:"id"`
	Name   string        `yaml:"name"`
	Routes []RouteConfig `yaml:"routes"`
}

// RouteConfig represents a single route in the YAML file
type RouteConfig struct {
	ID            string              `yaml:"id"`
	Name          string              `yaml:"name"`
	Slug          string              `yaml:"slug"`
	Secret        string              `yaml:"secret"`
	RetentionDays int                 `yaml:"retention_days"` // Default: 30
	MaxRetries    int                 `yaml:"max_retries"`    // Default: 3
	IsActive      *bool               `yaml:"is_active"`      // Default: true
	Destinations  []DestinationConfig `yaml:"destinations"`
}

// DestinationConfig represents a destination in the YAML file
type DestinationConfig struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Endpoint string `yaml:"endpoint"`
	Priority int    `yaml:"priority"`
	IsActive *bool  `yaml:"is_active"` // Default: true
}

// Loader holds the loaded routes
type Loader struct {
	routes []Route
}

// NewLoader creates a new route loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the seed YAML file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var config SeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing seed YAML: %w", err)
	}

	for _, pc := range config.Projects {
		projectID := pc.ID
		if projectID == "" {
			projectID = uuid.New().String()
		}
		if pc.Name == "" {
			return fmt.Errorf("project name cannot be empty")
		}

		for _, rc := range pc.Routes {
			route, err := buildRoute(projectID, pc.Name, rc)
			if err != nil {
				return err
			}
			l.routes = append(l.routes, route)
		}
	}

	return nil
}

func buildRoute(projectID, projectName string, rc RouteConfig) (Route, error) {
	routeID := rc.ID
	if routeID == "" {
		routeID = uuid.New().String()
	}

	retentionDays := rc.RetentionDays
	if retentionDays == 0 {
		retentionDays = 30
	}
	maxRetries := rc.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	isActive := true
	if rc.IsActive != nil {
		isActive = *rc.IsActive
	}

	destinations := make([]Destination, 0, len(rc.Destinations))
	for _, dc := range rc.Destinations {
		destinationID := dc.ID
		if destinationID == "" {
			destinationID = uuid.New().String()
		}
		destinationActive := true
		if dc.IsActive != nil {
			destinationActive = *dc.IsActive
		}
		destinations = append(destinations, Destination{
			ID:       destinationID,
			RouteID:  routeID,
			Label:    dc.Label,
			Endpoint: dc.Endpoint,
			Priority: dc.Priority,
			IsActive: destinationActive,
		})
	}

	route := Route{
		ID:            routeID,
		ProjectID:     projectID,
		ProjectName:   projectName,
		Name:          rc.Name,
		Slug:          rc.Slug,
		Secret:        rc.Secret,
		RetentionDays: retentionDays,
		MaxRetries:    maxRetries,
		IsActive:      isActive,
		Destinations:  destinations,
	}

	if err := route.Validate(); err != nil {
		return Route{}, fmt.Errorf("validating route: %w", err)
	}
	return route, nil
}

// List returns all loaded routes
func (l *Loader) List() []Route {
	return l.routes
}

// Seed writes every loaded route into the repository
func (l *Loader) Seed(ctx context.Context, repo Writer) error {
	for _, r := range l.routes {
		if err := repo.Put(ctx, r); err != nil {
			return fmt.Errorf("seeding route %s: %w", r.Slug, err)
		}
	}
	return nil
}
