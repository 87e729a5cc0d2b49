package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhookhub/event"
	"github.com/marcelsud/webhookhub/route"
)

/* HTTP layer DTOs for the hub API
 * Statically defined projections, separate from domain entities, so the
 * response shapes never leak internal structure
 */

// inboundResponse is the acknowledgment for an accepted inbound event
type inboundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// retryResponse acknowledges a manual retry
type retryResponse struct {
	Status string `json:"status"`
}

// projectResponse represents a project in the API
type projectResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// destinationResponse represents a destination in the API
type destinationResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Endpoint string `json:"endpoint"`
	Priority int    `json:"priority"`
	IsActive bool   `json:"isActive"`
}

// routeResponse represents an event's route in the detail view
type routeResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Slug         string                `json:"slug"`
	Project      projectResponse       `json:"project"`
	InboundURL   string                `json:"inboundUrl"`
	Secret       string                `json:"secret"`
	Destinations []destinationResponse `json:"destinations"`
}

// attemptDestinationResponse is the destination summary nested in an attempt
type attemptDestinationResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Endpoint string `json:"endpoint"`
}

// attemptResponse represents one delivery attempt in the detail view
type attemptResponse struct {
	ID             string                      `json:"id"`
	Success        bool                        `json:"success"`
	ResponseStatus *int                        `json:"responseStatus"`
	ResponseBody   string                      `json:"responseBody"`
	ErrorMessage   *string                     `json:"errorMessage"`
	CreatedAt      time.Time                   `json:"createdAt"`
	Destination    *attemptDestinationResponse `json:"destination"`
}

// eventDetailResponse is the full read model for one event
type eventDetailResponse struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	Timestamp        time.Time         `json:"timestamp"`
	LastAttemptAt    *time.Time        `json:"lastAttemptAt"`
	Payload          json.RawMessage   `json:"payload"`
	Headers          map[string]string `json:"headers"`
	AttemptCount     int               `json:"attemptCount"`
	DestinationCount int               `json:"destinationCount"`
	DeliveredCount   int               `json:"deliveredCount"`
	ErrorMessage     *string           `json:"errorMessage"`
	Route            routeResponse     `json:"route"`
	Attempts         []attemptResponse `json:"attempts"`
}

// eventListItemResponse is one row of the recent-events listing
type eventListItemResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Project          string    `json:"project"`
	Status           string    `json:"status"`
	Attempts         int       `json:"attempts"`
	Timestamp        time.Time `json:"timestamp"`
	RouteID          string    `json:"routeId"`
	Slug             string    `json:"slug"`
	DestinationCount int       `json:"destinationCount"`
	DeliveredCount   int       `json:"deliveredCount"`
}

// postInbound handles POST /inbound/{slug}
func postInbound(eventService event.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			writeError(w, http.StatusBadRequest, "slug is required")
			return
		}

		// Header takes precedence over the query parameter
		providedSecret := r.Header.Get("x-route-secret")
		if providedSecret == "" {
			providedSecret = r.URL.Query().Get("secret")
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		defer r.Body.Close()

		id, err := eventService.Receive(r.Context(), slug, providedSecret, body, r.Header)
		if err != nil {
			switch {
			case errors.Is(err, route.ErrNotFound):
				writeError(w, http.StatusNotFound, "webhook route not found")
			case errors.Is(err, event.ErrUnauthorized):
				writeError(w, http.StatusUnauthorized, "invalid secret")
			case errors.Is(err, event.ErrNoActiveDestinations):
				writeError(w, http.StatusBadRequest, "no active destinations configured")
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusAccepted, inboundResponse{ID: id, Status: "enqueued"})
	})
}

// retryEvent handles POST /events/{id}/retry
func retryEvent(eventService event.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := eventService.Retry(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, event.ErrNotFound):
				writeError(w, http.StatusNotFound, "event not found")
			case errors.Is(err, route.ErrNotFound):
				writeError(w, http.StatusNotFound, "event not found")
			case errors.Is(err, event.ErrNoActiveDestinations):
				writeError(w, http.StatusBadRequest, "no active destinations configured")
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, retryResponse{Status: "queued"})
	})
}

// getEvent handles GET /events/{id}
func getEvent(eventService event.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		detail, err := eventService.Get(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, event.ErrNotFound), errors.Is(err, route.ErrNotFound):
				writeError(w, http.StatusNotFound, "event not found")
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, mapEventDetail(detail))
	})
}

// listEvents handles GET /events?limit=
func listEvents(eventService event.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 100 {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
				return
			}
			limit = parsed
		}

		events, routes, err := eventService.ListRecent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		items := make([]eventListItemResponse, 0, len(events))
		for i, ev := range events {
			rt := routes[i]
			items = append(items, eventListItemResponse{
				ID:               ev.ID,
				Name:             rt.Name,
				Project:          rt.ProjectName,
				Status:           ev.Status.String(),
				Attempts:         ev.AttemptCount,
				Timestamp:        ev.CreatedAt,
				RouteID:          ev.RouteID,
				Slug:             rt.Slug,
				DestinationCount: ev.DestinationCount,
				DeliveredCount:   ev.DeliveredCount,
			})
		}

		writeJSON(w, http.StatusOK, items)
	})
}

func mapEventDetail(detail event.Detail) eventDetailResponse {
	rt := detail.Route

	destinations := make([]destinationResponse, 0, len(rt.Destinations))
	for _, destination := range rt.SortedDestinations() {
		destinations = append(destinations, destinationResponse{
			ID:       destination.ID,
			Label:    destination.Label,
			Endpoint: destination.Endpoint,
			Priority: destination.Priority,
			IsActive: destination.IsActive,
		})
	}

	byID := make(map[string]route.Destination, len(rt.Destinations))
	for _, destination := range rt.Destinations {
		byID[destination.ID] = destination
	}

	attempts := make([]attemptResponse, 0, len(detail.Attempts))
	for _, attempt := range detail.Attempts {
		mapped := attemptResponse{
			ID:             attempt.ID,
			Success:        attempt.Success,
			ResponseStatus: attempt.ResponseStatus,
			ResponseBody:   attempt.ResponseBody,
			ErrorMessage:   optionalString(attempt.ErrorMessage),
			CreatedAt:      attempt.CreatedAt,
		}
		if destination, ok := byID[attempt.DestinationID]; ok {
			mapped.Destination = &attemptDestinationResponse{
				ID:       destination.ID,
				Label:    destination.Label,
				Endpoint: destination.Endpoint,
			}
		}
		attempts = append(attempts, mapped)
	}

	return eventDetailResponse{
		ID:               detail.Event.ID,
		Status:           detail.Event.Status.String(),
		Timestamp:        detail.Event.CreatedAt,
		LastAttemptAt:    detail.Event.LastAttemptAt,
		Payload:          rawPayload(detail.Event.Payload),
		Headers:          detail.Event.Headers,
		AttemptCount:     detail.Event.AttemptCount,
		DestinationCount: detail.Event.DestinationCount,
		DeliveredCount:   detail.Event.DeliveredCount,
		ErrorMessage:     optionalString(detail.Event.ErrorMessage),
		Route: routeResponse{
			ID:   rt.ID,
			Name: rt.Name,
			Slug: rt.Slug,
			Project: projectResponse{
				ID:   rt.ProjectID,
				Name: rt.ProjectName,
			},
			InboundURL:   "/inbound/" + rt.Slug,
			Secret:       rt.Secret,
			Destinations: destinations,
		},
		Attempts: attempts,
	}
}

// rawPayload passes JSON payloads through untouched and quotes anything else
func rawPayload(payload []byte) json.RawMessage {
	if json.Valid(payload) {
		return json.RawMessage(payload)
	}
	quoted, err := json.Marshal(string(payload))
	if err != nil {
		return json.RawMessage(`null`)
	}
	return json.RawMessage(quoted)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
