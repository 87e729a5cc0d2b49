package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhookhub/event"
	"github.com/marcelsud/webhookhub/metrics"
	"github.com/marcelsud/webhookhub/route"
)

// Handlers sets up the hub API routes
func Handlers(ctx context.Context, eventService event.UseCase, routes route.Reader, exporter *metrics.OTelExporter) *chi.Mux {
	logger := httplog.NewLogger("webhookhub-api", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if exporter != nil {
		r.Handle("/metrics", exporter.ServeHTTP())
	}

	// Ingestion: one store write and one enqueue per accepted request
	r.Post("/inbound/{slug}", postInbound(eventService).ServeHTTP)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", listEvents(eventService).ServeHTTP)
		r.Get("/{id}", getEvent(eventService).ServeHTTP)
		r.Post("/{id}/retry", retryEvent(eventService).ServeHTTP)
	})

	r.Get("/stats/summary", getStatsSummary(eventService, routes).ServeHTTP)

	return r
}

// messageResponse is the error body shape for every non-2xx response
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}
