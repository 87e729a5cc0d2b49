package chi

import (
	"math"
	"net/http"

	"github.com/marcelsud/webhookhub/event"
	"github.com/marcelsud/webhookhub/route"
)

// statsSummaryResponse aggregates hub-wide delivery counters
type statsSummaryResponse struct {
	TotalEvents  int64   `json:"totalEvents"`
	SuccessCount int64   `json:"successCount"`
	FailedCount  int64   `json:"failedCount"`
	PendingCount int64   `json:"pendingCount"`
	SuccessRate  float64 `json:"successRate"`
	Projects     int     `json:"projects"`
	ActiveRoutes int     `json:"activeRoutes"`
}

// getStatsSummary handles GET /stats/summary
func getStatsSummary(eventService event.UseCase, routes route.Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counts, err := eventService.CountByStatus(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		allRoutes, err := routes.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		projects := make(map[string]struct{})
		activeRoutes := 0
		for _, rt := range allRoutes {
			projects[rt.ProjectID] = struct{}{}
			if rt.IsActive {
				activeRoutes++
			}
		}

		success := counts[event.Success]
		failed := counts[event.Failed]
		pending := counts[event.Pending] + counts[event.Retrying]
		total := success + failed + pending

		successRate := 100.0
		if total > 0 {
			successRate = math.Round(float64(success)/float64(total)*1000) / 10
		}

		writeJSON(w, http.StatusOK, statsSummaryResponse{
			TotalEvents:  total,
			SuccessCount: success,
			FailedCount:  failed,
			PendingCount: pending,
			SuccessRate:  successRate,
			Projects:     len(projects),
			ActiveRoutes: activeRoutes,
		})
	})
}
