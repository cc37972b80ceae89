package handlers

import (
	"net/http"
	"time"

	"evcharge/internal/models"
	"evcharge/internal/repository"
	"evcharge/internal/service"
)

const dateLayout = "2006-01-02"

// NewMetricsHandler returns the GET /metrics handler.
func NewMetricsHandler(metrics *service.MetricsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter := repository.MetricsFilter{
			Status:   query.Get("status"),
			Location: query.Get("location"),
		}
		if filter.Status != "" && !models.ValidStatus(filter.Status) {
			writeError(w, http.StatusBadRequest, "Invalid status value")
			return
		}

		if raw := query.Get("from"); raw != "" {
			from, err := time.Parse(dateLayout, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid from date")
				return
			}
			filter.From = &from
		}
		if raw := query.Get("to"); raw != "" {
			to, err := time.Parse(dateLayout, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid to date")
				return
			}
			filter.To = &to
		}

		result, err := metrics.Get(r.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch metrics")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
