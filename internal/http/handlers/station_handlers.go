package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"evcharge/internal/models"
	"evcharge/internal/service"
)

// StationHandlers serves station registration, listing and status updates.
type StationHandlers struct {
	stations *service.StationService
}

// NewStationHandlers builds StationHandlers.
func NewStationHandlers(stations *service.StationService) *StationHandlers {
	return &StationHandlers{stations: stations}
}

// List handles GET /stations.
func (h *StationHandlers) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stations")
		return
	}
	if stations == nil {
		stations = []models.Station{}
	}
	writeJSON(w, http.StatusOK, stations)
}

// Create handles POST /stations.
func (h *StationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name              string  `json:"name"`
		Location          string  `json:"location"`
		MaxCapacityKW     float64 `json:"maxCapacityKW"`
		AutoSwitchMinutes int     `json:"autoSwitchMinutes"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	station, err := h.stations.Create(r.Context(), service.CreateStationInput{
		Name:              strings.TrimSpace(req.Name),
		Location:          strings.TrimSpace(req.Location),
		MaxCapacityKW:     req.MaxCapacityKW,
		AutoSwitchMinutes: req.AutoSwitchMinutes,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingStationFields) {
			writeError(w, http.StatusBadRequest, "Missing fields")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create station")
		return
	}

	writeJSON(w, http.StatusCreated, station)
}

// UpdateStatus handles PATCH /stations/{id}/status.
func (h *StationHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Status string `json:"status"`
	}
	type response struct {
		Message string          `json:"message"`
		Station *models.Station `json:"station"`
	}

	id := r.PathValue("id")

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	station, err := h.stations.UpdateStatus(r.Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "Invalid status value")
		case errors.Is(err, service.ErrStationNotFound):
			writeError(w, http.StatusNotFound, "Station not found")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update station")
		}
		return
	}

	writeJSON(w, http.StatusOK, response{
		Message: "Station status updated",
		Station: station,
	})
}
