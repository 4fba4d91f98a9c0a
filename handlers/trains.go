package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/you/trainticker/models"
)

// ScheduleService defines the query operations the train endpoints expose
type ScheduleService interface {
	GetTodaysSchedule(ctx context.Context) ([]models.TrainScheduleDTO, error)
	GetScheduleByDate(ctx context.Context, date string) ([]models.TrainScheduleDTO, error)
	GetUpcomingDepartures(ctx context.Context) ([]models.TrainScheduleDTO, error)
	GetSchedulesByDestination(ctx context.Context, destination string) ([]models.TrainScheduleDTO, error)
	GetSchedulesByPlatform(ctx context.Context, platform string) ([]models.TrainScheduleDTO, error)
	GetDelayedTrains(ctx context.Context) ([]models.TrainScheduleDTO, error)
	GetSchedulesInTimeRange(ctx context.Context, start, end string) ([]models.TrainScheduleDTO, error)
	GetTodaysStats(ctx context.Context) (models.ScheduleStats, error)
}

// TrainHandler handles HTTP requests for the schedule query endpoints
type TrainHandler struct {
	service ScheduleService
}

// NewTrainHandler creates a new handler with the given service
func NewTrainHandler(service ScheduleService) *TrainHandler {
	return &TrainHandler{service: service}
}

// ErrorResponse is the JSON error response structure. Store-level detail is
// logged server-side and never echoed to the client.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// GetTodaysTrains handles GET /api/trains
func (h *TrainHandler) GetTodaysTrains(w http.ResponseWriter, r *http.Request) {
	trains, err := h.service.GetTodaysSchedule(r.Context())
	if err != nil {
		log.Printf("Error fetching today's trains: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve trains"})
		return
	}
	writeJSON(w, http.StatusOK, trains)
}

// GetTrainsByDate handles GET /api/trains/{date}
// The date path segment must be ISO YYYY-MM-DD
func (h *TrainHandler) GetTrainsByDate(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "date must be YYYY-MM-DD",
			Details: map[string]interface{}{
				"date": chi.URLParam(r, "date"),
			},
		})
		return
	}

	trains, err := h.service.GetScheduleByDate(r.Context(), date)
	if err != nil {
		log.Printf("Error fetching trains for date %s: %v", date, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve trains"})
		return
	}
	writeJSON(w, http.StatusOK, trains)
}

// GetUpcomingTrains handles GET /api/trains/upcoming
func (h *TrainHandler) GetUpcomingTrains(w http.ResponseWriter, r *http.Request) {
	trains, err := h.service.GetUpcomingDepartures(r.Context())
	if err != nil {
		log.Printf("Error fetching upcoming trains: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve trains"})
		return
	}
	writeJSON(w, http.StatusOK, trains)
}

// GetTrainsByDestination handles GET /api/trains/destination/{destination}
// Matches the destination as a case-insensitive substring
func (h *TrainHandler) GetTrainsByDestination(w http.ResponseWriter, r *http.Request) {
	destination := chi.URLParam(r, "destination")
	if destination == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "destination parameter is required"})
		return
	}

	trains, err := h.service.GetSchedulesByDestination(r.Context(), destination)
	if err != nil {
		log.Printf("Error fetching trains to %s: %v", destination, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve trains"})
		return
	}
	writeJSON(w, http.StatusOK, trains)
}

// GetTrainsByPlatform handles GET /api/trains/platform/{platform}
// Matches the platform label exactly
func (h *TrainHandler) GetTrainsByPlatform(w http.ResponseWriter, r *http.Request) {
	platform := chi.URLParam(r, "platform")
	if platform == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "platform parameter is required"})
		return
	}

	trains, err := h.service.GetSchedulesByPlatform(r.Context(), platform)
	if err != nil {
		log.Printf("Error fetching trains from platform %s: %v", platform, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve trains"})
		return
	}
	writeJSON(w, http.StatusOK, trains)
}

// GetDelayedTrains handles GET /api/trains/delayed
// Returns today's delayed schedules, worst delays first
func (h *TrainHandler) GetDelayedTrains(w http.ResponseWriter, r *http.Request) {
	trains, err := h.service.GetDelayedTrains(r.Context())
	if err != nil {
		log.Printf("Error fetching delayed trains: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve trains"})
		return
	}
	writeJSON(w, http.StatusOK, trains)
}

// GetTrainsInTimeRange handles GET /api/trains/time-range
// Query params startTime and endTime as HH:mm, both bounds inclusive
func (h *TrainHandler) GetTrainsInTimeRange(w http.ResponseWriter, r *http.Request) {
	start, err := models.ParseClock(r.URL.Query().Get("startTime"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "startTime must be HH:mm",
			Details: map[string]interface{}{
				"startTime": r.URL.Query().Get("startTime"),
			},
		})
		return
	}
	end, err := models.ParseClock(r.URL.Query().Get("endTime"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "endTime must be HH:mm",
			Details: map[string]interface{}{
				"endTime": r.URL.Query().Get("endTime"),
			},
		})
		return
	}

	trains, err := h.service.GetSchedulesInTimeRange(r.Context(), start, end)
	if err != nil {
		log.Printf("Error fetching trains in time range %s-%s: %v", start, end, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve trains"})
		return
	}
	writeJSON(w, http.StatusOK, trains)
}

// GetTodaysStats handles GET /api/trains/stats
func (h *TrainHandler) GetTodaysStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetTodaysStats(r.Context())
	if err != nil {
		log.Printf("Error fetching train statistics: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve statistics"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
