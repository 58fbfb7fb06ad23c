// Package handler provides HTTP handlers for the QuakeWatch API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quakewatch/quakewatch/internal/api/models"
	"github.com/quakewatch/quakewatch/internal/api/response"
	"github.com/quakewatch/quakewatch/internal/marker"
	"github.com/quakewatch/quakewatch/internal/quake"
)

// EventsHandler serves earthquake data and the controls around it.
type EventsHandler struct {
	service *quake.Service
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(service *quake.Service) *EventsHandler {
	return &EventsHandler{service: service}
}

// ListEvents handles GET /v1/earthquakes. Without a min_magnitude query
// parameter the full snapshot is returned and the caller filters; with
// one, only events at or above that magnitude are included (events with
// unknown magnitude never pass a finite threshold).
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	view := h.service.CurrentView()

	events := view.Events
	threshold := 0.0
	if raw := r.URL.Query().Get("min_magnitude"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.BadRequest(w, r, "min_magnitude must be a number")
			return
		}
		threshold = min
		events = quake.Filter(events, min)
	}

	response.JSON(w, r, http.StatusOK, models.NewEventsResponse(events, view.LastUpdated, threshold))
}

// GetStatus handles GET /v1/status.
func (h *EventsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	view := h.service.CurrentView()
	response.JSON(w, r, http.StatusOK, models.StatusResponse{
		Loading:     view.Loading,
		Error:       view.ErrorMessage,
		LastUpdated: view.LastUpdated,
		EventCount:  len(view.Events),
		Threshold:   view.Threshold,
	})
}

// GetLegend handles GET /v1/legend.
func (h *EventsHandler) GetLegend(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.LegendResponse{Bands: marker.Bands()})
}

// SetThreshold handles PUT /v1/threshold. The value is clamped to the
// slider range; changing it triggers no feed activity.
func (h *EventsHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	var req models.ThresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "body must be JSON with a numeric threshold field")
		return
	}

	stored := h.service.SetThreshold(req.Threshold)
	response.JSON(w, r, http.StatusOK, models.ThresholdResponse{Threshold: stored})
}

// TriggerRefresh handles POST /v1/refresh, the manual retry action. The
// fetch runs detached from the request so a slow feed does not hold the
// response; an overlapping in-flight fetch is deliberately not suppressed.
func (h *EventsHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	go h.service.Refresh(context.WithoutCancel(r.Context()))
	response.Accepted(w, r, map[string]string{"status": "refresh started"})
}
