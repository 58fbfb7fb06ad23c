package models

import (
	"github.com/quakewatch/quakewatch/internal/marker"
	"github.com/quakewatch/quakewatch/internal/quake"
)

// EventMarker is one earthquake annotated with its display style. The
// color and radius come from the marker package so the API payload and
// the legend can never drift apart.
type EventMarker struct {
	quake.Event

	Color  string  `json:"color"`
	Radius float64 `json:"radius"`
}

// EventsResponse is the payload of GET /v1/earthquakes.
type EventsResponse struct {
	Events []EventMarker `json:"events"`

	// GeneratedAt is the upstream snapshot timestamp in epoch
	// milliseconds, null before the first successful fetch.
	GeneratedAt *int64 `json:"generatedAt"`

	// Threshold is the minimum magnitude applied to this response.
	Threshold float64 `json:"threshold"`
}

// NewEventsResponse annotates the filtered events with marker styling.
func NewEventsResponse(events []quake.Event, generatedAt *int64, threshold float64) EventsResponse {
	markers := make([]EventMarker, 0, len(events))
	for _, e := range events {
		markers = append(markers, EventMarker{
			Event:  e,
			Color:  marker.ColorFor(e.Magnitude),
			Radius: marker.RadiusFor(e.Magnitude),
		})
	}
	return EventsResponse{
		Events:      markers,
		GeneratedAt: generatedAt,
		Threshold:   threshold,
	}
}

// StatusResponse is the payload of GET /v1/status.
type StatusResponse struct {
	Loading     bool    `json:"loading"`
	Error       string  `json:"error,omitempty"`
	LastUpdated *int64  `json:"lastUpdated"`
	EventCount  int     `json:"eventCount"`
	Threshold   float64 `json:"threshold"`
}

// LegendResponse is the payload of GET /v1/legend.
type LegendResponse struct {
	Bands []marker.Band `json:"bands"`
}

// ThresholdRequest is the body of PUT /v1/threshold.
type ThresholdRequest struct {
	Threshold float64 `json:"threshold"`
}

// ThresholdResponse echoes the stored (clamped) threshold.
type ThresholdResponse struct {
	Threshold float64 `json:"threshold"`
}

// Health is the payload of the ops endpoints.
type Health struct {
	Status  string            `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}
