// Package quake holds the earthquake domain model: events, feed snapshots,
// the magnitude filter and the state controller that owns them.
package quake

import "time"

// Event is one observed seismic event from the feed.
type Event struct {
	// ID is the upstream identifier, stable across refreshes for the
	// same physical event and unique within a snapshot.
	ID string `json:"id"`

	// Magnitude is nil when the feed reports an unknown magnitude.
	// Unknown is distinct from zero.
	Magnitude *float64 `json:"magnitude"`

	// Place is the human-readable location description, may be empty.
	Place string `json:"place,omitempty"`

	// Time is the event origin time in epoch milliseconds.
	Time int64 `json:"time"`

	// DetailURL links to the upstream human-readable event record.
	DetailURL string `json:"detailUrl"`

	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`

	// DepthKm is kilometers below surface, nil when not reported.
	DepthKm *float64 `json:"depthKm,omitempty"`
}

// OccurredAt returns the event origin time as a time.Time.
func (e Event) OccurredAt() time.Time {
	return time.UnixMilli(e.Time)
}

// Snapshot is one complete, internally consistent result of a feed fetch.
// Events keep the order the feed delivered them in; no sorting is implied.
type Snapshot struct {
	Events []Event `json:"events"`

	// GeneratedAt is the upstream generation timestamp in epoch milliseconds.
	GeneratedAt int64 `json:"generatedAt"`
}
