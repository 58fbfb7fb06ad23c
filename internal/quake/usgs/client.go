// Package usgs fetches earthquake snapshots from the USGS GeoJSON feed.
package usgs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/quakewatch/quakewatch/internal/quake"
)

// DefaultFeedURL is the USGS "all earthquakes, past day" GeoJSON feed.
const DefaultFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson"

// ClientConfig holds configuration for the USGS feed client.
type ClientConfig struct {
	// FeedURL is the feed endpoint (optional, defaults to DefaultFeedURL).
	FeedURL string

	// Timeout bounds each fetch (optional, defaults to 30 seconds).
	Timeout time.Duration

	// HTTPClient is the resty client to use (optional). The client must
	// not retry: retry is an explicit caller-level action, never hidden
	// inside a fetch.
	HTTPClient *resty.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a USGS GeoJSON feed client.
type Client struct {
	feedURL string
	client  *resty.Client
	logger  zerolog.Logger
}

// NewClient creates a new USGS feed client.
func NewClient(cfg ClientConfig) *Client {
	feedURL := cfg.FeedURL
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = resty.New()
	}
	client.SetTimeout(timeout)

	return &Client{
		feedURL: feedURL,
		client:  client,
		logger:  cfg.Logger,
	}
}

// FetchSnapshot fetches the feed and decodes it into a Snapshot. Cache
// headers force every call through to the origin; a stale intermediate
// copy of a live feed is useless.
//
// Failures are classified as quake.NetworkError, quake.HTTPError or
// quake.ParseError.
func (c *Client) FetchSnapshot(ctx context.Context) (*quake.Snapshot, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Cache-Control", "no-cache").
		SetHeader("Pragma", "no-cache").
		Get(c.feedURL)
	if err != nil {
		return nil, &quake.NetworkError{Err: err}
	}

	if resp.IsError() {
		return nil, &quake.HTTPError{Status: resp.StatusCode()}
	}

	var feed feedResponse
	if err := json.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, &quake.ParseError{Err: err}
	}

	snapshot := c.toSnapshot(&feed)

	c.logger.Debug().
		Int("events", len(snapshot.Events)).
		Int64("generated_at", snapshot.GeneratedAt).
		Msg("feed snapshot fetched")

	return snapshot, nil
}

// toSnapshot converts the GeoJSON feature collection to the domain model.
// A missing feature list decodes to an empty snapshot, not a failure.
func (c *Client) toSnapshot(feed *feedResponse) *quake.Snapshot {
	events := make([]quake.Event, 0, len(feed.Features))
	for _, f := range feed.Features {
		event := quake.Event{
			ID:        f.ID,
			Magnitude: f.Properties.Mag,
			Time:      f.Properties.Time,
			DetailURL: f.Properties.URL,
		}
		if f.Properties.Place != nil {
			event.Place = *f.Properties.Place
		}

		// GeoJSON point coordinates are [longitude, latitude, depth].
		coords := f.Geometry.Coordinates
		if len(coords) >= 2 {
			event.Longitude = coords[0]
			event.Latitude = coords[1]
		}
		if len(coords) >= 3 {
			depth := coords[2]
			event.DepthKm = &depth
		}

		events = append(events, event)
	}

	return &quake.Snapshot{
		Events:      events,
		GeneratedAt: feed.Metadata.Generated,
	}
}

// USGS GeoJSON feed response structures.

type feedResponse struct {
	Type     string `json:"type"`
	Metadata struct {
		Generated int64  `json:"generated"`
		Title     string `json:"title"`
		Count     int    `json:"count"`
	} `json:"metadata"`
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			Mag   *float64 `json:"mag"`
			Place *string  `json:"place"`
			Time  int64    `json:"time"`
			URL   string   `json:"url"`
		} `json:"properties"`
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}
