// Package config loads service configuration from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the QuakeWatch service.
type Config struct {
	// Server configuration
	Port string `env:"APP_PORT,default=8080"`
	Env  string `env:"APP_ENV,default=development"`

	// Feed configuration
	FeedURL         string        `env:"FEED_URL,default=https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL,default=5m"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT,default=30s"`

	// Map tile backdrop. Attribution must be displayed alongside the map.
	TileURL         string `env:"TILE_URL,default=https://tile.openstreetmap.org/{z}/{x}/{y}.png"`
	TileAttribution string `env:"TILE_ATTRIBUTION,default=&copy; OpenStreetMap contributors"`

	// Observability
	LogLevel     string `env:"LOG_LEVEL,default=info"`
	OTELEnabled  bool   `env:"OTEL_ENABLED,default=false"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=localhost:4317"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates it.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return errors.New("FEED_URL is required")
	}
	if c.RefreshInterval <= 0 {
		return errors.New("REFRESH_INTERVAL must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("FETCH_TIMEOUT must be positive")
	}
	if c.TileURL == "" {
		return errors.New("TILE_URL is required")
	}
	return nil
}
