// Package api provides the HTTP API for QuakeWatch.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/quakewatch/quakewatch/internal/api/handler"
	"github.com/quakewatch/quakewatch/internal/api/middleware"
	"github.com/quakewatch/quakewatch/internal/quake"
	"github.com/quakewatch/quakewatch/internal/web"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version      string
	BuildTime    string
	Logger       zerolog.Logger
	ServiceName  string
	QuakeService *quake.Service
	PageData     web.PageData
}

// NewRouter creates a new chi router with all routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "quakewatch"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)

	eventsHandler := handler.NewEventsHandler(cfg.QuakeService)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.QuakeService)
	pageHandler := handler.NewPageHandler(cfg.PageData, cfg.Logger)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	refreshRateLimit := middleware.RateLimitByIP(middleware.RefreshRateLimit)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/earthquakes", eventsHandler.ListEvents)
			r.Get("/legend", eventsHandler.GetLegend)
			r.Get("/status", eventsHandler.GetStatus)
			r.With(middleware.RequireJSON).Put("/threshold", eventsHandler.SetThreshold)
		})

		// Each manual refresh reaches the upstream feed, so it gets its
		// own tighter limit.
		r.With(refreshRateLimit).Post("/refresh", eventsHandler.TriggerRefresh)

		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	// The map page is the catch-all root.
	r.Get("/", pageHandler.MapPage)

	return r
}
