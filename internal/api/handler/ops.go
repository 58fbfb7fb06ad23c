package handler

import (
	"context"
	"net/http"

	"github.com/quakewatch/quakewatch/internal/api/models"
	"github.com/quakewatch/quakewatch/internal/api/response"
)

// ReadinessChecker reports whether the service is ready to serve data.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	readiness ReadinessChecker
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, readiness ReadinessChecker) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		readiness: readiness,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: "ok",
		Details: map[string]string{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. The service is ready once
// the first fetch attempt has completed, even if it failed: stale-or-empty
// data plus an error banner is a valid serving state.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.readiness.CheckReadiness(r.Context()); err != nil {
		response.ServiceUnavailable(w, r, err.Error())
		return
	}
	response.JSON(w, r, http.StatusOK, models.Health{Status: "ok"})
}
