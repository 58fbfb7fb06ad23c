package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quakewatch/quakewatch/internal/api/response"
	"github.com/quakewatch/quakewatch/internal/web"
)

// PageHandler serves the map page.
type PageHandler struct {
	data   web.PageData
	logger zerolog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(data web.PageData, logger zerolog.Logger) *PageHandler {
	return &PageHandler{data: data, logger: logger}
}

// MapPage handles GET / - the earthquake map.
func (h *PageHandler) MapPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		response.NotFound(w, r, "no such page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.RenderPage(w, h.data); err != nil {
		h.logger.Error().Err(err).Msg("failed to render map page")
	}
}
