package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/platemap/internal/server/response"
)

// HandleHealth handles GET /health and GET /api/v1/health (liveness).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "platemap-api",
		"version": h.app.Version(),
	})
}

// HandleReady handles GET /api/v1/ready. The server is ready once the
// catalog is loaded and holds at least one entry.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	catalog := h.platemap.Catalog()
	if catalog == nil || catalog.Len() == 0 {
		response.ServiceUnavailable(w, "Catalog not loaded")
		return
	}

	response.OK(w, map[string]any{
		"status": "ready",
		"catalog": map[string]any{
			"entries":  catalog.Len(),
			"agencies": len(catalog.Agencies()),
			"states":   len(catalog.States()),
		},
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}
