package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	// API routes
	s.router.HandleFunc("GET /api/timers", s.handleListTimers)
	s.router.HandleFunc("POST /api/timers", s.handleAppendTimer)
	s.router.HandleFunc("DELETE /api/timers/{index}", s.handleRemoveTimer)

	s.router.HandleFunc("GET /api/render", s.handleRender)
	s.router.HandleFunc("POST /api/format", s.handleFormat)

	s.router.HandleFunc("GET /api/units", s.handleUnits)

	// Health check
	s.router.HandleFunc("GET /api/health", s.handleHealth)

	// Static files (embedded frontend)
	s.router.HandleFunc("GET /{path...}", s.handleStatic)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": s.config.Version,
		"tick_ms": s.config.TickMillis,
	})
}
