package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Token exchange (authenticated by API key in the request body)
		r.Post("/auth/token", s.handleToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication - caller must hold a
			// valid token to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Integration endpoints
			r.Route("/integrations", func(r chi.Router) {
				r.Get("/", s.handleListIntegrations)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetIntegration)
					r.Post("/refresh", s.handleRefreshIntegration)
				})
			})

			// Entity endpoints
			r.Route("/entities", func(r chi.Router) {
				r.Get("/", s.handleListEntities)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetEntity)
					r.Get("/history", s.handleGetEntityHistory)
					r.Post("/command", s.handleEntityCommand)
				})
			})

			// System status
			r.Get("/system/status", s.handleSystemStatus)
		})

		// WebSocket upgrade sits outside the bearer group: browser
		// clients cannot set an Authorization header on the handshake,
		// so auth is the single-use ticket checked in the handler.
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// serverStarted records process start for the uptime figure in /system/status.
var serverStarted = time.Now()

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleSystemStatus returns a runtime snapshot of the core.
func (s *Server) handleSystemStatus(w http.ResponseWriter, _ *http.Request) {
	wsClients := 0
	if s.hub != nil {
		wsClients = s.hub.ClientCount()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"version":        s.version,
		"uptime_seconds": int(time.Since(serverStarted).Seconds()),
		"integrations":   s.manager.Count(),
		"entities":       s.registry.Count(),
		"ws_clients":     wsClients,
	})
}
