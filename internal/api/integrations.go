package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthhome/hearth-core/internal/integration"
)

// maxQueryParamLen limits path and query parameter length to prevent DoS
// via oversized URL params.
const maxQueryParamLen = 100

// handleListIntegrations returns status snapshots for all integration instances.
func (s *Server) handleListIntegrations(w http.ResponseWriter, _ *http.Request) {
	statuses := s.manager.List()

	writeJSON(w, http.StatusOK, map[string]any{
		"integrations": statuses,
		"count":        len(statuses),
	})
}

// handleGetIntegration returns the status of a single integration instance.
func (s *Server) handleGetIntegration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxQueryParamLen {
		writeBadRequest(w, "invalid integration ID")
		return
	}

	inst, err := s.manager.Get(id)
	if err != nil {
		if errors.Is(err, integration.ErrInstanceNotFound) {
			writeNotFound(w, "integration not found")
			return
		}
		writeInternalError(w, "failed to get integration")
		return
	}

	writeJSON(w, http.StatusOK, inst.Status())
}

// handleRefreshIntegration triggers a refresh of the instance's coordinator.
//
// A failed fetch is not an HTTP error: the coordinator records it and the
// instance turns unhealthy, which the returned snapshot reflects.
func (s *Server) handleRefreshIntegration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxQueryParamLen {
		writeBadRequest(w, "invalid integration ID")
		return
	}

	inst, err := s.manager.Get(id)
	if err != nil {
		if errors.Is(err, integration.ErrInstanceNotFound) {
			writeNotFound(w, "integration not found")
			return
		}
		writeInternalError(w, "failed to get integration")
		return
	}

	if err := s.manager.RequestRefresh(r.Context(), id); err != nil {
		s.logger.Warn("manual refresh failed", "integration", id, "error", err)
	}

	writeJSON(w, http.StatusOK, inst.Status())
}
