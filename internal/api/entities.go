package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthhome/hearth-core/internal/entity"
)

// commandRequest is the request body for POST /entities/{id}/command.
type commandRequest struct {
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters"`
}

// handleListEntities returns all registered entities, optionally filtered
// by integration instance.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	integrationID := r.URL.Query().Get("integration_id")
	if len(integrationID) > maxQueryParamLen {
		writeBadRequest(w, "invalid integration_id")
		return
	}

	var entities []entity.Entity
	if integrationID != "" {
		entities = s.registry.ListByIntegration(integrationID)
	} else {
		entities = s.registry.List()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entities": entities,
		"count":    len(entities),
	})
}

// handleGetEntity returns a single entity by ID.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxQueryParamLen {
		writeBadRequest(w, "invalid entity ID")
		return
	}

	e, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, entity.ErrEntityNotFound) {
			writeNotFound(w, "entity not found")
			return
		}
		writeInternalError(w, "failed to get entity")
		return
	}

	writeJSON(w, http.StatusOK, e)
}

// handleEntityCommand executes a command against an entity.
//
// The command is published over MQTT and a coordinator refresh is triggered
// so clients observe the confirmed outcome rather than an optimistic guess.
func (s *Server) handleEntityCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxQueryParamLen {
		writeBadRequest(w, "invalid entity ID")
		return
	}

	if s.commander == nil {
		writeUnavailable(w, "command execution unavailable")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeBadRequest(w, "command is required")
		return
	}

	commandID, err := s.commander.Execute(r.Context(), id, req.Command, req.Parameters)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrEntityNotFound):
			writeNotFound(w, "entity not found")
		case errors.Is(err, entity.ErrCommandNotSupported):
			writeBadRequest(w, err.Error())
		case errors.Is(err, entity.ErrPublisherUnavailable):
			writeUnavailable(w, "command transport unavailable")
		default:
			writeInternalError(w, "command execution failed")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"command_id": commandID,
		"entity_id":  id,
		"command":    req.Command,
	})
}
