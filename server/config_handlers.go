package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/umputun/adscope/pkg/config"
)

// getConfigHandler returns the live config snapshot
func (s *Server) getConfigHandler(w http.ResponseWriter, r *http.Request) {
	RenderJSON(w, r, http.StatusOK, s.config.Snapshot())
}

// updateConfigHandler validates and applies a candidate config. The
// response always carries the structured accept/reject outcome with the
// per-field classification of what applied live and what needs a restart.
func (s *Server) updateConfigHandler(w http.ResponseWriter, r *http.Request) {
	var candidate config.Config
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		RenderError(w, r, fmt.Errorf("invalid config document: %w", err), http.StatusBadRequest)
		return
	}

	result := s.config.ApplyUpdate(&candidate)
	switch {
	case result.RollbackFailed:
		// persisted and in-memory config may now differ, surface loudly
		RenderJSON(w, r, http.StatusInternalServerError, result)
	case !result.Accepted:
		RenderJSON(w, r, http.StatusBadRequest, result)
	default:
		RenderJSON(w, r, http.StatusOK, result)
	}
}
