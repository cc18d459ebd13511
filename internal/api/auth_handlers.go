package api

import (
	"net/http"

	"github.com/kamilpajak/automate/internal/auth"
)

// handleGetMe returns the current user's information.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"auth_id":    user.AuthID,
		"email":      user.Email,
		"name":       auth.Claims(r.Context()).Name,
		"created_at": user.CreatedAt,
	})
}

// handleGetUsage returns the caller's usage for the current month.
func (s *Server) handleGetUsage(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	stats, err := s.usageChecker.Stats(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get usage stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
