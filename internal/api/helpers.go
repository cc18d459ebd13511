package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kamilpajak/automate/internal/auth"
	"github.com/kamilpajak/automate/internal/database"
	"github.com/kamilpajak/automate/internal/logging"
	"github.com/kamilpajak/automate/pkg/models"
)

// requireUser resolves the authenticated caller to a stored user, creating
// the record on first use.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*database.User, bool) {
	claims := auth.Claims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}

	user, err := s.store.GetOrCreateUser(r.Context(), claims.Subject, claims.Email)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to resolve user")
		writeError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	return user, true
}

// requireOwnDiagnosis loads the diagnosis named by the "diagnosisID" path
// parameter and checks that it belongs to the caller. Foreign diagnoses are
// reported as missing.
func (s *Server) requireOwnDiagnosis(w http.ResponseWriter, r *http.Request) (*database.Diagnosis, bool) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return nil, false
	}

	id, err := parseDiagnosisID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid diagnosis ID")
		return nil, false
	}

	d, err := s.store.GetDiagnosisByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if d == nil || d.UserID != user.ID {
		writeError(w, http.StatusNotFound, "diagnosis not found")
		return nil, false
	}
	return d, true
}

// parseDiagnosisID parses the diagnosis ID from the path parameter.
func parseDiagnosisID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("diagnosisID"))
}

// parsePagination extracts limit and offset from query parameters with defaults.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}

// diagnosisResponse is the JSON shape of a stored diagnosis.
type diagnosisResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	*models.Diagnosis
}

func toResponse(d *database.Diagnosis) diagnosisResponse {
	return diagnosisResponse{ID: d.ID, CreatedAt: d.CreatedAt, Diagnosis: d.ToModel()}
}
