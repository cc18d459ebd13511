package api

import (
	"net/http"

	"github.com/kamilpajak/automate/internal/analysis"
	"github.com/kamilpajak/automate/internal/logging"
	"github.com/kamilpajak/automate/internal/vision"
	"github.com/kamilpajak/automate/pkg/models"
)

const maxAssessBodyBytes = 1 << 20

type assessRequest struct {
	Labels      []string               `json:"labels"`
	Description string                 `json:"damage_description"`
	Vehicle     *models.VehicleContext `json:"vehicle"`
}

// handleAssess runs the damage rules over caller-supplied labels. Nothing is
// stored and no vision provider is called. An empty label list is a
// successful labeling with nothing detected.
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAssessBodyBytes)

	var req assessRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := analysis.Params{
		Labeler:     vision.NewStaticLabeler(req.Labels...),
		Description: req.Description,
		Vehicle:     req.Vehicle,
		Logger:      logging.FromContext(r.Context()),
	}

	writeJSON(w, http.StatusOK, analysis.Run(r.Context(), p))
}
