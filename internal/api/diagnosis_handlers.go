package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/kamilpajak/automate/internal/analysis"
	"github.com/kamilpajak/automate/internal/database"
	"github.com/kamilpajak/automate/internal/logging"
	"github.com/kamilpajak/automate/internal/quota"
	"github.com/kamilpajak/automate/internal/vision"
	"github.com/kamilpajak/automate/pkg/models"
)

// handleCreateDiagnosis analyzes an uploaded image and stores the result.
// Users over their monthly quota get a basic-mode report built without
// calling the vision provider.
func (s *Server) handleCreateDiagnosis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.FromContext(ctx)

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "image is empty")
		return
	}

	vehicle, err := models.ParseVehicle(r.FormValue("year"), r.FormValue("make"), r.FormValue("model"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	skip := false
	if err := s.usageChecker.Allow(ctx, user.ID); err != nil {
		if !quota.IsLimitExceeded(err) {
			log.WithError(err).Error("failed to check usage")
			writeError(w, http.StatusInternalServerError, "failed to check usage")
			return
		}
		log.WithField("user_id", user.ID).Info(err.Error())
		skip = true
	}

	d := analysis.Run(ctx, analysis.Params{
		Labeler: s.labeler,
		Image: vision.Image{
			Filename: header.Filename,
			Data:     data,
			MimeType: vision.DetectMimeType(header.Filename),
		},
		Description:  r.FormValue("damage_description"),
		Vehicle:      vehicle,
		SkipLabeling: skip,
		Timeout:      s.labelTimeout,
		Logger:       log,
	})

	stored, err := s.store.CreateDiagnosis(ctx, database.NewCreateDiagnosisParams(user.ID, d))
	if err != nil {
		log.WithError(err).Error("failed to store diagnosis")
		writeError(w, http.StatusInternalServerError, "failed to store diagnosis")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"diagnosis":      toResponse(stored),
		"quota_exceeded": skip,
	})
}

// handleListDiagnoses returns the caller's diagnoses, newest first.
func (s *Server) handleListDiagnoses(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	var severity *string
	if raw := r.URL.Query().Get("severity"); raw != "" {
		sev, err := models.ParseSeverity(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid severity")
			return
		}
		str := string(sev)
		severity = &str
	}

	diagnoses, err := s.store.ListUserDiagnoses(r.Context(), database.ListUserDiagnosesParams{
		UserID:   user.ID,
		Severity: severity,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list diagnoses")
		return
	}

	total, err := s.store.CountUserDiagnoses(r.Context(), user.ID, severity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count diagnoses")
		return
	}

	items := make([]diagnosisResponse, 0, len(diagnoses))
	for i := range diagnoses {
		items = append(items, toResponse(&diagnoses[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"diagnoses": items,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// handleGetDiagnosis returns a single diagnosis.
func (s *Server) handleGetDiagnosis(w http.ResponseWriter, r *http.Request) {
	d, ok := s.requireOwnDiagnosis(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

// handleDeleteDiagnosis removes a diagnosis.
func (s *Server) handleDeleteDiagnosis(w http.ResponseWriter, r *http.Request) {
	d, ok := s.requireOwnDiagnosis(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteDiagnosis(r.Context(), d.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete diagnosis")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
