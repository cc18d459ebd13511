package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/kamilpajak/automate/internal/analysis"
	"github.com/kamilpajak/automate/internal/logging"
	"github.com/kamilpajak/automate/internal/vision"
	"github.com/kamilpajak/automate/pkg/models"
)

// handleAnalyze takes a multipart upload and streams the pipeline's progress
// events, ending with a "done" event that carries the diagnosis.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		http.Error(w, "image is empty or unreadable", http.StatusBadRequest)
		return
	}

	vehicle, err := models.ParseVehicle(r.FormValue("year"), r.FormValue("make"), r.FormValue("model"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emitter := NewSSEEmitter(w)
	if emitter == nil {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	analysis.Run(r.Context(), analysis.Params{
		Labeler: h.labeler,
		Image: vision.Image{
			Filename: header.Filename,
			Data:     data,
			MimeType: vision.DetectMimeType(header.Filename),
		},
		Description: r.FormValue("damage_description"),
		Vehicle:     vehicle,
		Timeout:     h.labelTimeout,
		Emitter:     emitter,
		Logger:      logging.FromContext(r.Context()),
	})
}
