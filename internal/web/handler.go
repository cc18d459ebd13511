// Package web serves the local dashboard: an upload page and a streaming
// analysis endpoint.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/kamilpajak/automate/internal/logging"
	"github.com/kamilpajak/automate/internal/vision"
)

//go:embed static
var staticFiles embed.FS

// DefaultMaxUploadBytes bounds image uploads when Config leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// Config configures the dashboard handler.
type Config struct {
	Labeler        vision.Labeler // nil runs every analysis in basic mode
	LabelTimeout   time.Duration
	MaxUploadBytes int64
}

// Handler serves the web dashboard and API endpoints.
type Handler struct {
	mux            *http.ServeMux
	handler        http.Handler
	labeler        vision.Labeler
	labelTimeout   time.Duration
	maxUploadBytes int64
}

// NewHandler creates a new web handler with all routes registered.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		mux:            http.NewServeMux(),
		labeler:        cfg.Labeler,
		labelTimeout:   cfg.LabelTimeout,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = DefaultMaxUploadBytes
	}

	staticFS, _ := fs.Sub(staticFiles, "static")
	h.mux.Handle("GET /", http.FileServer(http.FS(staticFS)))
	h.mux.HandleFunc("POST /api/analyze", h.handleAnalyze)
	h.handler = logging.Middleware(h.mux)

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
