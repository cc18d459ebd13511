// Package api provides the AutoMate HTTP API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kamilpajak/automate/internal/auth"
	"github.com/kamilpajak/automate/internal/database"
	"github.com/kamilpajak/automate/internal/logging"
	"github.com/kamilpajak/automate/internal/quota"
	"github.com/kamilpajak/automate/internal/vision"
)

// DefaultMaxUploadBytes bounds multipart uploads when Config leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// Store is the persistence the API needs. *database.DB implements it.
type Store interface {
	quota.UsageDB
	Ping(ctx context.Context) error
	GetOrCreateUser(ctx context.Context, authID, email string) (*database.User, error)
	CreateDiagnosis(ctx context.Context, params database.CreateDiagnosisParams) (*database.Diagnosis, error)
	GetDiagnosisByID(ctx context.Context, id uuid.UUID) (*database.Diagnosis, error)
	ListUserDiagnoses(ctx context.Context, params database.ListUserDiagnosesParams) ([]database.Diagnosis, error)
	CountUserDiagnoses(ctx context.Context, userID uuid.UUID, severity *string) (int, error)
	DeleteDiagnosis(ctx context.Context, id uuid.UUID) error
}

var _ Store = (*database.DB)(nil)

// Server is the API server.
type Server struct {
	store          Store
	authVerifier   *auth.Verifier
	labeler        vision.Labeler
	usageChecker   *quota.Checker
	labelTimeout   time.Duration
	maxUploadBytes int64
	mux            *http.ServeMux
	handler        http.Handler
}

// Config holds API server configuration.
type Config struct {
	Store        Store
	AuthVerifier *auth.Verifier
	// Labeler is nil when no vision provider is configured; diagnoses then
	// come back in basic mode.
	Labeler        vision.Labeler
	MonthlyLimit   int
	LabelTimeout   time.Duration
	MaxUploadBytes int64
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	s := newServer(cfg)
	s.registerRoutes(auth.Middleware(s.authVerifier))
	return s
}

func newServer(cfg Config) *Server {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	s := &Server{
		store:          cfg.Store,
		authVerifier:   cfg.AuthVerifier,
		labeler:        cfg.Labeler,
		usageChecker:   quota.NewChecker(cfg.Store, cfg.MonthlyLimit),
		labelTimeout:   cfg.LabelTimeout,
		maxUploadBytes: maxUpload,
		mux:            http.NewServeMux(),
	}
	s.handler = logging.Middleware(s.mux)
	return s
}

func (s *Server) registerRoutes(authMiddleware func(http.Handler) http.Handler) {
	// Public endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/assess", s.handleAssess)

	// Protected endpoints
	s.mux.HandleFunc("GET /api/me", s.withAuth(authMiddleware, s.handleGetMe))
	s.mux.HandleFunc("GET /api/usage", s.withAuth(authMiddleware, s.handleGetUsage))
	s.mux.HandleFunc("POST /api/diagnoses", s.withAuth(authMiddleware, s.handleCreateDiagnosis))
	s.mux.HandleFunc("GET /api/diagnoses", s.withAuth(authMiddleware, s.handleListDiagnoses))
	s.mux.HandleFunc("GET /api/diagnoses/{diagnosisID}", s.withAuth(authMiddleware, s.handleGetDiagnosis))
	s.mux.HandleFunc("DELETE /api/diagnoses/{diagnosisID}", s.withAuth(authMiddleware, s.handleDeleteDiagnosis))
}

func (s *Server) withAuth(middleware func(http.Handler) http.Handler, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware(handler).ServeHTTP(w, r)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	labeler := "none"
	if s.labeler != nil {
		labeler = string(s.labeler.Source())
	}

	if err := s.store.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("health check: database unreachable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "labeler": labeler})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "labeler": labeler})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
