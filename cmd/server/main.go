// Package main provides the AutoMate API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamilpajak/automate/internal/api"
	"github.com/kamilpajak/automate/internal/auth"
	"github.com/kamilpajak/automate/internal/config"
	"github.com/kamilpajak/automate/internal/database"
	"github.com/kamilpajak/automate/internal/logging"
	"github.com/kamilpajak/automate/internal/vision"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		configFile  = flag.String("config", "", "YAML config file (overrides $"+config.ConfigFileEnv+")")
		port        = flag.String("port", "", "Server port (overrides PORT)")
		migrateOnly = flag.Bool("migrate", false, "Run migrations and exit")
	)
	flag.Parse()

	cfg, err := config.LoadWith(config.Options{ConfigFile: *configFile})
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		log.Fatalf("Invalid logging configuration: %v", err)
	}
	log.WithField("config", cfg.String()).Debug("configuration loaded")

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// Run migrations
	log.Info("Running database migrations...")
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Info("Migrations complete")

	if *migrateOnly {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.AuthDomain == "" {
		log.Fatal("AUTH_DOMAIN is required (e.g., https://automate.eu.auth0.com)")
	}
	authVerifier, err := auth.NewVerifier(ctx, auth.Config{
		Domain:   cfg.AuthDomain,
		Audience: cfg.AuthAudience,
	})
	if err != nil {
		log.Fatalf("Failed to create auth verifier: %v", err)
	}

	labeler, err := vision.New(cfg.Vision())
	switch {
	case errors.Is(err, vision.ErrUnavailable):
		log.WithError(err).Warn("no vision provider configured, diagnoses will use basic mode")
		labeler = nil
	case err != nil:
		log.Fatalf("Failed to create vision provider: %v", err)
	default:
		log.WithField("provider", labeler.Source()).Info("vision provider ready")
	}

	server := api.NewServer(api.Config{
		Store:          db,
		AuthVerifier:   authVerifier,
		Labeler:        labeler,
		MonthlyLimit:   cfg.MonthlyLimit,
		LabelTimeout:   cfg.LabelTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	if cfg.RetentionDays > 0 {
		go pruneDiagnoses(ctx, db, cfg.RetentionDays)
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LabelTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server stopped")
}

// pruneDiagnoses deletes expired diagnoses once at startup and then daily.
func pruneDiagnoses(ctx context.Context, db *database.DB, days int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		cutoff := time.Now().AddDate(0, 0, -days)
		n, err := db.DeleteOldDiagnoses(ctx, cutoff)
		if err != nil && ctx.Err() == nil {
			log.WithError(err).Warn("failed to prune old diagnoses")
		} else if n > 0 {
			log.WithFields(log.Fields{"deleted": n, "cutoff": cutoff.Format(time.DateOnly)}).Info("pruned old diagnoses")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
