package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/kamilpajak/automate/internal/config"
	"github.com/kamilpajak/automate/internal/web"
	"github.com/spf13/cobra"
)

var (
	servePort     int
	serveProvider string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web dashboard",
	RunE:  serve,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "P", 8080, "Port to listen on")
	serveCmd.Flags().StringVarP(&serveProvider, "provider", "p", "", "Vision provider (google, openai, none)")
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	labeler, err := newLabeler(cfg, serveProvider, "", nil, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", servePort)
	srv := &http.Server{
		Addr: addr,
		Handler: web.NewHandler(web.Config{
			Labeler:        labeler,
			LabelTimeout:   cfg.LabelTimeout,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on interrupt (Ctrl+C)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	go func() {
		<-quit
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "Dashboard: http://localhost:%d\n", servePort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
