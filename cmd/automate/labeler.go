package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/kamilpajak/automate/internal/config"
	"github.com/kamilpajak/automate/internal/vision"
)

// newLabeler picks the label source for a run. Supplied labels win over any
// configured provider. A provider without credentials yields a nil labeler,
// which means basic mode.
func newLabeler(cfg *config.Config, provider, model string, labels []string, stderr io.Writer) (vision.Labeler, error) {
	if len(labels) > 0 {
		return vision.NewStaticLabeler(labels...), nil
	}

	vc := cfg.Vision()
	if provider != "" {
		vc.Provider = provider
	}
	if model != "" {
		vc.Model = model
	}

	l, err := vision.New(vc)
	if errors.Is(err, vision.ErrUnavailable) {
		yellow := color.New(color.FgYellow)
		_, _ = yellow.Fprintf(stderr, "No vision provider available (%v), using basic mode\n", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create labeler: %w", err)
	}
	return l, nil
}
