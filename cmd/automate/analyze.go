package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/kamilpajak/automate/internal/analysis"
	"github.com/kamilpajak/automate/internal/config"
	"github.com/kamilpajak/automate/internal/vision"
	"github.com/kamilpajak/automate/pkg/models"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// analyzeOptions holds the analyze command's flags.
type analyzeOptions struct {
	Description  string
	Provider     string
	Model        string
	Labels       []string
	Year         int
	Make         string
	VehicleModel string
	Format       string
	Parallel     int
	Timeout      time.Duration
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>...",
	Short: "Diagnose damage in one or more vehicle photos",
	Long: `Analyze vehicle photos and print a damage report for each.

Examples:
  automate analyze door.jpg --description "keyed along the side"
  automate analyze front.jpg rear.jpg --year 2019 --make Toyota --vehicle-model Corolla
  automate analyze photo.png --labels Car,Bumper,Dent --format json
  automate analyze shots/*.jpg --provider openai --parallel 4`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.Context(), analyzeOpts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOpts.Description, "description", "d", "", "Damage description supplied by the owner")
	f.StringVarP(&analyzeOpts.Provider, "provider", "p", "", "Vision provider (google, openai, none); defaults to VISION_PROVIDER")
	f.StringVar(&analyzeOpts.Model, "provider-model", "", "Model name for the vision provider")
	f.StringSliceVar(&analyzeOpts.Labels, "labels", nil, "Use these labels instead of calling a provider")
	f.IntVar(&analyzeOpts.Year, "year", 0, "Vehicle model year")
	f.StringVar(&analyzeOpts.Make, "make", "", "Vehicle make")
	f.StringVar(&analyzeOpts.VehicleModel, "vehicle-model", "", "Vehicle model")
	f.StringVarP(&analyzeOpts.Format, "format", "f", formatText, "Output format (text, json, yaml)")
	f.IntVar(&analyzeOpts.Parallel, "parallel", 0, "Images analyzed at once (default: number of CPUs)")
	f.DurationVar(&analyzeOpts.Timeout, "timeout", 0, "Per-image provider timeout (default: LABEL_TIMEOUT)")
}

func runAnalyze(ctx context.Context, opts analyzeOptions, paths []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !validFormat(opts.Format) {
		return fmt.Errorf("unsupported format %q, use text, json or yaml", opts.Format)
	}
	if opts.Year < 0 {
		return fmt.Errorf("invalid vehicle year: %d", opts.Year)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	labeler, err := newLabeler(cfg, opts.Provider, opts.Model, opts.Labels, stderr)
	if err != nil {
		return err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cfg.LabelTimeout
	}

	vehicle := &models.VehicleContext{Year: opts.Year, Make: opts.Make, Model: opts.VehicleModel}
	if vehicle.IsZero() {
		vehicle = nil
	}

	items := make([]analysis.Params, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		items[i] = analysis.Params{
			Labeler: labeler,
			Image: vision.Image{
				Filename: filepath.Base(path),
				Data:     data,
				MimeType: vision.DetectMimeType(path),
			},
			Description: opts.Description,
			Vehicle:     vehicle,
			Timeout:     timeout,
		}
	}

	var results []*models.Diagnosis
	if len(items) == 1 {
		results = []*models.Diagnosis{runSingle(ctx, items[0], stderr)}
	} else {
		results = runMany(ctx, items, opts.Parallel, stderr)
	}

	return writeResults(stdout, stderr, opts.Format, paths, results)
}

// runSingle shows a spinner while the provider works when stderr is a
// terminal, and plain progress lines otherwise.
func runSingle(ctx context.Context, p analysis.Params, stderr io.Writer) *models.Diagnosis {
	text := &analysis.TextEmitter{W: stderr}
	if !isTerminal(stderr) {
		p.Emitter = text
		return analysis.Run(ctx, p)
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(stderr))
	s.Suffix = " Analyzing image..."
	s.Start()
	defer s.Stop()

	p.Emitter = analysis.EmitterFunc(func(ev analysis.ProgressEvent) {
		if ev.Type == "info" {
			s.Lock()
			s.Suffix = " " + ev.Message
			s.Unlock()
			return
		}
		s.Stop()
		text.Emit(ev)
	})
	return analysis.Run(ctx, p)
}

// runMany analyzes a batch, drawing a progress bar on terminals.
func runMany(ctx context.Context, items []analysis.Params, parallel int, stderr io.Writer) []*models.Diagnosis {
	if !isTerminal(stderr) {
		text := &analysis.TextEmitter{W: stderr}
		for i := range items {
			items[i].Emitter = text
		}
		return analysis.RunBatch(ctx, items, parallel, nil)
	}

	bar := progressbar.NewOptions(len(items),
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetDescription("Analyzing images"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	results := analysis.RunBatch(ctx, items, parallel, func(int, *models.Diagnosis) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	return results
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
