package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kamilpajak/automate/pkg/models"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) bool {
	switch f {
	case formatText, formatJSON, formatYAML:
		return true
	}
	return false
}

// fileResult pairs an input image with its diagnosis in batch output.
type fileResult struct {
	File      string            `json:"file" yaml:"file"`
	Diagnosis *models.Diagnosis `json:"diagnosis" yaml:"diagnosis"`
}

func writeResults(stdout, stderr io.Writer, format string, paths []string, results []*models.Diagnosis) error {
	var payload any
	if len(results) == 1 {
		payload = results[0]
	} else {
		batch := make([]fileResult, len(results))
		for i, d := range results {
			batch[i] = fileResult{File: paths[i], Diagnosis: d}
		}
		payload = batch
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case formatYAML:
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(results) == 1 {
		printDiagnosis(stderr, stdout, results[0])
		return nil
	}
	bold := color.New(color.Bold)
	for i, d := range results {
		fmt.Fprintln(stdout)
		_, _ = bold.Fprintf(stdout, "=== %s ===\n", paths[i])
		printDiagnosis(stderr, stdout, d)
	}
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, renderSummary(paths, results))
	return nil
}

// printDiagnosis writes the severity banner to stderr and the report to stdout.
func printDiagnosis(stderr, stdout io.Writer, d *models.Diagnosis) {
	fmt.Fprintln(stderr)
	dim := color.New(color.FgHiBlack)
	_, _ = dim.Fprintln(stderr, "  "+strings.Repeat("━", 50))

	if d.HasAssessment() {
		fmt.Fprint(stderr, "  Severity: ")
		_, _ = severityColor(d.Severity).Fprint(stderr, strings.ToUpper(string(d.Severity)))
		fmt.Fprintf(stderr, "  Estimated cost: %s\n", d.EstimatedCost)
		_, _ = dim.Fprintf(stderr, "  (%s mode, %s)\n", d.Mode, sourceOrNone(d.Source))
	} else {
		red := color.New(color.FgRed)
		_, _ = red.Fprintf(stderr, "  No assessment: %s rejected the request (%s)\n", sourceOrNone(d.Source), d.Mode)
	}
	fmt.Fprintln(stderr)

	fmt.Fprintln(stdout, d.Report)

	if d.Mode == models.ModeBasic {
		fmt.Fprintln(stderr)
		yellow := color.New(color.FgYellow)
		_, _ = yellow.Fprintln(stderr, "  Tip: Configure GOOGLE_VISION_API_KEY or OPENAI_API_KEY for label-based analysis.")
	}
}

func severityColor(s models.Severity) *color.Color {
	switch s {
	case models.SeverityHigh:
		return color.New(color.FgRed, color.Bold)
	case models.SeverityMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func sourceOrNone(source string) string {
	if source == "" {
		return "no provider"
	}
	return source
}

// renderSummary returns a table with one row per image and a severity tally.
func renderSummary(paths []string, results []*models.Diagnosis) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Image", "Mode", "Severity", "Estimated Cost", "Labels"})

	counts := map[models.Severity]int{}
	for i, d := range results {
		sev, cost := "-", "-"
		if d.HasAssessment() {
			sev, cost = string(d.Severity), d.EstimatedCost
			counts[d.Severity]++
		}
		t.AppendRow(table.Row{i + 1, filepath.Base(paths[i]), d.Mode, sev, cost, len(d.Labels)})
	}

	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("H:%d M:%d L:%d",
		counts[models.SeverityHigh], counts[models.SeverityMedium], counts[models.SeverityLow]), "", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: 40},
		{Number: 6, Align: text.AlignRight},
	})
	return t.Render() + "\n"
}
