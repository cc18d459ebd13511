package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/kamilpajak/automate/pkg/models"
)

// ProgressEvent represents a single progress update during analysis.
type ProgressEvent struct {
	Type      string            `json:"type"`                // "info", "labels", "fallback", "done", "error"
	Index     int               `json:"index,omitempty"`     // 1-based position in a batch
	Total     int               `json:"total,omitempty"`     // batch size
	Message   string            `json:"message,omitempty"`   // human-readable message
	Source    string            `json:"source,omitempty"`    // labeling provider
	Labels    []string          `json:"labels,omitempty"`    // detected labels
	Diagnosis *models.Diagnosis `json:"diagnosis,omitempty"` // final result (for "done" type)
}

// ProgressEmitter receives progress events during analysis.
type ProgressEmitter interface {
	Emit(event ProgressEvent)
}

// TextEmitter formats progress events as human-readable text for CLI output.
type TextEmitter struct {
	W io.Writer
}

// Emit writes a formatted progress line to the underlying writer.
func (e *TextEmitter) Emit(ev ProgressEvent) {
	prefix := ""
	if ev.Total > 1 {
		prefix = fmt.Sprintf("[%d/%d] ", ev.Index, ev.Total)
	}
	switch ev.Type {
	case "info":
		fmt.Fprintf(e.W, "%s%s\n", prefix, ev.Message)
	case "labels":
		fmt.Fprintf(e.W, "%s%s: %d labels (%s)\n", prefix, ev.Source, len(ev.Labels), strings.Join(ev.Labels, ", "))
	case "fallback":
		fmt.Fprintf(e.W, "%sFalling back: %s\n", prefix, ev.Message)
	case "done":
		if ev.Diagnosis != nil && ev.Diagnosis.HasAssessment() {
			fmt.Fprintf(e.W, "%sSeverity %s, estimated cost %s\n", prefix, ev.Diagnosis.Severity, ev.Diagnosis.EstimatedCost)
		}
	case "error":
		fmt.Fprintf(e.W, "%sError: %s\n", prefix, ev.Message)
	}
}

// EmitterFunc adapts a function to ProgressEmitter.
type EmitterFunc func(ProgressEvent)

// Emit calls f(ev).
func (f EmitterFunc) Emit(ev ProgressEvent) {
	f(ev)
}
