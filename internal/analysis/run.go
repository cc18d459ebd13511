// Package analysis runs the diagnosis pipeline: fetch labels from a vision
// provider, turn the outcome into a damage report, and report progress.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kamilpajak/automate/internal/damage"
	"github.com/kamilpajak/automate/internal/vision"
	"github.com/kamilpajak/automate/pkg/models"
	"github.com/sirupsen/logrus"
)

// DefaultLabelTimeout bounds a single provider call.
const DefaultLabelTimeout = 30 * time.Second

// Params configures an analysis run.
type Params struct {
	Labeler     vision.Labeler // nil when no provider is configured
	Image       vision.Image
	Description string
	Vehicle     *models.VehicleContext
	// SkipLabeling forces basic mode without calling the provider, e.g. when
	// the user's monthly quota is spent.
	SkipLabeling bool
	Timeout      time.Duration
	Emitter      ProgressEmitter
	Logger       logrus.FieldLogger

	// batch position, set by RunBatch
	index, total int
}

// Run executes the pipeline. It never fails: provider errors end up as a
// template or basic-mode report.
func Run(ctx context.Context, p Params) *models.Diagnosis {
	log := p.logger(ctx)

	res := fetchLabels(ctx, p)
	if res.Err == nil {
		p.emit(ProgressEvent{Type: "labels", Source: res.Source, Labels: res.Labels})
	}

	in := damage.Input{Description: p.Description, Vehicle: p.Vehicle}
	result := damage.Analyze(in, res)

	fields := logrus.Fields{
		"source": res.Source,
		"mode":   result.Mode,
		"labels": len(res.Labels),
	}
	if result.Class != damage.ClassNone {
		fields["class"] = result.Class
		log.WithFields(fields).WithError(res.Err).Warn("labeling failed, using fallback report")
		p.emit(ProgressEvent{Type: "fallback", Source: res.Source, Message: fallbackMessage(result.Class)})
	}

	d := toDiagnosis(res, in, result)
	if d.HasAssessment() {
		fields["severity"] = d.Severity
	}
	log.WithFields(fields).Info("diagnosis complete")

	p.emit(ProgressEvent{Type: "done", Source: res.Source, Diagnosis: d})
	return d
}

func fetchLabels(ctx context.Context, p Params) damage.ProviderResult {
	if p.Labeler == nil {
		return damage.Unavailable("")
	}
	source := string(p.Labeler.Source())
	if p.SkipLabeling {
		return damage.Unavailable(source)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultLabelTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p.emit(ProgressEvent{Type: "info", Source: source, Message: fmt.Sprintf("Detecting labels with %s...", source)})
	labels, err := p.Labeler.DetectLabels(ctx, p.Image)
	switch {
	case errors.Is(err, vision.ErrUnavailable):
		return damage.Unavailable(source)
	case err != nil:
		return damage.Failed(source, err)
	default:
		return damage.Detected(source, labels)
	}
}

func toDiagnosis(res damage.ProviderResult, in damage.Input, result *damage.Result) *models.Diagnosis {
	d := &models.Diagnosis{
		Report:      result.Report,
		Mode:        result.Mode,
		Source:      res.Source,
		Labels:      res.Labels,
		Vehicle:     in.Vehicle,
		Description: in.Description,
		Indicators:  []string{},
	}
	if d.Labels == nil {
		d.Labels = []string{}
	}
	if result.HasAssessment() {
		a := result.Assessment
		d.Severity = a.Severity
		d.EstimatedCost = a.Cost
		d.VehicleDetected = a.VehicleDetected
		if a.Indicators != nil {
			d.Indicators = a.Indicators
		}
	}
	return d
}

func fallbackMessage(class damage.ErrorClass) string {
	switch class {
	case damage.ClassUnavailable:
		return "no labeling provider available, using basic mode"
	case damage.ClassBilling:
		return "provider billing is not enabled"
	case damage.ClassAuth:
		return "provider rejected the API key"
	default:
		return "provider error, using basic mode"
	}
}

func (p Params) emit(ev ProgressEvent) {
	if p.Emitter == nil {
		return
	}
	ev.Index, ev.Total = p.index, p.total
	p.Emitter.Emit(ev)
}

func (p Params) logger(ctx context.Context) logrus.FieldLogger {
	if p.Logger != nil {
		return p.Logger
	}
	return logrus.WithContext(ctx)
}
