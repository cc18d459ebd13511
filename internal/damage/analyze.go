package damage

import "github.com/kamilpajak/automate/pkg/models"

// ProviderResult is the outcome of asking a labeling provider about an image:
// either labels or an error, never both.
type ProviderResult struct {
	Source string
	Labels []string
	Err    error
}

// Detected is a successful provider result.
func Detected(source string, labels []string) ProviderResult {
	return ProviderResult{Source: source, Labels: labels}
}

// Failed is a provider result carrying the provider's error.
func Failed(source string, err error) ProviderResult {
	if err == nil {
		err = ErrProviderUnavailable
	}
	return ProviderResult{Source: source, Err: err}
}

// Unavailable is the result when no provider could be used at all.
func Unavailable(source string) ProviderResult {
	return ProviderResult{Source: source, Err: ErrProviderUnavailable}
}

// Input is the per-request data supplied by the vehicle owner.
type Input struct {
	Description string
	Vehicle     *models.VehicleContext
}

// Result is the engine output: the rendered report plus the classification
// behind it.
type Result struct {
	Mode       string
	Class      ErrorClass
	Assessment Assessment
	Report     string
}

// HasAssessment is false for the billing and auth templates.
func (r *Result) HasAssessment() bool {
	return r.Mode == models.ModeFull || r.Mode == models.ModeBasic
}

// Analyze always produces a report. Provider failures are absorbed and turned
// into the matching template or a basic-mode report.
func Analyze(in Input, res ProviderResult) *Result {
	class := ClassifyError(res.Err)
	switch class {
	case ClassNone:
		a := Assess(NormalizeLabels(res.Labels), in.Description)
		return &Result{
			Mode:       models.ModeFull,
			Assessment: a,
			Report: FormatReport(ReportData{
				Mode:        models.ModeFull,
				Source:      res.Source,
				Vehicle:     in.Vehicle,
				Description: in.Description,
				Labels:      res.Labels,
				Assessment:  a,
			}).String(),
		}
	case ClassBilling:
		return &Result{Mode: models.ModeBillingError, Class: class, Report: BillingErrorReport}
	case ClassAuth:
		return &Result{Mode: models.ModeAuthError, Class: class, Report: AuthErrorReport}
	default:
		return BasicReport(in, class)
	}
}

// BasicReport renders the degraded report driven by the description only.
func BasicReport(in Input, class ErrorClass) *Result {
	a := AssessDescription(in.Description)
	a.VehicleDetected = true
	return &Result{
		Mode:       models.ModeBasic,
		Class:      class,
		Assessment: a,
		Report: FormatReport(ReportData{
			Mode:        models.ModeBasic,
			Vehicle:     in.Vehicle,
			Description: in.Description,
			Assessment:  a,
		}).String(),
	}
}
