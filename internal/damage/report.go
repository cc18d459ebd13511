package damage

import (
	"fmt"
	"strings"

	"github.com/kamilpajak/automate/pkg/models"
)

// maxDisplayedLabels caps the detected-elements listing.
const maxDisplayedLabels = 10

// Section names, in rendering order.
const (
	SectionHeader          = "header"
	SectionVehicle         = "vehicle"
	SectionVerdict         = "verdict"
	SectionUserReported    = "user_reported"
	SectionDamage          = "damage"
	SectionElements        = "elements"
	SectionRecommendations = "recommendations"
	SectionSeverity        = "severity"
	SectionCost            = "cost"
	SectionFooter          = "footer"
)

// Section is one block of a rendered report.
type Section struct {
	Name string
	Body string
}

// Report is an ordered list of sections. It is never modified after FormatReport
// returns it.
type Report struct {
	Sections []Section
}

// String renders the sections separated by blank lines.
func (r *Report) String() string {
	bodies := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		bodies[i] = s.Body
	}
	return strings.Join(bodies, "\n\n")
}

// Section returns the named section, if present.
func (r *Report) Section(name string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// ReportData is everything the formatter needs for one report.
type ReportData struct {
	Mode        string
	Source      string
	Vehicle     *models.VehicleContext
	Description string
	Labels      []string // provider order, as returned
	Assessment  Assessment
}

var recommendations = map[models.Severity]string{
	models.SeverityHigh: `🚨 **Critical Recommendations**:
- DO NOT DRIVE - Vehicle may be unsafe
- Contact emergency services if needed
- Schedule immediate professional inspection
- Contact insurance company immediately
- Get multiple repair estimates
- Document all damage thoroughly`,
	models.SeverityMedium: `🔧 **Repair Recommendations**:
- Schedule professional inspection within 24-48 hours
- Get repair estimates from multiple sources
- Document all damage for insurance purposes
- Consider safety implications before driving
- Monitor for any changes in vehicle behavior`,
	models.SeverityLow: `✅ **Maintenance Recommendations**:
- Continue regular maintenance schedule
- Monitor for any changes in condition
- Keep detailed maintenance records
- Consider preventive maintenance`,
}

// Recommendations returns the fixed recommendation template for a severity.
func Recommendations(s models.Severity) string {
	if r, ok := recommendations[s]; ok {
		return r
	}
	return recommendations[models.SeverityLow]
}

// FormatReport renders an assessment. Sections always appear in the same
// order; the user-reported and elements blocks are left out when empty.
func FormatReport(d ReportData) *Report {
	basic := d.Mode == models.ModeBasic
	r := &Report{}
	add := func(name, body string) {
		r.Sections = append(r.Sections, Section{Name: name, Body: body})
	}

	if basic {
		add(SectionHeader, "🔍 **AI Car Analysis (Basic Mode)**")
	} else {
		add(SectionHeader, fmt.Sprintf("🔍 **%s Analysis**", d.Source))
	}

	if !d.Vehicle.IsZero() {
		add(SectionVehicle, fmt.Sprintf("**Vehicle:** %s", d.Vehicle))
	}

	switch {
	case basic:
		add(SectionVerdict, "✅ **Vehicle Assumed Present**: Your car image was received; automated vehicle detection is unavailable.")
	case d.Assessment.VehicleDetected:
		add(SectionVerdict, "✅ **Vehicle Detected**: This appears to be a car/vehicle image.")
	default:
		add(SectionVerdict, "⚠️ **Vehicle Not Clearly Detected**: The image may not clearly show a vehicle.")
	}

	if hasText(d.Description) {
		add(SectionUserReported, fmt.Sprintf("🚨 **User-Reported Damage**: %s", strings.TrimSpace(d.Description)))
	}

	add(SectionDamage, damageBlock(d.Assessment, basic))

	if shown := displayLabels(d.Labels); len(shown) > 0 {
		add(SectionElements, fmt.Sprintf("📋 **AI Detected Elements**: %s", strings.Join(shown, ", ")))
	}

	add(SectionRecommendations, Recommendations(d.Assessment.Severity))
	add(SectionSeverity, fmt.Sprintf("📊 **Severity Level**: %s", d.Assessment.Severity))
	add(SectionCost, fmt.Sprintf("💰 **Estimated Cost**: %s", d.Assessment.Cost))

	if basic {
		add(SectionFooter, "*Note: This is a basic analysis based on your description only. Configure an image labeling provider for enhanced AI analysis.*")
	} else {
		add(SectionFooter, fmt.Sprintf("*Analysis based on %d detected elements using %s*", countLabels(d.Labels), d.Source))
	}
	return r
}

func damageBlock(a Assessment, basic bool) string {
	if len(a.Indicators) > 0 {
		return fmt.Sprintf("🚨 **Damage Detected**: Found potential issues: %s", strings.Join(a.Indicators, ", "))
	}
	if basic {
		return "✅ **No Obvious Damage Reported**: No immediate concerns identified."
	}
	if len(a.FoundParts) == 0 {
		return "✅ **No Obvious Damage Detected**: The vehicle appears to be in good condition."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Car Parts Identified**: %s\n", strings.Join(a.FoundParts, ", "))
	if len(a.FoundConditions) > 0 {
		fmt.Fprintf(&b, "📊 **Condition**: %s\n", strings.Join(a.FoundConditions, ", "))
	}
	b.WriteString("✅ **No Obvious Damage Detected**: The identified parts appear to be in good condition.")
	return b.String()
}

// countLabels counts the non-blank labels, the same ones displayLabels lists.
func countLabels(labels []string) int {
	n := 0
	for _, l := range labels {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

// displayLabels returns up to maxDisplayedLabels non-blank labels in provider order.
func displayLabels(labels []string) []string {
	var shown []string
	for _, l := range labels {
		if len(shown) == maxDisplayedLabels {
			break
		}
		if l = strings.TrimSpace(l); l != "" {
			shown = append(shown, l)
		}
	}
	return shown
}
