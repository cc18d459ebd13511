package damage

import (
	"slices"
	"strings"

	"github.com/kamilpajak/automate/pkg/models"
)

// Tier pairs a severity with its cost range.
type Tier struct {
	Severity models.Severity
	Cost     string
}

var (
	TierNone     = Tier{Severity: models.SeverityLow, Cost: models.CostNone}
	TierMinor    = Tier{Severity: models.SeverityMedium, Cost: models.CostMinor}
	TierModerate = Tier{Severity: models.SeverityMedium, Cost: models.CostModerate}
	TierMajor    = Tier{Severity: models.SeverityHigh, Cost: models.CostMajor}
)

func (t Tier) rank() int {
	switch t {
	case TierMajor:
		return 3
	case TierModerate:
		return 2
	case TierMinor:
		return 1
	default:
		return 0
	}
}

// stronger returns whichever tier is more severe, preferring a on ties.
func stronger(a, b Tier) Tier {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Assessment is the rule engine output for one image.
type Assessment struct {
	VehicleDetected bool
	FoundVehicle    []string
	FoundDamage     []string
	FoundParts      []string
	FoundConditions []string
	// Indicators holds label-derived indicators followed by the user-reported
	// marker when a description was given.
	Indicators []string
	Tier
}

// LabelIndicators returns the indicators derived from labels only.
func (a Assessment) LabelIndicators() []string {
	if n := len(a.Indicators); n > 0 && a.Indicators[n-1] == IndicatorUserReported {
		return a.Indicators[:n-1]
	}
	return a.Indicators
}

// Assess runs the rule chain over labels and the owner's description.
func Assess(labels LabelSet, description string) Assessment {
	a := Assessment{
		FoundVehicle:    labels.Match(Dictionary.Terms(CategoryVehicle)),
		FoundDamage:     labels.Match(Dictionary.Terms(CategoryDamage)),
		FoundParts:      labels.Match(Dictionary.Terms(CategoryPart)),
		FoundConditions: labels.Match(Dictionary.Terms(CategoryCondition)),
	}
	a.VehicleDetected = len(a.FoundVehicle) > 0

	a.Indicators = labelIndicators(labels)

	descTier := TierNone
	if hasText(description) {
		a.Indicators = append(slices.Clip(a.Indicators), IndicatorUserReported)
		descTier = ClassifyDescription(description)
	}

	a.Tier = stronger(labelTier(a.LabelIndicators()), descTier)
	return a
}

// AssessDescription classifies a description alone, as in basic mode.
func AssessDescription(description string) Assessment {
	a := Assessment{Tier: TierNone}
	if hasText(description) {
		a.Indicators = []string{IndicatorUserReported}
		a.Tier = ClassifyDescription(description)
	}
	return a
}

// ClassifyDescription scans free text for crash-class and bump-class words.
// Any other non-empty text counts as minor damage.
func ClassifyDescription(description string) Tier {
	if !hasText(description) {
		return TierNone
	}
	text := strings.ToLower(description)
	switch {
	case containsAny(text, crashWords):
		return TierMajor
	case containsAny(text, bumpWords):
		return TierModerate
	default:
		return TierMinor
	}
}

// labelTier maps label-derived indicators to a tier. Matching is exact against
// the indicator values.
func labelTier(indicators []string) Tier {
	switch {
	case len(indicators) == 0:
		return TierNone
	case intersects(indicators, highTierIndicators):
		return TierMajor
	case intersects(indicators, spreadIndicators):
		return TierModerate
	default:
		return TierMinor
	}
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func intersects(values, set []string) bool {
	for _, v := range values {
		if slices.Contains(set, v) {
			return true
		}
	}
	return false
}
