package damage

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/go-cmp/cmp"
	"github.com/kamilpajak/automate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLabels_LowercasesAndDedupes(t *testing.T) {
	s := NormalizeLabels([]string{"Car", " TIRE ", "car", "", "  "})

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("car"))
	assert.True(t, s.Has("tire"))
	assert.False(t, s.Has("Car"))
}

func TestNormalizeLabels_Nil(t *testing.T) {
	s := NormalizeLabels(nil)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Mentions("car"))
	assert.Empty(t, s.Match([]string{"car"}))
}

func TestLabelSet_MatchKeepsTermOrder(t *testing.T) {
	s := NormalizeLabels([]string{"Wheel rim", "Automotive tire"})
	got := s.Match([]string{"tire", "car", "wheel", "rim"})
	if diff := cmp.Diff([]string{"tire", "wheel", "rim"}, got); diff != "" {
		t.Errorf("Match() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssess_CarScratchTire(t *testing.T) {
	a := Assess(NormalizeLabels([]string{"Car", "Scratch", "Tire"}), "")

	assert.True(t, a.VehicleDetected)
	assert.NotEmpty(t, a.FoundVehicle)
	assert.Contains(t, a.FoundDamage, "scratch")
	if diff := cmp.Diff([]string{"scratch", "tire"}, a.FoundDamage); diff != "" {
		t.Errorf("FoundDamage mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"scratch"}, a.Indicators); diff != "" {
		t.Errorf("Indicators mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, models.SeverityMedium, a.Severity)
	assert.Equal(t, models.CostMinor, a.Cost)
}

func TestAssess_EmptyInput(t *testing.T) {
	a := Assess(NormalizeLabels(nil), "")

	assert.False(t, a.VehicleDetected)
	assert.Empty(t, a.Indicators)
	assert.Equal(t, TierNone, a.Tier)
}

func TestAssess_Tiers(t *testing.T) {
	tests := []struct {
		name       string
		labels     []string
		wantTier   Tier
		indicators []string
	}{
		{
			name:       "structural term",
			labels:     []string{"Bent"},
			wantTier:   TierMajor,
			indicators: []string{IndicatorStructural},
		},
		{
			name:       "collision with dent",
			labels:     []string{"Collision", "Dent"},
			wantTier:   TierMajor,
			indicators: []string{"dent", "collision"},
		},
		{
			name:       "impact alone stays minor",
			labels:     []string{"Impact"},
			wantTier:   TierMinor,
			indicators: []string{"impact"},
		},
		{
			name:       "three parts",
			labels:     []string{"Bumper", "Hood", "Door"},
			wantTier:   TierModerate,
			indicators: []string{IndicatorMultipleAreas},
		},
		{
			name:       "exterior combination",
			labels:     []string{"Automotive exterior", "Motor vehicle"},
			wantTier:   TierModerate,
			indicators: []string{IndicatorExterior},
		},
		{
			name:       "material wear",
			labels:     []string{"Metal", "Old"},
			wantTier:   TierMinor,
			indicators: []string{IndicatorMaterialWear, IndicatorAging},
		},
		{
			name:       "two parts only",
			labels:     []string{"Bumper", "Hood"},
			wantTier:   TierNone,
			indicators: nil,
		},
		{
			name:       "substring without exact gate",
			labels:     []string{"Scratched paint"},
			wantTier:   TierNone,
			indicators: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(NormalizeLabels(tt.labels), "")
			assert.Equal(t, tt.wantTier, a.Tier)
			if diff := cmp.Diff(tt.indicators, a.Indicators); diff != "" {
				t.Errorf("Indicators mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssess_IndicatorOrderFollowsRules(t *testing.T) {
	labels := []string{"Crushed", "Old", "Glass", "Personal luxury car", "Automotive lighting", "Mirror", "Window", "Door", "Accident", "Rust"}
	a := Assess(NormalizeLabels(labels), "rear ended")

	// "dent" is collected as a substring of "accident" once the gate opens on "rust".
	want := []string{
		"dent", "rust",
		"accident",
		IndicatorMultipleAreas,
		IndicatorExterior,
		IndicatorMaterialWear, IndicatorAging,
		IndicatorStructural,
		IndicatorUserReported,
	}
	if diff := cmp.Diff(want, a.Indicators); diff != "" {
		t.Errorf("Indicators mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, TierMajor, a.Tier)
}

func TestAssess_DescriptionMarkerIsLast(t *testing.T) {
	a := Assess(NormalizeLabels([]string{"Scratch"}), "keyed on the driver side")

	if diff := cmp.Diff([]string{"scratch", IndicatorUserReported}, a.Indicators); diff != "" {
		t.Errorf("Indicators mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"scratch"}, a.LabelIndicators()); diff != "" {
		t.Errorf("LabelIndicators mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, TierMinor, a.Tier)
}

func TestAssess_UserMarkerDoesNotRaiseLabelTier(t *testing.T) {
	// "scratch" alone is minor; the marker must not count as a second label indicator.
	a := Assess(NormalizeLabels([]string{"Car", "Scratch"}), "scuffed")

	assert.Equal(t, []string{"scratch"}, a.LabelIndicators())
	assert.Equal(t, TierMinor, a.Tier)
	assert.Empty(t, Assess(NormalizeLabels(nil), "scuffed").LabelIndicators())
}

func TestAssess_DescriptionOnly(t *testing.T) {
	a := Assess(NormalizeLabels(nil), "Small dent near the fuel cap")

	assert.False(t, a.VehicleDetected)
	assert.Equal(t, []string{IndicatorUserReported}, a.Indicators)
	assert.Equal(t, TierModerate, a.Tier)
}

func TestAssess_StrongerTierWins(t *testing.T) {
	tests := []struct {
		name        string
		labels      []string
		description string
		want        Tier
	}{
		{"label high beats text minor", []string{"Smashed"}, "looks off", TierMajor},
		{"text high beats label minor", []string{"Scratch"}, "Collision on the highway", TierMajor},
		{"text moderate beats label minor", []string{"Rust"}, "got hit in a parking lot", TierModerate},
		{"label moderate beats text minor", []string{"Bumper", "Fender", "Hood"}, "strange smell", TierModerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(NormalizeLabels(tt.labels), tt.description)
			assert.Equal(t, tt.want, a.Tier)
		})
	}
}

func TestClassifyDescription(t *testing.T) {
	tests := []struct {
		text string
		want Tier
	}{
		{"", TierNone},
		{"   ", TierNone},
		{"I had a crash yesterday", TierMajor},
		{"Car is TOTALED", TierMajor},
		{"wreck on I-95", TierMajor},
		{"small dent on the door", TierModerate},
		{"HIT a curb", TierModerate},
		{"bump in the rear", TierModerate},
		{"makes a weird noise", TierMinor},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDescription(tt.text))
		})
	}
}

func TestAssessDescription_Empty(t *testing.T) {
	a := AssessDescription("")
	assert.Empty(t, a.Indicators)
	assert.Equal(t, TierNone, a.Tier)
}

func TestRules_Order(t *testing.T) {
	var ids []string
	for _, r := range Rules() {
		ids = append(ids, r.ID)
	}
	want := []string{"direct_damage", "collision", "multiple_parts", "exterior_combination", "material_wear", "structural"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("rule order mismatch (-want +got):\n%s", diff)
	}
}

func TestRules_Individually(t *testing.T) {
	byID := map[string]Rule{}
	for _, r := range Rules() {
		byID[r.ID] = r
	}

	labels := NormalizeLabels([]string{"Metal", "Dirty", "Deformed"})
	assert.Equal(t, []string{IndicatorMaterialWear, IndicatorAging}, byID["material_wear"].Apply(labels))
	assert.Equal(t, []string{IndicatorStructural}, byID["structural"].Apply(labels))
	assert.Nil(t, byID["direct_damage"].Apply(labels))
	assert.Nil(t, byID["collision"].Apply(labels))
	assert.Nil(t, byID["multiple_parts"].Apply(labels))
	assert.Nil(t, byID["exterior_combination"].Apply(labels))
}

func TestRules_ReturnsCopy(t *testing.T) {
	r := Rules()
	r[0] = Rule{ID: "changed"}
	assert.Equal(t, "direct_damage", Rules()[0].ID)
}

func randomLabels(f *gofakeit.Faker, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = f.Noun()
	}
	return labels
}

func TestAssess_StructuralLabelAlwaysHigh(t *testing.T) {
	f := gofakeit.New(7)
	for i := 0; i < 200; i++ {
		term := structuralTerms[i%len(structuralTerms)]
		labels := append(randomLabels(f, f.Number(0, 15)), strings.ToUpper(term[:1])+term[1:])
		f.ShuffleStrings(labels)
		description := ""
		if i%2 == 0 {
			description = f.Sentence(6)
		}

		a := Assess(NormalizeLabels(labels), description)
		require.Equal(t, models.SeverityHigh, a.Severity, "labels=%v description=%q", labels, description)
		require.Equal(t, models.CostMajor, a.Cost)
	}
}

func TestAssess_CrashDescriptionNeverDowngraded(t *testing.T) {
	f := gofakeit.New(11)
	for i := 0; i < 200; i++ {
		word := "crash"
		if i%2 == 1 {
			word = "collision"
		}
		description := f.Sentence(4) + " " + word + " " + f.Sentence(3)

		a := Assess(NormalizeLabels(randomLabels(f, f.Number(0, 30))), description)
		require.Equal(t, models.SeverityHigh, a.Severity, "description=%q", description)
		require.Equal(t, TierMajor, ClassifyDescription(description))
	}
}
