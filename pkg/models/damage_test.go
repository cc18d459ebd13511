package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	for raw, want := range map[string]Severity{"low": SeverityLow, " MEDIUM ": SeverityMedium, "High": SeverityHigh} {
		got, err := ParseSeverity(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSeverity("critical")
	assert.Error(t, err)
}

func TestSeverityWeight(t *testing.T) {
	assert.Greater(t, SeverityHigh.Weight(), SeverityMedium.Weight())
	assert.Greater(t, SeverityMedium.Weight(), SeverityLow.Weight())
	assert.Zero(t, Severity("").Weight())
}

func TestVehicleContextString(t *testing.T) {
	var nilVehicle *VehicleContext
	assert.Equal(t, "", nilVehicle.String())
	assert.True(t, nilVehicle.IsZero())
	assert.Equal(t, "2018 Ford", (&VehicleContext{Year: 2018, Make: "Ford"}).String())
	assert.Equal(t, "Civic", (&VehicleContext{Model: "Civic"}).String())
}

func TestParseVehicle(t *testing.T) {
	v, err := ParseVehicle("", " ", "")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParseVehicle(" 2015 ", "Honda", " Civic ")
	require.NoError(t, err)
	assert.Equal(t, &VehicleContext{Year: 2015, Make: "Honda", Model: "Civic"}, v)

	for _, bad := range []string{"abc", "1700", "3000"} {
		_, err = ParseVehicle(bad, "", "")
		assert.ErrorIs(t, err, ErrInvalidYear, bad)
	}
}

func TestDiagnosisHasAssessment(t *testing.T) {
	assert.False(t, (&Diagnosis{Mode: ModeBillingError}).HasAssessment())
	assert.True(t, (&Diagnosis{Mode: ModeFull, Severity: SeverityLow}).HasAssessment())
}
