package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Severity represents the severity tier of a damage assessment
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Cost ranges paired with severity tiers.
const (
	CostNone     = "No immediate costs"
	CostMinor    = "$100-500"
	CostModerate = "$500-2000"
	CostMajor    = "$2000-10000"
)

// Weight returns a numeric weight for ranking (higher = more severe).
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity maps user input such as "high" or "MEDIUM" to a Severity.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	}
	return "", fmt.Errorf("unknown severity %q", raw)
}

// VehicleContext identifies the vehicle shown in an image. It is used for report
// formatting only.
type VehicleContext struct {
	Year  int    `json:"year,omitempty" yaml:"year,omitempty"`
	Make  string `json:"make,omitempty" yaml:"make,omitempty"`
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
}

// IsZero reports whether no vehicle detail is set.
func (v *VehicleContext) IsZero() bool {
	return v == nil || (v.Year == 0 && v.Make == "" && v.Model == "")
}

// String returns "year make model", skipping unknown parts.
func (v *VehicleContext) String() string {
	if v.IsZero() {
		return ""
	}
	var parts []string
	if v.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", v.Year))
	}
	if v.Make != "" {
		parts = append(parts, v.Make)
	}
	if v.Model != "" {
		parts = append(parts, v.Model)
	}
	return strings.Join(parts, " ")
}

// ErrInvalidYear is returned by ParseVehicle for a year that is not a plausible
// model year.
var ErrInvalidYear = errors.New("invalid vehicle year")

// ParseVehicle builds a VehicleContext from raw form or flag values. It returns
// nil when no detail was supplied.
func ParseVehicle(year, vehicleMake, model string) (*VehicleContext, error) {
	v := &VehicleContext{
		Make:  strings.TrimSpace(vehicleMake),
		Model: strings.TrimSpace(model),
	}
	if y := strings.TrimSpace(year); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 1886 || parsed > time.Now().Year()+1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidYear, y)
		}
		v.Year = parsed
	}
	if v.IsZero() {
		return nil, nil
	}
	return v, nil
}

// Report modes.
const (
	ModeFull         = "full"
	ModeBasic        = "basic"
	ModeBillingError = "billing_error"
	ModeAuthError    = "auth_error"
)

// Diagnosis is the outcome of analyzing one vehicle image
type Diagnosis struct {
	Report          string          `json:"report" yaml:"report"`
	Mode            string          `json:"mode" yaml:"mode"`
	Source          string          `json:"source" yaml:"source"`
	Severity        Severity        `json:"severity,omitempty" yaml:"severity,omitempty"`
	EstimatedCost   string          `json:"estimated_cost,omitempty" yaml:"estimated_cost,omitempty"`
	VehicleDetected bool            `json:"vehicle_detected" yaml:"vehicle_detected"`
	Indicators      []string        `json:"indicators" yaml:"indicators"`
	Labels          []string        `json:"labels" yaml:"labels"`
	Vehicle         *VehicleContext `json:"vehicle,omitempty" yaml:"vehicle,omitempty"`
	Description     string          `json:"damage_description,omitempty" yaml:"damage_description,omitempty"`
}

// HasAssessment returns true if the diagnosis carries a severity and cost.
// Billing and auth error responses do not.
func (d *Diagnosis) HasAssessment() bool {
	return d.Severity != ""
}
