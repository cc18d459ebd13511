package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kamilpajak/automate/pkg/models"
)

// Diagnosis is a stored damage report.
type Diagnosis struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	VehicleYear     *int
	VehicleMake     *string
	VehicleModel    *string
	Description     string
	Labels          []string
	Indicators      []string
	Severity        *string
	EstimatedCost   *string
	VehicleDetected bool
	Mode            string
	Source          string
	Report          string
	CreatedAt       time.Time
}

// CreateDiagnosisParams contains parameters for storing a diagnosis.
type CreateDiagnosisParams struct {
	UserID          uuid.UUID
	VehicleYear     *int
	VehicleMake     *string
	VehicleModel    *string
	Description     string
	Labels          []string
	Indicators      []string
	Severity        *string
	EstimatedCost   *string
	VehicleDetected bool
	Mode            string
	Source          string
	Report          string
}

// NewCreateDiagnosisParams maps a pipeline result to insert parameters.
func NewCreateDiagnosisParams(userID uuid.UUID, d *models.Diagnosis) CreateDiagnosisParams {
	p := CreateDiagnosisParams{
		UserID:          userID,
		Description:     d.Description,
		Labels:          nonNil(d.Labels),
		Indicators:      nonNil(d.Indicators),
		VehicleDetected: d.VehicleDetected,
		Mode:            d.Mode,
		Source:          d.Source,
		Report:          d.Report,
	}
	if d.HasAssessment() {
		sev := string(d.Severity)
		p.Severity = &sev
		p.EstimatedCost = &d.EstimatedCost
	}
	if v := d.Vehicle; !v.IsZero() {
		if v.Year > 0 {
			p.VehicleYear = &v.Year
		}
		if v.Make != "" {
			p.VehicleMake = &v.Make
		}
		if v.Model != "" {
			p.VehicleModel = &v.Model
		}
	}
	return p
}

// ToModel converts the stored row back to the pipeline representation.
func (d *Diagnosis) ToModel() *models.Diagnosis {
	m := &models.Diagnosis{
		Report:          d.Report,
		Mode:            d.Mode,
		Source:          d.Source,
		Indicators:      nonNil(d.Indicators),
		Labels:          nonNil(d.Labels),
		Description:     d.Description,
		VehicleDetected: d.VehicleDetected,
	}
	if d.Severity != nil {
		m.Severity = models.Severity(*d.Severity)
	}
	if d.EstimatedCost != nil {
		m.EstimatedCost = *d.EstimatedCost
	}
	v := &models.VehicleContext{}
	if d.VehicleYear != nil {
		v.Year = *d.VehicleYear
	}
	if d.VehicleMake != nil {
		v.Make = *d.VehicleMake
	}
	if d.VehicleModel != nil {
		v.Model = *d.VehicleModel
	}
	if !v.IsZero() {
		m.Vehicle = v
	}
	return m
}

// ListUserDiagnosesParams contains parameters for listing diagnoses.
type ListUserDiagnosesParams struct {
	UserID   uuid.UUID
	Severity *string
	Limit    int
	Offset   int
}

// diagnosisColumns is the standard column list for diagnosis queries.
const diagnosisColumns = `id, user_id, vehicle_year, vehicle_make, vehicle_model, damage_description,
	labels, indicators, severity, estimated_cost, vehicle_detected, mode, source, report, created_at`

func scanDiagnosisInto(row pgx.Row, d *Diagnosis) error {
	return row.Scan(
		&d.ID, &d.UserID, &d.VehicleYear, &d.VehicleMake, &d.VehicleModel, &d.Description,
		&d.Labels, &d.Indicators, &d.Severity, &d.EstimatedCost, &d.VehicleDetected, &d.Mode, &d.Source, &d.Report, &d.CreatedAt,
	)
}

// scanDiagnosis returns nil, nil when no row matched.
func scanDiagnosis(row pgx.Row) (*Diagnosis, error) {
	var d Diagnosis
	err := scanDiagnosisInto(row, &d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDiagnosis stores a new diagnosis.
func (db *DB) CreateDiagnosis(ctx context.Context, params CreateDiagnosisParams) (*Diagnosis, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO diagnoses (user_id, vehicle_year, vehicle_make, vehicle_model, damage_description,
		                        labels, indicators, severity, estimated_cost, vehicle_detected, mode, source, report)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+diagnosisColumns,
		params.UserID, params.VehicleYear, params.VehicleMake, params.VehicleModel, params.Description,
		nonNil(params.Labels), nonNil(params.Indicators), params.Severity, params.EstimatedCost,
		params.VehicleDetected, params.Mode, params.Source, params.Report,
	)
	return scanDiagnosis(row)
}

// GetDiagnosisByID retrieves a diagnosis by ID.
func (db *DB) GetDiagnosisByID(ctx context.Context, id uuid.UUID) (*Diagnosis, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses WHERE id = $1`,
		id,
	)
	return scanDiagnosis(row)
}

// ListUserDiagnoses returns a user's diagnoses, newest first.
func (db *DB) ListUserDiagnoses(ctx context.Context, params ListUserDiagnosesParams) ([]Diagnosis, error) {
	if params.Limit <= 0 {
		params.Limit = 50
	}

	var rows pgx.Rows
	var err error

	if params.Severity != nil {
		rows, err = db.pool.Query(ctx,
			`SELECT `+diagnosisColumns+` FROM diagnoses
			 WHERE user_id = $1 AND severity = $2
			 ORDER BY created_at DESC
			 LIMIT $3 OFFSET $4`,
			params.UserID, *params.Severity, params.Limit, params.Offset,
		)
	} else {
		rows, err = db.pool.Query(ctx,
			`SELECT `+diagnosisColumns+` FROM diagnoses
			 WHERE user_id = $1
			 ORDER BY created_at DESC
			 LIMIT $2 OFFSET $3`,
			params.UserID, params.Limit, params.Offset,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diagnoses []Diagnosis
	for rows.Next() {
		var d Diagnosis
		if err := scanDiagnosisInto(rows, &d); err != nil {
			return nil, err
		}
		diagnoses = append(diagnoses, d)
	}
	return diagnoses, rows.Err()
}

// CountUserDiagnoses returns the number of diagnoses for a user, optionally
// restricted to one severity.
func (db *DB) CountUserDiagnoses(ctx context.Context, userID uuid.UUID, severity *string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM diagnoses
		 WHERE user_id = $1 AND ($2::text IS NULL OR severity = $2)`,
		userID, severity,
	).Scan(&count)
	return count, err
}

// CountUserDiagnosesSince returns the number of diagnoses a user created since a given time.
func (db *DB) CountUserDiagnosesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM diagnoses WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	return count, err
}

// DeleteDiagnosis deletes a diagnosis by ID.
func (db *DB) DeleteDiagnosis(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM diagnoses WHERE id = $1`,
		id,
	)
	return err
}

// DeleteOldDiagnoses deletes diagnoses created before olderThan.
func (db *DB) DeleteOldDiagnoses(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM diagnoses WHERE created_at < $1`,
		olderThan,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
