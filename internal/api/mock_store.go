package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kamilpajak/automate/internal/database"
)

// MockStore is a mock implementation of Store for testing.
type MockStore struct {
	PingFn                    func(ctx context.Context) error
	GetUserByIDFn             func(ctx context.Context, id uuid.UUID) (*database.User, error)
	GetOrCreateUserFn         func(ctx context.Context, authID, email string) (*database.User, error)
	CountUserDiagnosesSinceFn func(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	CreateDiagnosisFn         func(ctx context.Context, params database.CreateDiagnosisParams) (*database.Diagnosis, error)
	GetDiagnosisByIDFn        func(ctx context.Context, id uuid.UUID) (*database.Diagnosis, error)
	ListUserDiagnosesFn       func(ctx context.Context, params database.ListUserDiagnosesParams) ([]database.Diagnosis, error)
	CountUserDiagnosesFn      func(ctx context.Context, userID uuid.UUID, severity *string) (int, error)
	DeleteDiagnosisFn         func(ctx context.Context, id uuid.UUID) error
}

// Ping calls the mock function.
func (m *MockStore) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

// GetUserByID calls the mock function.
func (m *MockStore) GetUserByID(ctx context.Context, id uuid.UUID) (*database.User, error) {
	if m.GetUserByIDFn != nil {
		return m.GetUserByIDFn(ctx, id)
	}
	return &database.User{ID: id}, nil
}

// GetOrCreateUser calls the mock function.
func (m *MockStore) GetOrCreateUser(ctx context.Context, authID, email string) (*database.User, error) {
	if m.GetOrCreateUserFn != nil {
		return m.GetOrCreateUserFn(ctx, authID, email)
	}
	return &database.User{ID: uuid.New(), AuthID: authID, Email: email}, nil
}

// CountUserDiagnosesSince calls the mock function.
func (m *MockStore) CountUserDiagnosesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	if m.CountUserDiagnosesSinceFn != nil {
		return m.CountUserDiagnosesSinceFn(ctx, userID, since)
	}
	return 0, nil
}

// CreateDiagnosis calls the mock function.
func (m *MockStore) CreateDiagnosis(ctx context.Context, params database.CreateDiagnosisParams) (*database.Diagnosis, error) {
	if m.CreateDiagnosisFn != nil {
		return m.CreateDiagnosisFn(ctx, params)
	}
	return &database.Diagnosis{ID: uuid.New(), UserID: params.UserID, CreatedAt: time.Now()}, nil
}

// GetDiagnosisByID calls the mock function.
func (m *MockStore) GetDiagnosisByID(ctx context.Context, id uuid.UUID) (*database.Diagnosis, error) {
	if m.GetDiagnosisByIDFn != nil {
		return m.GetDiagnosisByIDFn(ctx, id)
	}
	return nil, nil
}

// ListUserDiagnoses calls the mock function.
func (m *MockStore) ListUserDiagnoses(ctx context.Context, params database.ListUserDiagnosesParams) ([]database.Diagnosis, error) {
	if m.ListUserDiagnosesFn != nil {
		return m.ListUserDiagnosesFn(ctx, params)
	}
	return nil, nil
}

// CountUserDiagnoses calls the mock function.
func (m *MockStore) CountUserDiagnoses(ctx context.Context, userID uuid.UUID, severity *string) (int, error) {
	if m.CountUserDiagnosesFn != nil {
		return m.CountUserDiagnosesFn(ctx, userID, severity)
	}
	return 0, nil
}

// DeleteDiagnosis calls the mock function.
func (m *MockStore) DeleteDiagnosis(ctx context.Context, id uuid.UUID) error {
	if m.DeleteDiagnosisFn != nil {
		return m.DeleteDiagnosisFn(ctx, id)
	}
	return nil
}
