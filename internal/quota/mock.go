package quota

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kamilpajak/automate/internal/database"
)

// MockUsageDB is a mock implementation of UsageDB for testing.
type MockUsageDB struct {
	GetUserByIDFn             func(ctx context.Context, id uuid.UUID) (*database.User, error)
	CountUserDiagnosesSinceFn func(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

// GetUserByID calls the mock function.
func (m *MockUsageDB) GetUserByID(ctx context.Context, id uuid.UUID) (*database.User, error) {
	if m.GetUserByIDFn != nil {
		return m.GetUserByIDFn(ctx, id)
	}
	return &database.User{ID: id}, nil
}

// CountUserDiagnosesSince calls the mock function.
func (m *MockUsageDB) CountUserDiagnosesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	if m.CountUserDiagnosesSinceFn != nil {
		return m.CountUserDiagnosesSinceFn(ctx, userID, since)
	}
	return 0, nil
}
