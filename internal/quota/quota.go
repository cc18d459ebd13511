// Package quota enforces the monthly per-user diagnosis limit. Users over the
// limit still get a report, built without calling the labeling provider.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kamilpajak/automate/internal/database"
)

// Unlimited marks a limit that is never reached.
const Unlimited = -1

// DefaultMonthlyLimit mirrors the labeling provider's free tier.
const DefaultMonthlyLimit = 1000

// UsageDB defines the database operations needed by Checker.
type UsageDB interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*database.User, error)
	CountUserDiagnosesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

// Checker reports usage and decides whether a user may call the provider.
type Checker struct {
	db           UsageDB
	defaultLimit int
	now          func() time.Time
}

// NewChecker creates a checker. defaultLimit applies to users without an
// override; Unlimited disables the quota.
func NewChecker(db UsageDB, defaultLimit int) *Checker {
	return &Checker{db: db, defaultLimit: defaultLimit, now: time.Now}
}

// Stats contains current usage information for a user.
type Stats struct {
	UserID        uuid.UUID `json:"-"`
	UsedThisMonth int       `json:"used_this_month"`
	Limit         int       `json:"limit"`
	Remaining     int       `json:"remaining"`
	ResetDate     time.Time `json:"reset_date"`
}

// Unlimited reports whether the user has no cap.
func (s *Stats) Unlimited() bool {
	return s.Limit == Unlimited
}

// Stats returns current usage statistics for a user.
func (c *Checker) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	user, err := c.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found: %s", userID)
	}

	now := c.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	count, err := c.db.CountUserDiagnosesSince(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}

	limit := c.defaultLimit
	if user.MonthlyLimit != nil {
		limit = *user.MonthlyLimit
	}

	remaining := limit - count
	if limit == Unlimited {
		remaining = Unlimited
	} else if remaining < 0 {
		remaining = 0
	}

	return &Stats{
		UserID:        userID,
		UsedThisMonth: count,
		Limit:         limit,
		Remaining:     remaining,
		ResetDate:     monthStart.AddDate(0, 1, 0),
	}, nil
}

// Allow returns nil when the user may run another provider-backed diagnosis
// and a *LimitExceededError when the monthly limit is spent.
func (c *Checker) Allow(ctx context.Context, userID uuid.UUID) error {
	stats, err := c.Stats(ctx, userID)
	if err != nil {
		return err
	}
	if stats.Unlimited() || stats.Remaining > 0 {
		return nil
	}
	return &LimitExceededError{
		UserID:    userID,
		Limit:     stats.Limit,
		Used:      stats.UsedThisMonth,
		ResetDate: stats.ResetDate,
	}
}

// LimitExceededError is returned when a user exceeds their monthly limit.
type LimitExceededError struct {
	UserID    uuid.UUID
	Limit     int
	Used      int
	ResetDate time.Time
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf(
		"usage limit exceeded: %d/%d diagnoses used this month (resets: %s)",
		e.Used, e.Limit, e.ResetDate.Format("2006-01-02"),
	)
}

// IsLimitExceeded checks if an error is, or wraps, a LimitExceededError.
func IsLimitExceeded(err error) bool {
	var target *LimitExceededError
	return errors.As(err, &target)
}
