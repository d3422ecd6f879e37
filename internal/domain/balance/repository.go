package balance

import (
	"context"
	"time"
)

// Repository defines the interface for daily balance persistence. One record
// exists per calendar date; Upsert must be atomic per record.
type Repository interface {
	// Get the balance for a calendar day, or a NOT_FOUND error
	GetByDate(ctx context.Context, date time.Time) (*DailyBalance, error)

	// Get balances within an inclusive calendar-day range, ascending by date
	GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]DailyBalance, error)

	// Get the most recently dated balance, or a NOT_FOUND error
	GetLatest(ctx context.Context) (*DailyBalance, error)

	// Get the most recently dated balance strictly before the given day,
	// or a NOT_FOUND error
	GetLatestBefore(ctx context.Context, date time.Time) (*DailyBalance, error)

	// Create the record for the balance's date or fully replace it
	Upsert(ctx context.Context, b *DailyBalance) (*DailyBalance, error)

	// Check whether a balance exists for a calendar day
	ExistsByDate(ctx context.Context, date time.Time) (bool, error)

	// Remove the record for a calendar day (administrative only; the
	// consolidation path never deletes)
	DeleteByDate(ctx context.Context, date time.Time) error
}
