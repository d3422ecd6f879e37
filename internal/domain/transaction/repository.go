package transaction

import (
	"context"
	"time"
)

// Repository defines the interface for transaction data operations
type Repository interface {
	// Create a new transaction
	Create(ctx context.Context, tx *Transaction) (*Transaction, error)

	// Get a transaction by ID
	GetByID(ctx context.Context, transactionID string) (*Transaction, error)

	// Get all transactions whose date falls on the given calendar day
	GetByDate(ctx context.Context, date time.Time) ([]Transaction, error)

	// Get transactions within an inclusive calendar-day range
	GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]Transaction, error)

	// Update an existing transaction
	Update(ctx context.Context, tx *Transaction) (*Transaction, error)

	// Delete a transaction
	Delete(ctx context.Context, transactionID string) error

	// Count transactions on the given calendar day
	CountByDate(ctx context.Context, date time.Time) (int, error)
}
