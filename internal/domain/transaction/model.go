package transaction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
)

// Kind classifies the direction of a cash movement
type Kind string

const (
	// Credit represents money flowing into the ledger
	Credit Kind = "credit"
	// Debit represents money flowing out of the ledger
	Debit Kind = "debit"
)

// ValidKind returns true if k is a recognized transaction kind
func ValidKind(k Kind) bool {
	return k == Credit || k == Debit
}

// Boundary limits enforced on transaction attributes.
const (
	MaxDescriptionLength = 200
	MaxCategoryLength    = 100
	MaxNotesLength       = 500
)

// MaxAmount bounds the magnitude of a single transaction.
var MaxAmount = decimal.NewFromInt(1_000_000)

// Transaction represents a single monetary movement in the cash-flow ledger.
// Amount is always positive; the direction is carried by Kind.
type Transaction struct {
	TransactionID string          `json:"transactionId"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          Kind            `json:"kind"`
	Date          time.Time       `json:"date"`
	Category      string          `json:"category,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// SignedAmount returns the amount with its sign derived from the kind:
// positive for credits, negative for debits.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Kind == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// DateKey returns the calendar-day key (YYYY-MM-DD, UTC) the transaction
// belongs to.
func (t *Transaction) DateKey() string {
	return t.Date.UTC().Format("2006-01-02")
}

// Validate checks the transaction invariants
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return errors.NewValidationError("transaction description is required")
	}
	if len(t.Description) > MaxDescriptionLength {
		return errors.NewValidationError("transaction description must be at most 200 characters")
	}
	if !t.Amount.IsPositive() {
		return errors.NewValidationError("transaction amount must be greater than zero")
	}
	if t.Amount.GreaterThanOrEqual(MaxAmount) {
		return errors.NewValidationError("transaction amount must be less than 1,000,000")
	}
	if !ValidKind(t.Kind) {
		return errors.NewValidationError("transaction kind must be credit or debit")
	}
	if t.Date.IsZero() {
		return errors.NewValidationError("transaction date is required")
	}
	if t.Date.After(time.Now().UTC().AddDate(0, 0, 1)) {
		return errors.NewValidationError("transaction date cannot be in the future")
	}
	if len(t.Category) > MaxCategoryLength {
		return errors.NewValidationError("transaction category must be at most 100 characters")
	}
	if len(t.Notes) > MaxNotesLength {
		return errors.NewValidationError("transaction notes must be at most 500 characters")
	}
	return nil
}

// CreateTransactionRequest represents the data needed to record a transaction
type CreateTransactionRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// UpdateTransactionRequest represents a request to update an existing
// transaction. Every field except the identity may change.
type UpdateTransactionRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// ListTransactionsRequest represents filtering criteria for transaction queries
type ListTransactionsRequest struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Kind      Kind      `json:"kind,omitempty"`
}

// ListTransactionsResponse represents a page of transactions
type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	TotalCount   int           `json:"totalCount"`
}
