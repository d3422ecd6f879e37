package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
)

// Tolerance allowed when checking the closing-balance identity. Decimal
// arithmetic is exact, but stored records may have been rounded upstream.
var Tolerance = decimal.RequireFromString("0.01")

// DailyBalance is the consolidated aggregate of one calendar day of the
// ledger. Exactly one record exists per date; totals are always recomputed
// from the day's transactions, never incremented.
type DailyBalance struct {
	DailyBalanceID         string          `json:"dailyBalanceId"`
	Date                   time.Time       `json:"date"` // normalized to UTC midnight
	OpeningBalance         decimal.Decimal `json:"openingBalance"`
	TotalCredits           decimal.Decimal `json:"totalCredits"`
	TotalDebits            decimal.Decimal `json:"totalDebits"`
	ClosingBalance         decimal.Decimal `json:"closingBalance"`
	CreditTransactionCount int             `json:"creditTransactionCount"`
	DebitTransactionCount  int             `json:"debitTransactionCount"`
	TotalTransactionCount  int             `json:"totalTransactionCount"`
	LastUpdated            time.Time       `json:"lastUpdated"`
}

// NormalizeDate truncates a timestamp to its UTC calendar day
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a timestamp as the YYYY-MM-DD key its calendar day is
// stored under.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DateKey returns the balance's calendar-day key
func (b *DailyBalance) DateKey() string {
	return DateKey(b.Date)
}

// Validate checks the aggregate invariants that must hold after every
// successful consolidation.
func (b *DailyBalance) Validate() error {
	if b.Date.IsZero() {
		return errors.NewValidationError("daily balance date is required")
	}
	if b.TotalCredits.IsNegative() {
		return errors.NewValidationError("total credits must not be negative")
	}
	if b.TotalDebits.IsNegative() {
		return errors.NewValidationError("total debits must not be negative")
	}
	if b.CreditTransactionCount < 0 || b.DebitTransactionCount < 0 || b.TotalTransactionCount < 0 {
		return errors.NewValidationError("transaction counts must not be negative")
	}
	if b.TotalTransactionCount != b.CreditTransactionCount+b.DebitTransactionCount {
		return errors.NewValidationError("total transaction count must equal credit count plus debit count")
	}
	expected := b.OpeningBalance.Add(b.TotalCredits).Sub(b.TotalDebits)
	if b.ClosingBalance.Sub(expected).Abs().GreaterThan(Tolerance) {
		return errors.NewValidationError("closing balance must equal opening balance plus credits minus debits")
	}
	return nil
}

// GetDailyBalanceRequest asks for the aggregate of one calendar day
type GetDailyBalanceRequest struct {
	Date time.Time `json:"date"`
}

// ConsolidateResult is the outcome of a consolidation run
type ConsolidateResult struct {
	Balance    *DailyBalance `json:"balance"`
	WasCreated bool          `json:"wasCreated"`
}
