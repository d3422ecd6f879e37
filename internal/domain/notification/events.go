package notification

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyBalanceConsolidatedEvent is the durable record of a consolidation
// result, published after the aggregate has been persisted.
type DailyBalanceConsolidatedEvent struct {
	DailyBalanceID         string          `json:"dailyBalanceId"`
	Date                   string          `json:"date"` // YYYY-MM-DD
	OpeningBalance         decimal.Decimal `json:"openingBalance"`
	TotalCredits           decimal.Decimal `json:"totalCredits"`
	TotalDebits            decimal.Decimal `json:"totalDebits"`
	ClosingBalance         decimal.Decimal `json:"closingBalance"`
	CreditTransactionCount int             `json:"creditTransactionCount"`
	DebitTransactionCount  int             `json:"debitTransactionCount"`
	TotalTransactionCount  int             `json:"totalTransactionCount"`
	WasCreated             bool            `json:"wasCreated"`
	ConsolidatedAt         time.Time       `json:"consolidatedAt"`
}

// TransactionEvent describes a transaction lifecycle change
type TransactionEvent struct {
	TransactionID string          `json:"transactionId"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Date          string          `json:"date"` // YYYY-MM-DD
	OccurredAt    time.Time       `json:"occurredAt"`
}

// UserCreatedEvent describes a newly registered user
type UserCreatedEvent struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}
