package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/transaction"
)

// Consolidate computes the daily aggregate for one calendar day from scratch.
//
// All totals and counts start at zero; the day's transactions are folded in
// and the closing balance derived as opening + credits - debits. The fold is
// commutative, so no ordering is required of txs. Transactions with an
// unrecognized kind are impossible for persisted records and are skipped.
//
// The function is pure: it never touches a store and never mutates its inputs.
func Consolidate(date time.Time, openingBalance decimal.Decimal, txs []transaction.Transaction) DailyBalance {
	agg := DailyBalance{
		Date:           NormalizeDate(date),
		OpeningBalance: openingBalance,
		TotalCredits:   decimal.Zero,
		TotalDebits:    decimal.Zero,
	}

	for i := range txs {
		switch txs[i].Kind {
		case transaction.Credit:
			agg.TotalCredits = agg.TotalCredits.Add(txs[i].Amount)
			agg.CreditTransactionCount++
		case transaction.Debit:
			agg.TotalDebits = agg.TotalDebits.Add(txs[i].Amount)
			agg.DebitTransactionCount++
		}
	}

	agg.TotalTransactionCount = agg.CreditTransactionCount + agg.DebitTransactionCount
	agg.ClosingBalance = agg.OpeningBalance.Add(agg.TotalCredits).Sub(agg.TotalDebits)
	agg.LastUpdated = time.Now().UTC()

	return agg
}
