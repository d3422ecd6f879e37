package balance

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/transaction"
)

func newTestTransaction(kind transaction.Kind, amount string, date time.Time) transaction.Transaction {
	return transaction.Transaction{
		TransactionID: "tx-" + amount + "-" + string(kind),
		Description:   "test movement",
		Amount:        decimal.RequireFromString(amount),
		Kind:          kind,
		Date:          date,
	}
}

func TestConsolidate(t *testing.T) {
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("computes totals and closing balance", func(t *testing.T) {
		txs := []transaction.Transaction{
			newTestTransaction(transaction.Credit, "1000", day),
			newTestTransaction(transaction.Credit, "500", day),
			newTestTransaction(transaction.Debit, "200", day),
		}

		agg := Consolidate(day, decimal.NewFromInt(100), txs)

		assert.True(t, agg.OpeningBalance.Equal(decimal.NewFromInt(100)))
		assert.True(t, agg.TotalCredits.Equal(decimal.NewFromInt(1500)))
		assert.True(t, agg.TotalDebits.Equal(decimal.NewFromInt(200)))
		// 100 + 1500 - 200
		assert.True(t, agg.ClosingBalance.Equal(decimal.NewFromInt(1400)))
		assert.Equal(t, 2, agg.CreditTransactionCount)
		assert.Equal(t, 1, agg.DebitTransactionCount)
		assert.Equal(t, 3, agg.TotalTransactionCount)
		assert.False(t, agg.LastUpdated.IsZero())

		require.NoError(t, agg.Validate())
	})

	t.Run("empty day yields zero totals and carries the opening balance", func(t *testing.T) {
		opening := decimal.RequireFromString("42.55")

		agg := Consolidate(day, opening, nil)

		assert.True(t, agg.TotalCredits.IsZero())
		assert.True(t, agg.TotalDebits.IsZero())
		assert.True(t, agg.ClosingBalance.Equal(opening))
		assert.Equal(t, 0, agg.TotalTransactionCount)
		require.NoError(t, agg.Validate())
	})

	t.Run("result does not depend on transaction order", func(t *testing.T) {
		txs := []transaction.Transaction{
			newTestTransaction(transaction.Credit, "10.10", day),
			newTestTransaction(transaction.Debit, "3.33", day),
			newTestTransaction(transaction.Credit, "7.77", day),
			newTestTransaction(transaction.Debit, "0.01", day),
			newTestTransaction(transaction.Credit, "250", day),
		}

		want := Consolidate(day, decimal.Zero, txs)

		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 10; i++ {
			shuffled := make([]transaction.Transaction, len(txs))
			copy(shuffled, txs)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})

			got := Consolidate(day, decimal.Zero, shuffled)
			assert.True(t, got.TotalCredits.Equal(want.TotalCredits))
			assert.True(t, got.TotalDebits.Equal(want.TotalDebits))
			assert.True(t, got.ClosingBalance.Equal(want.ClosingBalance))
			assert.Equal(t, want.TotalTransactionCount, got.TotalTransactionCount)
		}
	})

	t.Run("normalizes the date to UTC midnight", func(t *testing.T) {
		afternoon := time.Date(2025, 1, 15, 14, 30, 12, 0, time.UTC)

		agg := Consolidate(afternoon, decimal.Zero, nil)

		assert.Equal(t, day, agg.Date)
	})

	t.Run("negative closing balance is allowed", func(t *testing.T) {
		txs := []transaction.Transaction{
			newTestTransaction(transaction.Debit, "300", day),
		}

		agg := Consolidate(day, decimal.NewFromInt(100), txs)

		assert.True(t, agg.ClosingBalance.Equal(decimal.NewFromInt(-200)))
		require.NoError(t, agg.Validate())
	})

	t.Run("does not mutate its input", func(t *testing.T) {
		txs := []transaction.Transaction{
			newTestTransaction(transaction.Credit, "5", day),
		}
		before := txs[0]

		Consolidate(day, decimal.Zero, txs)

		assert.Equal(t, before, txs[0])
	})
}
