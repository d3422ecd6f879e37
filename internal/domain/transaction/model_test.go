package transaction

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validTransaction() Transaction {
	return Transaction{
		TransactionID: "4f2c8a9e-0000-4000-8000-000000000001",
		Description:   "Grocery shopping",
		Amount:        decimal.RequireFromString("52.30"),
		Kind:          Debit,
		Date:          time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Category:      "food",
	}
}

func TestTransactionValidate(t *testing.T) {
	t.Run("valid transaction", func(t *testing.T) {
		tx := validTransaction()
		assert.NoError(t, tx.Validate())
	})

	t.Run("blank description", func(t *testing.T) {
		tx := validTransaction()
		tx.Description = "   "
		assert.Error(t, tx.Validate())
	})

	t.Run("description too long", func(t *testing.T) {
		tx := validTransaction()
		tx.Description = strings.Repeat("x", MaxDescriptionLength+1)
		assert.Error(t, tx.Validate())
	})

	t.Run("zero amount", func(t *testing.T) {
		tx := validTransaction()
		tx.Amount = decimal.Zero
		assert.Error(t, tx.Validate())
	})

	t.Run("negative amount", func(t *testing.T) {
		tx := validTransaction()
		tx.Amount = decimal.NewFromInt(-5)
		assert.Error(t, tx.Validate())
	})

	t.Run("amount at the cap", func(t *testing.T) {
		tx := validTransaction()
		tx.Amount = MaxAmount
		assert.Error(t, tx.Validate())

		tx.Amount = MaxAmount.Sub(decimal.RequireFromString("0.01"))
		assert.NoError(t, tx.Validate())
	})

	t.Run("unknown kind", func(t *testing.T) {
		tx := validTransaction()
		tx.Kind = "transfer"
		assert.Error(t, tx.Validate())
	})

	t.Run("missing date", func(t *testing.T) {
		tx := validTransaction()
		tx.Date = time.Time{}
		assert.Error(t, tx.Validate())
	})

	t.Run("far future date", func(t *testing.T) {
		tx := validTransaction()
		tx.Date = time.Now().UTC().AddDate(0, 0, 2)
		assert.Error(t, tx.Validate())
	})

	t.Run("category too long", func(t *testing.T) {
		tx := validTransaction()
		tx.Category = strings.Repeat("x", MaxCategoryLength+1)
		assert.Error(t, tx.Validate())
	})

	t.Run("notes too long", func(t *testing.T) {
		tx := validTransaction()
		tx.Notes = strings.Repeat("x", MaxNotesLength+1)
		assert.Error(t, tx.Validate())
	})
}

func TestSignedAmount(t *testing.T) {
	tx := validTransaction()

	tx.Kind = Credit
	assert.True(t, tx.SignedAmount().Equal(decimal.RequireFromString("52.30")))

	tx.Kind = Debit
	assert.True(t, tx.SignedAmount().Equal(decimal.RequireFromString("-52.30")))
}

func TestDateKey(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	tx := validTransaction()
	tx.Date = time.Date(2025, 1, 15, 3, 0, 0, 0, jst) // 2025-01-14 18:00 UTC

	assert.Equal(t, "2025-01-14", tx.DateKey())
}
