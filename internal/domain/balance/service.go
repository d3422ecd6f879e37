package balance

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/notification"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/transaction"
)

// TransactionSource is the slice of the transaction store consolidation
// needs: the movements of one calendar day.
type TransactionSource interface {
	GetByDate(ctx context.Context, date time.Time) ([]transaction.Transaction, error)
}

// notifyTimeout bounds the best-effort publish after persistence. A slow or
// dead broker must not hold up the caller.
const notifyTimeout = 3 * time.Second

// Service orchestrates daily balance consolidation. It is the sole writer of
// DailyBalance records.
type Service struct {
	balances     Repository
	transactions TransactionSource
	publisher    notification.Publisher
	logger       *slog.Logger
	locks        *dateLock
}

// NewService creates a new consolidation service
func NewService(balances Repository, transactions TransactionSource, publisher notification.Publisher, logger *slog.Logger) *Service {
	return &Service{
		balances:     balances,
		transactions: transactions,
		publisher:    publisher,
		logger:       logger,
		locks:        newDateLock(),
	}
}

// Consolidate recomputes the daily balance for one calendar day from its
// transactions and persists the result.
//
// The opening balance is fixed when the record is first created: it carries
// forward the closing balance of the most recent prior day, or zero if the
// ledger has no earlier balance. Re-consolidating an existing date keeps its
// opening balance and recomputes everything else from scratch.
//
// The read-modify-write for a date runs under a per-date lock, so at most one
// consolidation of the same day is in flight per process; different dates
// proceed concurrently.
func (s *Service) Consolidate(ctx context.Context, date time.Time) (*DailyBalance, bool, error) {
	if date.IsZero() {
		return nil, false, errors.NewValidationError("a date is required for consolidation")
	}

	day := NormalizeDate(date)
	dateKey := DateKey(day)

	s.logger.Info("starting daily balance consolidation", "date", dateKey)

	unlock := s.locks.Lock(dateKey)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	txs, err := s.transactions.GetByDate(ctx, day)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("fetched transactions for consolidation", "date", dateKey, "count", len(txs))

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	existing, err := s.balances.GetByDate(ctx, day)
	if err != nil && !errors.IsNotFound(err) {
		return nil, false, err
	}
	wasCreated := existing == nil

	var recordID string
	var opening decimal.Decimal
	if wasCreated {
		opening, err = s.resolveOpeningBalance(ctx, day)
		if err != nil {
			return nil, false, err
		}
		recordID = uuid.NewString()
		s.logger.Info("creating daily balance", "date", dateKey, "openingBalance", opening)
	} else {
		// Opening balance is fixed at first creation and never recomputed.
		opening = existing.OpeningBalance
		recordID = existing.DailyBalanceID
		s.logger.Info("recomputing existing daily balance", "date", dateKey)
	}

	agg := Consolidate(day, opening, txs)
	agg.DailyBalanceID = recordID

	if err := agg.Validate(); err != nil {
		return nil, false, errors.NewInternalError("consolidated balance failed invariant check", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	// Once the upsert is issued it must complete or fail atomically;
	// cancellation is no longer honored.
	saved, err := s.balances.Upsert(context.WithoutCancel(ctx), &agg)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("daily balance consolidated",
		"date", dateKey,
		"totalCredits", saved.TotalCredits,
		"totalDebits", saved.TotalDebits,
		"closingBalance", saved.ClosingBalance,
		"wasCreated", wasCreated)

	s.notifyConsolidated(ctx, saved, wasCreated)

	return saved, wasCreated, nil
}

// resolveOpeningBalance carries forward the closing balance of the most
// recent day strictly before the target day, or zero for a fresh ledger.
// The strictly-before lookup keeps out-of-order consolidation from chaining
// to a later day's closing balance.
func (s *Service) resolveOpeningBalance(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	prior, err := s.balances.GetLatestBefore(ctx, day)
	if err != nil {
		if errors.IsNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return prior.ClosingBalance, nil
}

// notifyConsolidated publishes the consolidation result. The aggregate is
// already persisted; a publish failure is logged and swallowed.
func (s *Service) notifyConsolidated(ctx context.Context, b *DailyBalance, wasCreated bool) {
	event := notification.DailyBalanceConsolidatedEvent{
		DailyBalanceID:         b.DailyBalanceID,
		Date:                   b.DateKey(),
		OpeningBalance:         b.OpeningBalance,
		TotalCredits:           b.TotalCredits,
		TotalDebits:            b.TotalDebits,
		ClosingBalance:         b.ClosingBalance,
		CreditTransactionCount: b.CreditTransactionCount,
		DebitTransactionCount:  b.DebitTransactionCount,
		TotalTransactionCount:  b.TotalTransactionCount,
		WasCreated:             wasCreated,
		ConsolidatedAt:         time.Now().UTC(),
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, event, notification.ChannelDailyBalanceConsolidated); err != nil {
		s.logger.Error("failed to publish consolidation event",
			"date", b.DateKey(),
			"dailyBalanceId", b.DailyBalanceID,
			"error", err)
	}
}

// Get returns the consolidated balance for a calendar day. No computation is
// performed; a date that was never consolidated yields NOT_FOUND.
func (s *Service) Get(ctx context.Context, date time.Time) (*DailyBalance, error) {
	if date.IsZero() {
		return nil, errors.NewValidationError("a date is required")
	}
	return s.balances.GetByDate(ctx, NormalizeDate(date))
}

// Delete removes the consolidated record for a calendar day. This is an
// administrative escape hatch; the consolidation path never deletes.
func (s *Service) Delete(ctx context.Context, date time.Time) error {
	if date.IsZero() {
		return errors.NewValidationError("a date is required")
	}

	day := NormalizeDate(date)
	dateKey := DateKey(day)

	unlock := s.locks.Lock(dateKey)
	defer unlock()

	exists, err := s.balances.ExistsByDate(ctx, day)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewNotFoundError("daily balance not found")
	}

	if err := s.balances.DeleteByDate(ctx, day); err != nil {
		return err
	}

	s.logger.Info("daily balance deleted", "date", dateKey)
	return nil
}

// GetRange returns the consolidated balances within an inclusive day range
func (s *Service) GetRange(ctx context.Context, startDate, endDate time.Time) ([]DailyBalance, error) {
	if startDate.IsZero() || endDate.IsZero() {
		return nil, errors.NewValidationError("start and end dates are required")
	}
	if endDate.Before(startDate) {
		return nil, errors.NewValidationError("end date must not be before start date")
	}
	return s.balances.GetByDateRange(ctx, NormalizeDate(startDate), NormalizeDate(endDate))
}
