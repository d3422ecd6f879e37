package transaction

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/notification"
)

// Service provides transaction-related business logic
type Service struct {
	repo      Repository
	publisher notification.Publisher
	logger    *slog.Logger
}

// NewService creates a new transaction service
func NewService(repo Repository, publisher notification.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create records a new transaction
func (s *Service) Create(ctx context.Context, req *CreateTransactionRequest) (*Transaction, error) {
	now := time.Now().UTC()
	tx := &Transaction{
		TransactionID: uuid.NewString(),
		Description:   req.Description,
		Amount:        req.Amount,
		Kind:          req.Kind,
		Date:          req.Date.UTC(),
		Category:      req.Category,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, created, notification.ChannelTransactionCreated)
	return created, nil
}

// Get retrieves a transaction by ID
func (s *Service) Get(ctx context.Context, transactionID string) (*Transaction, error) {
	return s.repo.GetByID(ctx, transactionID)
}

// List retrieves transactions within a date range, optionally filtered by kind
func (s *Service) List(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, errors.NewValidationError("start and end dates are required")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, errors.NewValidationError("end date must not be before start date")
	}
	if req.Kind != "" && !ValidKind(req.Kind) {
		return nil, errors.NewValidationError("transaction kind must be credit or debit")
	}

	txs, err := s.repo.GetByDateRange(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if req.Kind != "" {
		filtered := txs[:0]
		for _, tx := range txs {
			if tx.Kind == req.Kind {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	return &ListTransactionsResponse{
		Transactions: txs,
		TotalCount:   len(txs),
	}, nil
}

// Update replaces every mutable field of an existing transaction
func (s *Service) Update(ctx context.Context, transactionID string, req *UpdateTransactionRequest) (*Transaction, error) {
	existing, err := s.repo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	updated := &Transaction{
		TransactionID: existing.TransactionID,
		Description:   req.Description,
		Amount:        req.Amount,
		Kind:          req.Kind,
		Date:          req.Date.UTC(),
		Category:      req.Category,
		Notes:         req.Notes,
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     time.Now().UTC(),
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, saved, notification.ChannelTransactionUpdated)
	return saved, nil
}

// Delete removes a transaction
func (s *Service) Delete(ctx context.Context, transactionID string) error {
	existing, err := s.repo.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, transactionID); err != nil {
		return err
	}

	s.publish(ctx, existing, notification.ChannelTransactionDeleted)
	return nil
}

// CountByDate counts the transactions recorded on a calendar day
func (s *Service) CountByDate(ctx context.Context, date time.Time) (int, error) {
	return s.repo.CountByDate(ctx, date)
}

// publish emits a lifecycle event. Failures are logged and swallowed; the
// ledger write has already succeeded.
func (s *Service) publish(ctx context.Context, tx *Transaction, channel string) {
	event := notification.TransactionEvent{
		TransactionID: tx.TransactionID,
		Description:   tx.Description,
		Amount:        tx.Amount,
		Kind:          string(tx.Kind),
		Date:          tx.DateKey(),
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event, channel); err != nil {
		s.logger.Error("failed to publish transaction event",
			"channel", channel,
			"transactionId", tx.TransactionID,
			"error", err)
	}
}
