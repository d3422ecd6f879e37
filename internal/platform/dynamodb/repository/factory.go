package repository

import (
	"log/slog"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/balance"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/transaction"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/user"
	"github.com/hirosato/go-cashflow-ledger/internal/platform/dynamodb/client"
)

// Factory creates repository instances
type Factory struct {
	client    client.Client
	tableName string
	logger    *slog.Logger
}

// NewFactory creates a new repository factory
func NewFactory(client client.Client, tableName string, logger *slog.Logger) *Factory {
	return &Factory{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// TransactionRepository returns an implementation of the transaction.Repository interface
func (f *Factory) TransactionRepository() transaction.Repository {
	return NewDynamoDBTransactionRepository(f.client, f.tableName, f.logger)
}

// BalanceRepository returns an implementation of the balance.Repository interface
func (f *Factory) BalanceRepository() balance.Repository {
	return NewDynamoDBBalanceRepository(f.client, f.tableName, f.logger)
}

// UserRepository returns an implementation of the user.Repository interface
func (f *Factory) UserRepository() user.Repository {
	return NewDynamoDBUserRepository(f.client, f.tableName, f.logger)
}
