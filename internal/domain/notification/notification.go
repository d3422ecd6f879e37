// Package notification defines the outbound event port for the ledger.
// Publication is best effort: callers decide whether a publish failure is
// fatal, and for every ledger operation it is not.
package notification

import "context"

// Channel names events are published on.
const (
	ChannelDailyBalanceConsolidated = "daily_balance_consolidated"
	ChannelTransactionCreated       = "transaction_created"
	ChannelTransactionUpdated       = "transaction_updated"
	ChannelTransactionDeleted       = "transaction_deleted"
	ChannelUserCreated              = "user_created"
)

// Publisher publishes ledger events to a named channel.
type Publisher interface {
	Publish(ctx context.Context, event any, channel string) error
}

// NopPublisher discards every event. Used when no messaging backend is
// configured (local runs, tests).
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(ctx context.Context, event any, channel string) error {
	return nil
}
