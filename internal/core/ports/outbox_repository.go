package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/notification"
)

// OutboxRepository stores notifications written in the same transaction as
// the state change that caused them.
type OutboxRepository interface {
	Add(ctx context.Context, message *notification.Message) error

	// ListPending returns unpublished messages with fewer than maxAttempts
	// failed attempts, oldest first. Rows are locked and skipped by concurrent relays.
	ListPending(ctx context.Context, limit int, maxAttempts int) ([]*notification.Message, error)

	// Update persists publish bookkeeping (attempts, last error, published time).
	Update(ctx context.Context, message *notification.Message) error
}
