// Package ports defines the contracts between the fulfillment core and its
// adapters: repositories, the unit of work, the payment gateway and the
// notification sink.
package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per request or job run.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// Client code must explicitly manage transaction lifecycle.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Repositories bound to the transaction started by Begin.
	OrderRepository() OrderRepository
	TaskRepository() TaskRepository
	TrackingLogRepository() TrackingLogRepository
	OutboxRepository() OutboxRepository
}
