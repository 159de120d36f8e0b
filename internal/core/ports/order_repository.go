package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Lookups used for mutation lock the order row until the surrounding unit of
// work ends, so concurrent webhook, poll, admin and driver requests touching
// the same order are serialized.
type OrderRepository interface {
	// Add persists a new order. A duplicate order number fails with ConflictError.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get loads and locks an order by id. Returns ObjectNotFoundError if missing.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByNumber loads and locks an order by its human order number.
	GetByNumber(ctx context.Context, number string) (*order.Order, error)

	// ClaimForSweep returns up to limit orders created before now that are still
	// Pending with a Pending or Confirming payment, and stamps them as swept at now.
	// Orders never swept come first, then the least recently swept, so orders that
	// stay unresolved cannot crowd newer ones out of the batch. Rows locked by a
	// concurrent sweep are skipped.
	ClaimForSweep(ctx context.Context, now time.Time, limit int) ([]*order.Order, error)
}
