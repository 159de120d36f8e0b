package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/notification"
)

// Notifier hands a notification to the external messaging service.
// Delivery is at-least-once; consumers deduplicate by message id.
type Notifier interface {
	Notify(ctx context.Context, message *notification.Message) error
}
