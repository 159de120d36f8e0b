package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// recordNotification writes an outbox row for o inside the caller's transaction.
// The relay job publishes it after commit.
func recordNotification(
	ctx context.Context,
	outbox ports.OutboxRepository,
	kind notification.Kind,
	o *order.Order,
	at time.Time,
) error {
	payload := map[string]any{
		"order_number":   o.Number(),
		"customer_id":    o.CustomerID().String(),
		"status":         o.Status().String(),
		"payment_status": o.PaymentStatus().String(),
		"total_amount":   o.TotalAmount(),
		"recipient_name": o.Recipient().Name(),
	}
	if o.TrackingNumber() != "" {
		payload["shipping_vendor"] = o.ShippingVendor()
		payload["tracking_number"] = o.TrackingNumber()
	}

	message, err := notification.NewMessage(kernel.NewUUID(), kind, o.ID(), o.Number(), payload, at)
	if err != nil {
		return err
	}

	return outbox.Add(ctx, message)
}
