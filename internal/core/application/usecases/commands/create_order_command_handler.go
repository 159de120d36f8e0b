package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
)

// CreateOrderCommandHandler registers a checkout as a PENDING/PENDING order and
// queues the order_confirmed notification in the same transaction.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); errors.Is(err, errs.ErrConflict) {
//	    // order number already taken
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle creates the order. A duplicate order number fails with ConflictError.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	o, err := order.NewOrder(cmd.OrderID(), cmd.OrderNumber(), cmd.CustomerID(), cmd.TotalAmount(), cmd.Recipient(), now)
	if err != nil {
		return err
	}
	if cmd.ShippingVendor() != "" || cmd.TrackingNumber() != "" || cmd.EstimatedDelivery() != nil {
		if err = o.SetShipment(cmd.ShippingVendor(), cmd.TrackingNumber(), cmd.EstimatedDelivery()); err != nil {
			return err
		}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	if err = recordNotification(ctx, uow.OutboxRepository(), notification.OrderConfirmed, o, now); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
