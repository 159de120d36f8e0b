package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/core/domain/services"
)

// Delivery is the stored proof of a completed task.
type Delivery struct {
	Proof       task.ProofOfDelivery
	DeliveredAt time.Time
	OrderStatus order.Status
	// Changed is false when the task had already been completed and the
	// stored evidence is returned unchanged.
	Changed bool
}

// CompleteTaskCommandHandler captures proof of delivery, closes the task and
// the order, and records a delivered notification, all in one transaction.
type CompleteTaskCommandHandler struct {
	uowFactory   UoWFactory
	orchestrator services.OrderOrchestrator
}

func NewCompleteTaskCommandHandler(uowFactory UoWFactory) CompleteTaskCommandHandler {
	return CompleteTaskCommandHandler{
		uowFactory:   uowFactory,
		orchestrator: services.NewOrderOrchestrator(),
	}
}

// Handle completes the task. Completing an already delivered task is a success
// returning the evidence stored by the first call.
func (h CompleteTaskCommandHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return Delivery{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Delivery{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, t, err := lockTaskWithOrder(ctx, uow, cmd.TaskID(), cmd.DriverID())
	if err != nil {
		return Delivery{}, err
	}

	now := time.Now().UTC()
	completed, err := t.Complete(cmd.Proof(), now)
	if err != nil {
		return Delivery{}, err
	}
	if !completed {
		return deliveryOf(o, t, false), nil
	}

	if _, err = h.orchestrator.ApplyTaskStatus(o, task.Delivered, now); err != nil {
		return Delivery{}, err
	}

	if err = uow.TaskRepository().Update(ctx, t); err != nil {
		return Delivery{}, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return Delivery{}, err
	}

	if err = recordNotification(ctx, uow.OutboxRepository(), notification.Delivered, o, now); err != nil {
		return Delivery{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return Delivery{}, err
	}

	return deliveryOf(o, t, true), nil
}

func deliveryOf(o *order.Order, t *task.DriverTask, changed bool) Delivery {
	d := Delivery{OrderStatus: o.Status(), Changed: changed}
	if t.Proof() != nil {
		d.Proof = *t.Proof()
	}
	if t.DeliveredAt() != nil {
		d.DeliveredAt = *t.DeliveredAt()
	}
	return d
}
