package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/core/domain/services"
)

// TaskProgress is the task and order state after a driver action.
type TaskProgress struct {
	TaskStatus  task.Status
	OrderStatus order.Status
}

// AdvanceTaskCommandHandler applies a driver's forward status change and
// mirrors it onto the order. The order moving to SHIPPED records a shipped
// notification.
//
// A retried request that arrives after a newer one already advanced the task
// fails with InvalidTransition; the client treats that as "refresh".
type AdvanceTaskCommandHandler struct {
	uowFactory   UoWFactory
	orchestrator services.OrderOrchestrator
}

func NewAdvanceTaskCommandHandler(uowFactory UoWFactory) AdvanceTaskCommandHandler {
	return AdvanceTaskCommandHandler{
		uowFactory:   uowFactory,
		orchestrator: services.NewOrderOrchestrator(),
	}
}

// Handle advances the task.
//
// Returns:
//   - UnauthorizedError when the driver does not own the task
//   - InvalidTransitionError for a non-forward target or DELIVERED (use CompleteTask)
//   - TerminalStateError when the task is already delivered or the order cancelled
func (h AdvanceTaskCommandHandler) Handle(ctx context.Context, cmd AdvanceTaskCommand) (TaskProgress, error) {
	if err := cmd.Validate(); err != nil {
		return TaskProgress{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TaskProgress{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, t, err := lockTaskWithOrder(ctx, uow, cmd.TaskID(), cmd.DriverID())
	if err != nil {
		return TaskProgress{}, err
	}

	if err = t.Advance(cmd.Target()); err != nil {
		return TaskProgress{}, err
	}

	now := time.Now().UTC()
	orderChanged, err := h.orchestrator.ApplyTaskStatus(o, t.Status(), now)
	if err != nil {
		return TaskProgress{}, err
	}

	if err = uow.TaskRepository().Update(ctx, t); err != nil {
		return TaskProgress{}, err
	}

	if orderChanged {
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return TaskProgress{}, err
		}
		if o.Status() == order.Shipped {
			if err = recordNotification(ctx, uow.OutboxRepository(), notification.Shipped, o, now); err != nil {
				return TaskProgress{}, err
			}
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return TaskProgress{}, err
	}

	return TaskProgress{TaskStatus: t.Status(), OrderStatus: o.Status()}, nil
}
