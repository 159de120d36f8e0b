package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
)

// DispatchTaskCommandHandler creates an ASSIGNED driver task for an order and
// moves the order toward PROCESSING, both in one transaction.
//
// The order row is locked first, so two concurrent dispatches for the same
// order serialize and the second sees the first task and fails with Conflict.
// The partial unique index on active tasks backs this up.
type DispatchTaskCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.OrderDispatcher
}

func NewDispatchTaskCommandHandler(uowFactory UoWFactory) DispatchTaskCommandHandler {
	return DispatchTaskCommandHandler{
		uowFactory: uowFactory,
		dispatcher: services.NewOrderDispatcher(services.NewOrderOrchestrator()),
	}
}

// Handle returns the id of the new task.
//
// Returns:
//   - ObjectNotFoundError when the order does not exist
//   - ConflictError when the order already has a non-delivered task
//   - TerminalStateError when the order is cancelled
func (h DispatchTaskCommandHandler) Handle(ctx context.Context, cmd DispatchTaskCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	taskRepo := uow.TaskRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return kernel.UUID{}, err
	}

	active, err := taskRepo.GetActiveByOrder(ctx, o.ID())
	if err != nil {
		return kernel.UUID{}, err
	}

	statusBefore := o.Status()
	assigned, err := h.dispatcher.Dispatch(o, active, kernel.NewUUID(), cmd.DriverID(), cmd.ScheduledDate(), time.Now().UTC())
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = taskRepo.Add(ctx, assigned); err != nil {
		return kernel.UUID{}, err
	}

	if statusBefore != o.Status() {
		if err = orderRepo.Update(ctx, o); err != nil {
			return kernel.UUID{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	return assigned.ID(), nil
}
