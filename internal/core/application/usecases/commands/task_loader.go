package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/task"
)

// lockTaskWithOrder loads a driver's task together with its order. The order
// row is locked first and the task is re-read under that lock, so every task
// mutation on one order is serialized with dispatch and payment updates.
// The actor must own the task.
func lockTaskWithOrder(
	ctx context.Context,
	uow UoW,
	taskID kernel.UUID,
	actor kernel.UUID,
) (*order.Order, *task.DriverTask, error) {
	taskRepo := uow.TaskRepository()

	unlocked, err := taskRepo.Get(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if err = unlocked.EnsureOwnedBy(actor); err != nil {
		return nil, nil, err
	}

	o, err := uow.OrderRepository().Get(ctx, unlocked.OrderID())
	if err != nil {
		return nil, nil, err
	}

	t, err := taskRepo.Get(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	return o, t, nil
}
