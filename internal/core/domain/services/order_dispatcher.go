package services

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/pkg/errs"
)

// OrderDispatcher opens a delivery attempt for an order.
//
// Business rules:
//   - an order has at most one non-delivered task at a time
//   - earlier delivered tasks do not block a new attempt
//   - cancelled orders cannot be dispatched
//   - the recipient is copied into the task at dispatch time
//   - a Pending or Paid order moves to Processing
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher(services.NewOrderOrchestrator())
//	t, err := dispatcher.Dispatch(o, activeTask, kernel.NewUUID(), driverID, nil, time.Now())
//	if errors.Is(err, errs.ErrConflict) {
//	    // the order is already out with a driver
//	}
type OrderDispatcher struct {
	orchestrator OrderOrchestrator
}

func NewOrderDispatcher(orchestrator OrderOrchestrator) OrderDispatcher {
	return OrderDispatcher{orchestrator: orchestrator}
}

// Dispatch creates an Assigned task for driverID and advances the order.
//
// Parameters:
//   - o: order to deliver, mutated in place
//   - active: the order's current non-delivered task, or nil
//   - taskID, driverID: identifiers of the new task and its owner
//   - scheduledDate: optional planned delivery date
//   - now: dispatch time
//
// Returns:
//   - *task.DriverTask: the new task
//   - error: ConflictError, TerminalStateError or validation errors
func (d OrderDispatcher) Dispatch(
	o *order.Order,
	active *task.DriverTask,
	taskID kernel.UUID,
	driverID kernel.UUID,
	scheduledDate *time.Time,
	now time.Time,
) (*task.DriverTask, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if active != nil && !active.Status().IsFinal() {
		return nil, errs.NewConflictError("task", "order "+o.Number()+" already has an active task "+active.ID().String())
	}
	if o.Status() == order.Cancelled {
		return nil, errs.NewTerminalStateError("order", o.Status().String())
	}

	t, err := task.NewDriverTask(taskID, o.ID(), driverID, o.Recipient(), scheduledDate, now)
	if err != nil {
		return nil, err
	}

	if _, err = d.orchestrator.ApplyTaskStatus(o, task.Assigned, now); err != nil {
		return nil, err
	}

	return t, nil
}
