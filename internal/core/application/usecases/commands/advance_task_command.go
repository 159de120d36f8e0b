package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/pkg/guard"
)

var ErrAdvanceTaskCommandIsNotConstructed = errors.New(
	"AdvanceTaskCommand must be created via NewAdvanceTaskCommand constructor",
)

// AdvanceTaskCommand is a driver moving their task forward, e.g. to PICKED_UP.
type AdvanceTaskCommand struct { //nolint:recvcheck //using for validation
	taskID   kernel.UUID
	driverID kernel.UUID
	target   task.Status

	guard guard.ConstructorGuard
}

func NewAdvanceTaskCommand(taskID, driverID kernel.UUID, target task.Status) (AdvanceTaskCommand, error) {
	if err := errors.Join(taskID.Validate(), driverID.Validate(), target.Validate()); err != nil {
		return AdvanceTaskCommand{}, err
	}

	return AdvanceTaskCommand{
		taskID:   taskID,
		driverID: driverID,
		target:   target,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c AdvanceTaskCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceTaskCommandIsNotConstructed)
}

func (c AdvanceTaskCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c AdvanceTaskCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c AdvanceTaskCommand) Target() task.Status {
	return c.target
}
