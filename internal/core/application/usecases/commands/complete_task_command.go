package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/pkg/guard"
)

var ErrCompleteTaskCommandIsNotConstructed = errors.New(
	"CompleteTaskCommand must be created via NewCompleteTaskCommand constructor",
)

// CompleteTaskCommand closes a task with proof of delivery.
// Photo is required; signature and notes are optional.
type CompleteTaskCommand struct { //nolint:recvcheck //using for validation
	taskID   kernel.UUID
	driverID kernel.UUID
	proof    task.ProofOfDelivery

	guard guard.ConstructorGuard
}

func NewCompleteTaskCommand(taskID, driverID kernel.UUID, photo, signature, notes string) (CompleteTaskCommand, error) {
	proof, proofErr := task.NewProofOfDelivery(photo, signature, notes)
	if err := errors.Join(taskID.Validate(), driverID.Validate(), proofErr); err != nil {
		return CompleteTaskCommand{}, err
	}

	return CompleteTaskCommand{
		taskID:   taskID,
		driverID: driverID,
		proof:    proof,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteTaskCommand) Validate() error {
	return c.guard.Validate(ErrCompleteTaskCommandIsNotConstructed)
}

func (c CompleteTaskCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c CompleteTaskCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c CompleteTaskCommand) Proof() task.ProofOfDelivery {
	return c.proof
}
