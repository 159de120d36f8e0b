package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrDispatchTaskCommandIsNotConstructed = errors.New(
	"DispatchTaskCommand must be created via NewDispatchTaskCommand constructor",
)

// DispatchTaskCommand assigns an order to a driver.
//
// Example:
//
//	cmd, _ := NewDispatchTaskCommand(orderID, driverID, nil)
//	taskID, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrConflict) {
//	    log.Println("order already out with a driver")
//	}
type DispatchTaskCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	driverID      kernel.UUID
	scheduledDate *time.Time

	guard guard.ConstructorGuard
}

func NewDispatchTaskCommand(orderID, driverID kernel.UUID, scheduledDate *time.Time) (DispatchTaskCommand, error) {
	if err := errors.Join(orderID.Validate(), driverID.Validate()); err != nil {
		return DispatchTaskCommand{}, err
	}

	return DispatchTaskCommand{
		orderID:       orderID,
		driverID:      driverID,
		scheduledDate: scheduledDate,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c DispatchTaskCommand) Validate() error {
	return c.guard.Validate(ErrDispatchTaskCommandIsNotConstructed)
}

func (c DispatchTaskCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c DispatchTaskCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c DispatchTaskCommand) ScheduledDate() *time.Time {
	return c.scheduledDate
}
