package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrSweepPendingPaymentsCommandIsNotConstructed = errors.New(
	"SweepPendingPaymentsCommand must be created via NewSweepPendingPaymentsCommand constructor",
)

// SweepPendingPaymentsCommand triggers one reconciliation pass over orders
// still waiting for payment.
//
// Example:
//
//	cmd := NewSweepPendingPaymentsCommand()
//	report, err := handler.Handle(ctx, cmd)
//	for _, f := range report.Failures {
//	    logger.Warn("order not reconciled", "order", f.OrderNumber, "error", f.Err)
//	}
type SweepPendingPaymentsCommand struct {
	guard guard.ConstructorGuard
}

func NewSweepPendingPaymentsCommand() SweepPendingPaymentsCommand {
	return SweepPendingPaymentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *SweepPendingPaymentsCommand) Validate() error {
	return c.guard.Validate(
		ErrSweepPendingPaymentsCommandIsNotConstructed,
	)
}
