package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrReconcilePaymentCommandIsNotConstructed = errors.New(
	"ReconcilePaymentCommand must be created via NewReconcilePaymentCommand constructor",
)

// ReconcilePaymentCommand asks for an order's payment to be re-checked against
// the gateway. It carries the trigger, never the outcome: whatever a webhook
// claims, the handler acts only on the gateway's verify answer.
type ReconcilePaymentCommand struct { //nolint:recvcheck //using for validation
	orderNumber    string
	reportedAmount int64
	source         payment.Source

	guard guard.ConstructorGuard
}

// NewReconcilePaymentCommand builds the command from an inbound event.
// Event.Amount is optional (zero for customer polls and the sweep); when set it
// must match the order total or the handler answers NotFound.
func NewReconcilePaymentCommand(event payment.Event) (ReconcilePaymentCommand, error) {
	if event.OrderNumber == "" {
		return ReconcilePaymentCommand{}, errs.NewValueIsRequiredError("order number")
	}
	if event.Amount < 0 {
		return ReconcilePaymentCommand{}, errs.NewValueIsOutOfRangeError("amount", event.Amount, 0, "unbounded")
	}
	switch event.Source {
	case payment.SourceWebhook, payment.SourcePoll, payment.SourceSweep:
	default:
		return ReconcilePaymentCommand{}, errs.NewValueIsInvalidErrorWithCause("source",
			fmt.Errorf("%q is unknown", event.Source))
	}

	return ReconcilePaymentCommand{
		orderNumber:    event.OrderNumber,
		reportedAmount: event.Amount,
		source:         event.Source,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c ReconcilePaymentCommand) Validate() error {
	return c.guard.Validate(ErrReconcilePaymentCommandIsNotConstructed)
}

func (c ReconcilePaymentCommand) OrderNumber() string {
	return c.orderNumber
}

// ReportedAmount is the amount claimed by the caller, zero if none.
func (c ReconcilePaymentCommand) ReportedAmount() int64 {
	return c.reportedAmount
}

func (c ReconcilePaymentCommand) Source() payment.Source {
	return c.source
}
