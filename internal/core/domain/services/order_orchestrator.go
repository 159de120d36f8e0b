package services

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/pkg/errs"
)

// PaymentEffect describes what applying a payment decision changed.
// Notify is set only when a confirmation notification must be emitted, which
// happens once per order no matter how many times the outcome is re-applied.
type PaymentEffect struct {
	PaymentChanged bool
	StatusChanged  bool
	Notify         bool
}

// Changed reports whether anything needs to be persisted.
func (e PaymentEffect) Changed() bool {
	return e.PaymentChanged || e.StatusChanged
}

// OrderOrchestrator is the only place that decides how payment outcomes and
// task progress move an Order.
//
// Every operation is idempotent and monotonic: re-applying the current target
// is a no-op, status never regresses, and a cancelled order rejects everything
// with TerminalState.
//
// Example usage:
//
//	orchestrator := services.NewOrderOrchestrator()
//	effect, err := orchestrator.ApplyPaymentOutcome(o, verification, time.Now())
//	if err != nil {
//	    return err
//	}
//	if effect.Notify {
//	    // record payment_confirmed
//	}
type OrderOrchestrator struct{}

func NewOrderOrchestrator() OrderOrchestrator {
	return OrderOrchestrator{}
}

// ApplyPaymentOutcome folds a verified gateway answer into the order.
//
// Mapping:
//   - completed: payment Paid; a Pending order moves to Paid; notify
//   - failed: payment Failed, silent
//   - expired: payment Failed and a Pending order is cancelled, silent
//   - anything else: no change
//
// Returns:
//   - zero PaymentEffect when the payment was already Paid
//   - ObjectNotFoundError when the verification is for another order number or amount
//   - TerminalStateError when the order is cancelled
func (OrderOrchestrator) ApplyPaymentOutcome(o *order.Order, v payment.Verification, now time.Time) (PaymentEffect, error) {
	if err := o.Validate(); err != nil {
		return PaymentEffect{}, err
	}
	if v.OrderNumber != o.Number() || v.Amount != o.TotalAmount() {
		return PaymentEffect{}, errs.NewObjectNotFoundErrorWithCause("payment", o.Number(),
			fmt.Errorf("gateway reported order %s amount %d, expected amount %d", v.OrderNumber, v.Amount, o.TotalAmount()))
	}
	if o.PaymentStatus() == order.PaymentPaid {
		return PaymentEffect{}, nil
	}
	if o.Status() == order.Cancelled {
		return PaymentEffect{}, errs.NewTerminalStateError("order", o.Status().String())
	}

	statusBefore := o.Status()

	switch v.Status {
	case payment.GatewayCompleted:
		changed, err := o.MarkPaid(v.Reference, v.Method, v.PaidAt(now))
		if err != nil {
			return PaymentEffect{}, err
		}
		return PaymentEffect{
			PaymentChanged: changed,
			StatusChanged:  statusBefore != o.Status(),
			Notify:         changed,
		}, nil

	case payment.GatewayFailed:
		changed, err := o.FailPayment()
		if err != nil {
			return PaymentEffect{}, err
		}
		return PaymentEffect{PaymentChanged: changed}, nil

	case payment.GatewayExpired:
		changed, err := o.FailPayment()
		if err != nil {
			return PaymentEffect{}, err
		}
		if o.Status() == order.Pending {
			if _, err = o.MoveTo(order.Cancelled); err != nil {
				return PaymentEffect{}, err
			}
		}
		return PaymentEffect{
			PaymentChanged: changed,
			StatusChanged:  statusBefore != o.Status(),
		}, nil

	case payment.GatewayPending:
		return PaymentEffect{}, nil

	default:
		return PaymentEffect{}, nil
	}
}

// ApproveManualPayment accepts a reviewed transfer proof: payment becomes Paid
// and the order moves to Processing. Approving an already paid order only
// pushes its status forward and does not notify again.
func (OrderOrchestrator) ApproveManualPayment(o *order.Order, reference string, at time.Time) (PaymentEffect, error) {
	if err := o.Validate(); err != nil {
		return PaymentEffect{}, err
	}
	if o.Status() == order.Cancelled {
		return PaymentEffect{}, errs.NewTerminalStateError("order", o.Status().String())
	}

	statusBefore := o.Status()

	paid, err := o.MarkPaid(reference, "manual_transfer", at)
	if err != nil {
		return PaymentEffect{}, err
	}

	if !o.Status().IsAtOrBeyond(order.Processing) {
		if _, err = o.MoveTo(order.Processing); err != nil {
			return PaymentEffect{}, err
		}
	}

	return PaymentEffect{
		PaymentChanged: paid,
		StatusChanged:  statusBefore != o.Status(),
		Notify:         paid,
	}, nil
}

// RejectManualPayment marks a reviewed proof as not acceptable. The customer
// is not notified and may pay again.
func (OrderOrchestrator) RejectManualPayment(o *order.Order) (PaymentEffect, error) {
	if err := o.Validate(); err != nil {
		return PaymentEffect{}, err
	}
	if o.Status() == order.Cancelled {
		return PaymentEffect{}, errs.NewTerminalStateError("order", o.Status().String())
	}

	changed, err := o.FailPayment()
	if err != nil {
		return PaymentEffect{}, err
	}
	return PaymentEffect{PaymentChanged: changed}, nil
}

// ApplyTaskStatus mirrors driver task progress onto the order.
//
// Mapping:
//   - Assigned: Processing
//   - PickedUp, InTransit: Shipped
//   - Delivered: Delivered, stamping the actual delivery time with at
//
// An order already at or beyond the mapped status is left alone and false is
// returned. Unreachable targets fail with InvalidTransition.
func (OrderOrchestrator) ApplyTaskStatus(o *order.Order, s task.Status, at time.Time) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}

	target, err := orderStatusFor(s)
	if err != nil {
		return false, err
	}

	if o.Status() == order.Cancelled {
		return false, errs.NewTerminalStateError("order", o.Status().String())
	}
	if o.Status().IsAtOrBeyond(target) {
		return false, nil
	}

	if target == order.Delivered {
		return o.MarkDelivered(at)
	}
	return o.MoveTo(target)
}

func orderStatusFor(s task.Status) (order.Status, error) {
	switch s {
	case task.Assigned:
		return order.Processing, nil
	case task.PickedUp, task.InTransit:
		return order.Shipped, nil
	case task.Delivered:
		return order.Delivered, nil
	case task.Unknown:
		return order.Unknown, s.Validate()
	default:
		return order.Unknown, errs.NewValueIsInvalidErrorWithCause("task status is invalid",
			errors.New("no order status for task status "+s.String()))
	}
}
