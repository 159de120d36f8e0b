package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
)

// SweepPolicy tunes the reconciliation sweep.
type SweepPolicy struct {
	// BatchSize caps how many orders one pass looks at, least recently swept first.
	BatchSize int
	// ReminderDelay is the order age after which an unpaid order gets one payment_reminder.
	ReminderDelay time.Duration
	// ExpiryWindow is the order age after which a payment the gateway still
	// reports as pending, or has no transaction for, is treated as expired.
	// Zero disables expiry.
	ExpiryWindow time.Duration
}

// DefaultSweepPolicy mirrors the gateway's one-day QRIS validity.
func DefaultSweepPolicy() SweepPolicy {
	return SweepPolicy{
		BatchSize:     50,
		ReminderDelay: 6 * time.Hour,
		ExpiryWindow:  24 * time.Hour,
	}
}

// SweepFailure is an order the sweep could not reconcile. The sweep carries on.
type SweepFailure struct {
	OrderNumber string
	Err         error
}

// SweepReport summarizes one pass.
type SweepReport struct {
	Checked  int
	Changed  int
	Expired  int
	Reminded int
	Failures []SweepFailure
}

// SweepPendingPaymentsCommandHandler runs the poll path for every order still
// awaiting payment, expires stale ones and sends one payment reminder per order.
//
// A pass is safe to repeat over the same orders: reconciliation is idempotent
// and the reminder flag is flipped in the same transaction as the outbox row.
type SweepPendingPaymentsCommandHandler struct {
	uowFactory OrderUoWFactory
	reconciler ReconcilePaymentCommandHandler
	policy     SweepPolicy
}

func NewSweepPendingPaymentsCommandHandler(
	uowFactory OrderUoWFactory,
	reconciler ReconcilePaymentCommandHandler,
	policy SweepPolicy,
) SweepPendingPaymentsCommandHandler {
	if policy.BatchSize <= 0 {
		policy.BatchSize = DefaultSweepPolicy().BatchSize
	}
	return SweepPendingPaymentsCommandHandler{
		uowFactory: uowFactory,
		reconciler: reconciler,
		policy:     policy,
	}
}

// Handle runs one pass. Per-order problems end up in SweepReport.Failures;
// only failing to list candidates is returned as an error.
func (h SweepPendingPaymentsCommandHandler) Handle(ctx context.Context, cmd SweepPendingPaymentsCommand) (SweepReport, error) {
	if err := cmd.Validate(); err != nil {
		return SweepReport{}, err
	}

	now := time.Now().UTC()

	candidates, err := h.listCandidates(ctx, now)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{}
	for _, o := range candidates {
		if ctx.Err() != nil {
			break
		}
		report.Checked++

		if err = h.sweepOne(ctx, o, now, &report); err != nil {
			report.Failures = append(report.Failures, SweepFailure{OrderNumber: o.Number(), Err: err})
		}
	}

	return report, ctx.Err()
}

func (h SweepPendingPaymentsCommandHandler) listCandidates(ctx context.Context, now time.Time) ([]*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	candidates, err := uow.OrderRepository().ClaimForSweep(ctx, now, h.policy.BatchSize)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return candidates, nil
}

func (h SweepPendingPaymentsCommandHandler) sweepOne(
	ctx context.Context,
	o *order.Order,
	now time.Time,
	report *SweepReport,
) error {
	cmd, err := NewReconcilePaymentCommand(payment.Event{OrderNumber: o.Number(), Source: payment.SourceSweep})
	if err != nil {
		return err
	}

	res, err := h.reconciler.Handle(ctx, cmd)
	// No transaction at the gateway yet: the customer has not started paying.
	unknownToGateway := errors.Is(err, errs.ErrObjectNotFound)
	switch {
	case unknownToGateway:
		res = resultOf(o, "", false)
	case err != nil:
		return err
	}
	if res.Changed {
		report.Changed++
	}
	if res.Status != order.Pending || res.PaymentStatus == order.PaymentPaid {
		return nil
	}

	age := now.Sub(o.CreatedAt())

	// A proof under manual review is left for the admin, not expired.
	if h.policy.ExpiryWindow > 0 && age >= h.policy.ExpiryWindow &&
		(unknownToGateway || res.GatewayStatus == payment.GatewayPending) &&
		res.PaymentStatus != order.PaymentConfirming {
		expired, err := h.reconciler.apply(ctx, o.Number(), payment.Verification{
			OrderNumber: o.Number(),
			Amount:      o.TotalAmount(),
			Status:      payment.GatewayExpired,
		})
		if err != nil {
			return err
		}
		if expired.Changed {
			report.Expired++
		}
		return nil
	}

	if age >= h.policy.ReminderDelay && !o.ReminderSent() {
		reminded, err := h.remind(ctx, o.Number(), now)
		if err != nil {
			return err
		}
		if reminded {
			report.Reminded++
		}
	}

	return nil
}

// remind flips the reminder flag and records payment_reminder under the order lock.
func (h SweepPendingPaymentsCommandHandler) remind(ctx context.Context, number string, now time.Time) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetByNumber(ctx, number)
	if err != nil {
		return false, err
	}
	if o.Status() != order.Pending || o.PaymentStatus() == order.PaymentPaid {
		return false, nil
	}
	if !o.MarkReminderSent() {
		return false, nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return false, err
	}

	if err = recordNotification(ctx, uow.OutboxRepository(), notification.PaymentReminder, o, now); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	return true, nil
}
