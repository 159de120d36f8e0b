package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// DefaultGatewayTimeout bounds a single verify call when no timeout is configured.
const DefaultGatewayTimeout = 12 * time.Second

// ReconcilePaymentResult is the order's payment state after reconciliation.
type ReconcilePaymentResult struct {
	OrderNumber   string
	Status        order.Status
	PaymentStatus order.PaymentStatus
	// GatewayStatus is empty when the gateway was not asked, e.g. the payment
	// was already settled.
	GatewayStatus payment.GatewayStatus
	Changed       bool
}

func resultOf(o *order.Order, gatewayStatus payment.GatewayStatus, changed bool) ReconcilePaymentResult {
	return ReconcilePaymentResult{
		OrderNumber:   o.Number(),
		Status:        o.Status(),
		PaymentStatus: o.PaymentStatus(),
		GatewayStatus: gatewayStatus,
		Changed:       changed,
	}
}

// ReconcilePaymentCommandHandler aligns an order's payment with the gateway.
// Webhook deliveries, customer "check status" calls and the sweep all end here.
//
// The gateway is called outside any transaction; the outcome is then applied
// under the order's row lock, where the PAID check is repeated. Two deliveries
// of the same webhook therefore record payment_confirmed exactly once.
//
// Example:
//
//	cmd, _ := NewReconcilePaymentCommand(payment.Event{OrderNumber: "ORD-1001", Source: payment.SourcePoll})
//	res, err := handler.Handle(ctx, cmd)
//	if errs.IsRetryable(err) {
//	    // gateway down, nothing changed
//	}
type ReconcilePaymentCommandHandler struct {
	uowFactory   OrderUoWFactory
	gateway      ports.PaymentGateway
	orchestrator services.OrderOrchestrator
	timeout      time.Duration
}

func NewReconcilePaymentCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
	timeout time.Duration,
) ReconcilePaymentCommandHandler {
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	return ReconcilePaymentCommandHandler{
		uowFactory:   uowFactory,
		gateway:      gateway,
		orchestrator: services.NewOrderOrchestrator(),
		timeout:      timeout,
	}
}

// Handle re-verifies the order's payment and applies the gateway's answer.
//
// Returns:
//   - ObjectNotFoundError for an unknown order, an amount mismatch or an
//     order the gateway does not know
//   - TerminalStateError for a cancelled order
//   - GatewayUnavailableError when verify fails or times out; state is untouched
func (h ReconcilePaymentCommandHandler) Handle(ctx context.Context, cmd ReconcilePaymentCommand) (ReconcilePaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReconcilePaymentResult{}, err
	}

	snapshot, err := h.load(ctx, cmd.OrderNumber())
	if err != nil {
		return ReconcilePaymentResult{}, err
	}

	if cmd.ReportedAmount() != 0 && cmd.ReportedAmount() != snapshot.TotalAmount() {
		return ReconcilePaymentResult{}, errs.NewObjectNotFoundErrorWithCause("payment", cmd.OrderNumber(),
			fmt.Errorf("reported amount %d does not match order total", cmd.ReportedAmount()))
	}
	if snapshot.PaymentStatus() == order.PaymentPaid {
		return resultOf(snapshot, "", false), nil
	}
	if snapshot.Status() == order.Cancelled {
		return ReconcilePaymentResult{}, errs.NewTerminalStateError("order", snapshot.Status().String())
	}

	verification, err := h.verify(ctx, snapshot)
	if err != nil {
		return ReconcilePaymentResult{}, err
	}

	return h.apply(ctx, cmd.OrderNumber(), verification)
}

// load reads the order in a short transaction so no row lock is held while
// the gateway is called.
func (h ReconcilePaymentCommandHandler) load(ctx context.Context, number string) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().GetByNumber(ctx, number)
}

func (h ReconcilePaymentCommandHandler) verify(ctx context.Context, o *order.Order) (payment.Verification, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	v, err := h.gateway.Verify(callCtx, o.Number(), o.TotalAmount())
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, errs.ErrObjectNotFound), errors.Is(err, errs.ErrGatewayUnavailable):
		return payment.Verification{}, err
	case errors.Is(err, context.DeadlineExceeded):
		return payment.Verification{}, errs.NewGatewayUnavailableErrorWithCause("verify payment", err)
	default:
		// A rejected request (bad credentials, malformed query) will not heal on retry.
		return payment.Verification{}, fmt.Errorf("verify payment: %w", err)
	}
}

// apply folds a verification into the locked order and records the
// confirmation notification when the payment became PAID.
func (h ReconcilePaymentCommandHandler) apply(
	ctx context.Context,
	number string,
	v payment.Verification,
) (ReconcilePaymentResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ReconcilePaymentResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetByNumber(ctx, number)
	if err != nil {
		return ReconcilePaymentResult{}, err
	}

	now := time.Now().UTC()
	effect, err := h.orchestrator.ApplyPaymentOutcome(o, v, now)
	if err != nil {
		return ReconcilePaymentResult{}, err
	}
	if !effect.Changed() {
		return resultOf(o, v.Status, false), nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return ReconcilePaymentResult{}, err
	}

	if effect.Notify {
		if err = recordNotification(ctx, uow.OutboxRepository(), notification.PaymentConfirmed, o, now); err != nil {
			return ReconcilePaymentResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return ReconcilePaymentResult{}, err
	}

	return resultOf(o, v.Status, true), nil
}
