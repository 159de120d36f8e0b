package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/services"
)

// ReviewPaymentCommandHandler applies an admin's approve/reject decision.
// Approval confirms the payment, moves the order to PROCESSING and records
// payment_confirmed; rejection fails the payment silently.
type ReviewPaymentCommandHandler struct {
	uowFactory   OrderUoWFactory
	orchestrator services.OrderOrchestrator
}

func NewReviewPaymentCommandHandler(uowFactory OrderUoWFactory) ReviewPaymentCommandHandler {
	return ReviewPaymentCommandHandler{
		uowFactory:   uowFactory,
		orchestrator: services.NewOrderOrchestrator(),
	}
}

// Handle returns the order's payment state after the decision.
// Repeating an approval is a no-op without a second notification.
func (h ReviewPaymentCommandHandler) Handle(ctx context.Context, cmd ReviewPaymentCommand) (ReconcilePaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReconcilePaymentResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ReconcilePaymentResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return ReconcilePaymentResult{}, err
	}

	now := time.Now().UTC()

	var effect services.PaymentEffect
	if cmd.Approve() {
		reference := cmd.Reference()
		if reference == "" {
			reference = o.PaymentProof()
		}
		effect, err = h.orchestrator.ApproveManualPayment(o, reference, now)
	} else {
		effect, err = h.orchestrator.RejectManualPayment(o)
	}
	if err != nil {
		return ReconcilePaymentResult{}, err
	}
	if !effect.Changed() {
		return resultOf(o, "", false), nil
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

	return resultOf(o, "", true), nil
}
