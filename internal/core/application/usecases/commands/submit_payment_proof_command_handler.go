package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
)

// SubmitPaymentProofCommandHandler puts an order's payment under manual review
// (payment status CONFIRMING). No notification is sent; the admin review decides.
type SubmitPaymentProofCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewSubmitPaymentProofCommandHandler(uowFactory OrderUoWFactory) SubmitPaymentProofCommandHandler {
	return SubmitPaymentProofCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle stores the proof and returns the updated payment status.
// A paid payment rejects new proofs with TerminalStateError.
func (h SubmitPaymentProofCommandHandler) Handle(ctx context.Context, cmd SubmitPaymentProofCommand) (order.PaymentStatus, error) {
	if err := cmd.Validate(); err != nil {
		return order.PaymentUnknown, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.PaymentUnknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetByNumber(ctx, cmd.OrderNumber())
	if err != nil {
		return order.PaymentUnknown, err
	}

	if err = o.SubmitPaymentProof(cmd.Proof()); err != nil {
		return order.PaymentUnknown, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return order.PaymentUnknown, err
	}

	if err = uow.Commit(ctx); err != nil {
		return order.PaymentUnknown, err
	}

	return o.PaymentStatus(), nil
}
