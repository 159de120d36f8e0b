package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrSubmitPaymentProofCommandIsNotConstructed = errors.New(
	"SubmitPaymentProofCommand must be created via NewSubmitPaymentProofCommand constructor",
)

// SubmitPaymentProofCommand hands in a bank transfer proof for manual review.
// Proof is a reference into blob storage, not the image itself.
type SubmitPaymentProofCommand struct { //nolint:recvcheck //using for validation
	orderNumber string
	proof       string

	guard guard.ConstructorGuard
}

func NewSubmitPaymentProofCommand(orderNumber, proof string) (SubmitPaymentProofCommand, error) {
	cmd := SubmitPaymentProofCommand{
		orderNumber: strings.TrimSpace(orderNumber),
		proof:       strings.TrimSpace(proof),
		guard:       guard.NewConstructorGuard(),
	}

	var err error
	if cmd.orderNumber == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("order number"))
	}
	if cmd.proof == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("payment proof"))
	}
	if err != nil {
		return SubmitPaymentProofCommand{}, err
	}

	return cmd, nil
}

func (c SubmitPaymentProofCommand) Validate() error {
	return c.guard.Validate(ErrSubmitPaymentProofCommandIsNotConstructed)
}

func (c SubmitPaymentProofCommand) OrderNumber() string {
	return c.orderNumber
}

func (c SubmitPaymentProofCommand) Proof() string {
	return c.proof
}
