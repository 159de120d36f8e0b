package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrReviewPaymentCommandIsNotConstructed = errors.New(
	"ReviewPaymentCommand must be created via NewReviewPaymentCommand constructor",
)

// ReviewPaymentCommand is an admin decision on a submitted transfer proof.
// Reference is the bank reference recorded on approval; it defaults to the
// proof reference when empty.
type ReviewPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	approve   bool
	reference string

	guard guard.ConstructorGuard
}

func NewReviewPaymentCommand(orderID kernel.UUID, approve bool, reference string) (ReviewPaymentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ReviewPaymentCommand{}, err
	}

	return ReviewPaymentCommand{
		orderID:   orderID,
		approve:   approve,
		reference: strings.TrimSpace(reference),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ReviewPaymentCommand) Validate() error {
	return c.guard.Validate(ErrReviewPaymentCommandIsNotConstructed)
}

func (c ReviewPaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ReviewPaymentCommand) Approve() bool {
	return c.approve
}

func (c ReviewPaymentCommand) Reference() string {
	return c.reference
}
