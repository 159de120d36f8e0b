package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a checkout: a new order awaiting payment.
//
// Example:
//
//	recipient, _ := kernel.NewRecipient("Siti", "+62811", "Jl. Merdeka 1")
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "ORD-1001", customerID, 150_000, recipient)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	orderNumber string
	customerID  kernel.UUID
	totalAmount int64
	recipient   kernel.Recipient

	shippingVendor    string
	trackingNumber    string
	estimatedDelivery *time.Time

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a checkout command.
// Order number format and uniqueness are checked by the aggregate and the repository.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	orderNumber string,
	customerID kernel.UUID,
	totalAmount int64,
	recipient kernel.Recipient,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderID.Validate(),
		customerID.Validate(),
		recipient.Validate(),
		cmd.setOrderNumber(orderNumber),
		cmd.setTotalAmount(totalAmount),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.customerID = customerID
	cmd.recipient = recipient

	return cmd, nil
}

// WithShipment attaches carrier data known at checkout.
func (c CreateOrderCommand) WithShipment(vendor, trackingNumber string, estimatedDelivery *time.Time) CreateOrderCommand {
	c.shippingVendor = vendor
	c.trackingNumber = trackingNumber
	c.estimatedDelivery = estimatedDelivery
	return c
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) OrderNumber() string {
	return c.orderNumber
}

func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

func (c CreateOrderCommand) TotalAmount() int64 {
	return c.totalAmount
}

func (c CreateOrderCommand) Recipient() kernel.Recipient {
	return c.recipient
}

func (c CreateOrderCommand) ShippingVendor() string {
	return c.shippingVendor
}

func (c CreateOrderCommand) TrackingNumber() string {
	return c.trackingNumber
}

func (c CreateOrderCommand) EstimatedDelivery() *time.Time {
	return c.estimatedDelivery
}

func (c *CreateOrderCommand) setOrderNumber(number string) error {
	if number == "" {
		return errs.NewValueIsRequiredError("order number")
	}

	c.orderNumber = number
	return nil
}

func (c *CreateOrderCommand) setTotalAmount(amount int64) error {
	if amount <= 0 {
		return errs.NewValueIsOutOfRangeError("total amount", amount, 1, "unbounded")
	}

	c.totalAmount = amount
	return nil
}
