package order

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	numberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
)

// Order is the aggregate root for a customer purchase and its store-visible
// fulfillment status. It keeps two state machines side by side: Status (what
// the customer sees) and PaymentStatus (what the gateway or the admin decided).
//
// Invariants:
//   - PaymentStatus Paid implies Status is not Pending
//   - Status only moves forward; Delivered and Cancelled are final
//   - ActualDelivery is set exactly when Status becomes Delivered
//
// Transitions are applied by the order orchestrator in the domain services
// package; the methods here only enforce the graph.
type Order struct {
	id         kernel.UUID
	number     string
	customerID kernel.UUID
	recipient  kernel.Recipient

	// totalAmount is in the smallest currency unit.
	totalAmount int64

	status        Status
	paymentStatus PaymentStatus

	paymentReference string
	paymentMethod    string
	paymentProof     string
	paidAt           *time.Time

	shippingVendor    string
	trackingNumber    string
	estimatedDelivery *time.Time
	actualDelivery    *time.Time

	reminderSent bool
	createdAt    time.Time

	isConstructed bool
}

// NewOrder creates a Pending/Pending order at checkout.
//
// Parameters:
//   - id: identifier of the order
//   - number: human order number, e.g. "ORD-1001", unique across orders
//   - customerID: the buyer
//   - totalAmount: amount due in the smallest currency unit, must be positive
//   - recipient: who the parcel goes to
//   - createdAt: checkout time, drives reminder and expiry windows
//
// Example:
//
//	recipient, _ := kernel.NewRecipient("Siti", "+62811", "Jl. Merdeka 1")
//	o, err := order.NewOrder(kernel.NewUUID(), "ORD-1001", customerID, 150_000, recipient, time.Now())
func NewOrder(
	id kernel.UUID,
	number string,
	customerID kernel.UUID,
	totalAmount int64,
	recipient kernel.Recipient,
	createdAt time.Time,
) (*Order, error) {
	order := &Order{
		status:        Pending,
		paymentStatus: PaymentPending,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setNumber(number),
		order.setCustomerID(customerID),
		order.setTotalAmount(totalAmount),
		order.setRecipient(recipient),
		order.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreParams carries persisted order state back into the aggregate.
type RestoreParams struct {
	ID                kernel.UUID
	Number            string
	CustomerID        kernel.UUID
	TotalAmount       int64
	Recipient         kernel.Recipient
	Status            Status
	PaymentStatus     PaymentStatus
	PaymentReference  string
	PaymentMethod     string
	PaymentProof      string
	PaidAt            *time.Time
	ShippingVendor    string
	TrackingNumber    string
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
	ReminderSent      bool
	CreatedAt         time.Time
}

// RestoreOrder rebuilds an order loaded from storage. It validates the same
// field rules as NewOrder plus the cross-field invariants, so corrupted rows
// surface as errors instead of aggregates in an impossible state.
func RestoreOrder(p RestoreParams) (*Order, error) {
	order := &Order{
		paymentReference:  p.PaymentReference,
		paymentMethod:     p.PaymentMethod,
		paymentProof:      p.PaymentProof,
		paidAt:            p.PaidAt,
		shippingVendor:    p.ShippingVendor,
		trackingNumber:    p.TrackingNumber,
		estimatedDelivery: p.EstimatedDelivery,
		actualDelivery:    p.ActualDelivery,
		reminderSent:      p.ReminderSent,
		isConstructed:     true,
	}

	if err := errors.Join(
		order.setID(p.ID),
		order.setNumber(p.Number),
		order.setCustomerID(p.CustomerID),
		order.setTotalAmount(p.TotalAmount),
		order.setRecipient(p.Recipient),
		order.setCreatedAt(p.CreatedAt),
		p.Status.Validate(),
		p.PaymentStatus.Validate(),
	); err != nil {
		return nil, err
	}

	order.status = p.Status
	order.paymentStatus = p.PaymentStatus

	if err := order.checkInvariants(); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate ensures the Order was built by NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Number() string {
	return o.number
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

func (o *Order) Recipient() kernel.Recipient {
	return o.recipient
}

func (o *Order) TotalAmount() int64 {
	return o.totalAmount
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

func (o *Order) PaymentReference() string {
	return o.paymentReference
}

func (o *Order) PaymentMethod() string {
	return o.paymentMethod
}

func (o *Order) PaymentProof() string {
	return o.paymentProof
}

func (o *Order) PaidAt() *time.Time {
	return o.paidAt
}

func (o *Order) ShippingVendor() string {
	return o.shippingVendor
}

func (o *Order) TrackingNumber() string {
	return o.trackingNumber
}

func (o *Order) EstimatedDelivery() *time.Time {
	return o.estimatedDelivery
}

func (o *Order) ActualDelivery() *time.Time {
	return o.actualDelivery
}

func (o *Order) ReminderSent() bool {
	return o.reminderSent
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// SetShipment records the carrier data shown to the customer.
// Vendor and tracking number go together; both may be empty.
func (o *Order) SetShipment(vendor, trackingNumber string, estimatedDelivery *time.Time) error {
	vendor = strings.TrimSpace(vendor)
	trackingNumber = strings.TrimSpace(trackingNumber)

	if trackingNumber != "" && vendor == "" {
		return errs.NewValueIsRequiredError("shipping vendor")
	}
	if o.status.IsFinal() {
		return errs.NewTerminalStateError("order", o.status.String())
	}

	o.shippingVendor = vendor
	o.trackingNumber = trackingNumber
	o.estimatedDelivery = estimatedDelivery
	return nil
}

// MoveTo applies a status transition.
//
// Returns:
//   - (false, nil) when the order is already in target
//   - (true, nil) when the status changed
//   - TerminalStateError / InvalidTransitionError from Status.TransitionTo
//
// Delivered must go through MarkDelivered so the delivery time is recorded.
func (o *Order) MoveTo(target Status) (bool, error) {
	if target == Delivered && o.status != Delivered {
		return false, errs.NewInvalidTransitionErrorWithCause("order", o.status.String(), target.String(),
			errors.New("delivery must be recorded with MarkDelivered"))
	}

	next, err := o.status.TransitionTo(target)
	if err != nil {
		return false, err
	}
	if next == o.status {
		return false, nil
	}

	o.status = next
	return true, nil
}

// MarkDelivered moves the order to Delivered and stamps the actual delivery time.
// Repeating it on a delivered order is a no-op that keeps the first timestamp.
func (o *Order) MarkDelivered(at time.Time) (bool, error) {
	if at.IsZero() {
		return false, errs.NewValueIsRequiredError("actual delivery time")
	}

	next, err := o.status.TransitionTo(Delivered)
	if err != nil {
		return false, err
	}
	if next == o.status {
		return false, nil
	}

	at = at.UTC()
	o.status = next
	o.actualDelivery = &at
	return true, nil
}

// MarkPaid records a confirmed payment. If the order was still Pending it moves
// to Paid; an order already further along keeps its status.
// Returns false when the payment was already recorded as paid.
func (o *Order) MarkPaid(reference, method string, at time.Time) (bool, error) {
	next, err := o.paymentStatus.TransitionTo(PaymentPaid)
	if err != nil {
		return false, err
	}
	if next == o.paymentStatus {
		return false, nil
	}
	if o.status == Cancelled {
		return false, errs.NewTerminalStateError("order", o.status.String())
	}

	if o.status == Pending {
		o.status = Paid
	}

	paidAt := at.UTC()
	o.paymentStatus = next
	o.paymentReference = strings.TrimSpace(reference)
	o.paymentMethod = strings.TrimSpace(method)
	o.paidAt = &paidAt
	return true, nil
}

// FailPayment marks the payment as failed. The order status is left alone.
func (o *Order) FailPayment() (bool, error) {
	next, err := o.paymentStatus.TransitionTo(PaymentFailed)
	if err != nil {
		return false, err
	}
	if next == o.paymentStatus {
		return false, nil
	}

	o.paymentStatus = next
	return true, nil
}

// SubmitPaymentProof stores a transfer proof reference and puts the payment
// under manual review. Resubmitting while under review replaces the proof.
func (o *Order) SubmitPaymentProof(proof string) error {
	proof = strings.TrimSpace(proof)
	if proof == "" {
		return errs.NewValueIsRequiredError("payment proof")
	}
	if o.status == Cancelled {
		return errs.NewTerminalStateError("order", o.status.String())
	}

	next, err := o.paymentStatus.TransitionTo(PaymentConfirming)
	if err != nil {
		return err
	}

	o.paymentStatus = next
	o.paymentProof = proof
	return nil
}

// MarkReminderSent flips the reminder flag once. It returns false when the
// reminder already went out.
func (o *Order) MarkReminderSent() bool {
	if o.reminderSent {
		return false
	}
	o.reminderSent = true
	return true
}

func (o *Order) checkInvariants() error {
	if o.paymentStatus == PaymentPaid && o.status == Pending {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid", errors.New("a paid order cannot be pending"))
	}
	if o.status == Delivered && o.actualDelivery == nil {
		return errs.NewValueIsRequiredError("actual delivery time")
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	if !numberPattern.MatchString(number) {
		return errs.NewValueIsInvalidErrorWithCause(
			"order number is invalid", fmt.Errorf("%q has unsupported characters", number))
	}
	o.number = number
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.customerID = id
	return nil
}

func (o *Order) setTotalAmount(amount int64) error {
	if amount <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"total amount is invalid", fmt.Errorf("%d is not greater than 0", amount))
	}
	o.totalAmount = amount
	return nil
}

func (o *Order) setRecipient(recipient kernel.Recipient) error {
	if err := recipient.Validate(); err != nil {
		return err
	}
	o.recipient = recipient
	return nil
}

func (o *Order) setCreatedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("created at")
	}
	o.createdAt = at.UTC()
	return nil
}
