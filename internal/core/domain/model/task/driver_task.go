package task

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrDriverTaskIsNotConstructed is returned when a DriverTask was not created
	// through NewDriverTask or RestoreDriverTask.
	ErrDriverTaskIsNotConstructed = errors.New("DriverTask must be created via NewDriverTask constructor")
)

// DriverTask is one delivery attempt for an order, owned by exactly one driver.
//
// Invariants:
//   - driverID never changes after creation
//   - Status moves forward only; Delivered is final
//   - Delivered implies proof of delivery and deliveredAt are present
//   - the recipient is a snapshot taken at dispatch and is not refreshed from the order
//
// The cached position (lastPosition, lastPingAt) is a derived view of the
// tracking log and may lag behind it.
type DriverTask struct {
	id            kernel.UUID
	orderID       kernel.UUID
	driverID      kernel.UUID
	recipient     kernel.Recipient
	scheduledDate *time.Time
	status        Status

	lastPosition *kernel.GeoPoint
	lastPingAt   *time.Time

	proof       *ProofOfDelivery
	deliveredAt *time.Time

	createdAt time.Time

	isConstructed bool
}

// NewDriverTask creates an Assigned task for the given order and driver.
//
// Parameters:
//   - id: identifier of the task
//   - orderID: order being delivered
//   - driverID: the only actor allowed to mutate the task
//   - recipient: snapshot of the order's recipient at dispatch time
//   - scheduledDate: optional planned delivery date
//   - createdAt: dispatch time
func NewDriverTask(
	id kernel.UUID,
	orderID kernel.UUID,
	driverID kernel.UUID,
	recipient kernel.Recipient,
	scheduledDate *time.Time,
	createdAt time.Time,
) (*DriverTask, error) {
	t := &DriverTask{
		status:        Assigned,
		scheduledDate: scheduledDate,
		isConstructed: true,
	}

	if err := errors.Join(
		t.setIDs(id, orderID, driverID),
		t.setRecipient(recipient),
		t.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return t, nil
}

// RestoreParams carries persisted task state back into the aggregate.
type RestoreParams struct {
	ID            kernel.UUID
	OrderID       kernel.UUID
	DriverID      kernel.UUID
	Recipient     kernel.Recipient
	ScheduledDate *time.Time
	Status        Status
	LastPosition  *kernel.GeoPoint
	LastPingAt    *time.Time
	Proof         *ProofOfDelivery
	DeliveredAt   *time.Time
	CreatedAt     time.Time
}

func RestoreDriverTask(p RestoreParams) (*DriverTask, error) {
	t := &DriverTask{
		scheduledDate: p.ScheduledDate,
		lastPosition:  p.LastPosition,
		lastPingAt:    p.LastPingAt,
		proof:         p.Proof,
		deliveredAt:   p.DeliveredAt,
		isConstructed: true,
	}

	if err := errors.Join(
		t.setIDs(p.ID, p.OrderID, p.DriverID),
		t.setRecipient(p.Recipient),
		t.setCreatedAt(p.CreatedAt),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}
	t.status = p.Status

	if t.status == Delivered && (t.proof == nil || t.deliveredAt == nil) {
		return nil, errs.NewValueIsRequiredError("proof of delivery")
	}

	return t, nil
}

func (t *DriverTask) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrDriverTaskIsNotConstructed
	}
	return nil
}

func (t *DriverTask) ID() kernel.UUID {
	return t.id
}

func (t *DriverTask) OrderID() kernel.UUID {
	return t.orderID
}

func (t *DriverTask) DriverID() kernel.UUID {
	return t.driverID
}

// Recipient returns the dispatch-time snapshot of the delivery target.
func (t *DriverTask) Recipient() kernel.Recipient {
	return t.recipient
}

func (t *DriverTask) ScheduledDate() *time.Time {
	return t.scheduledDate
}

func (t *DriverTask) Status() Status {
	return t.status
}

// LastPosition returns the cached position, nil until the first ping lands.
func (t *DriverTask) LastPosition() *kernel.GeoPoint {
	return t.lastPosition
}

func (t *DriverTask) LastPingAt() *time.Time {
	return t.lastPingAt
}

// Proof returns the stored evidence of a delivered task, nil otherwise.
func (t *DriverTask) Proof() *ProofOfDelivery {
	return t.proof
}

func (t *DriverTask) DeliveredAt() *time.Time {
	return t.deliveredAt
}

func (t *DriverTask) CreatedAt() time.Time {
	return t.createdAt
}

// EnsureOwnedBy fails with Unauthorized unless actor is the assigned driver.
func (t *DriverTask) EnsureOwnedBy(actor kernel.UUID) error {
	if !t.driverID.IsEqual(actor) {
		return errs.NewUnauthorizedError(actor.String(), "task", t.id.String())
	}
	return nil
}

// EnsureActive fails with TerminalState once the task is delivered.
func (t *DriverTask) EnsureActive() error {
	if t.status.IsFinal() {
		return errs.NewTerminalStateError("task", t.status.String())
	}
	return nil
}

// Advance moves the task forward. Delivered cannot be reached here because it
// needs proof of delivery, see Complete.
func (t *DriverTask) Advance(target Status) error {
	if target == Delivered && !t.status.IsFinal() {
		return errs.NewInvalidTransitionErrorWithCause("task", t.status.String(), target.String(),
			errors.New("delivery requires proof of delivery"))
	}

	next, err := t.status.Advance(target)
	if err != nil {
		return err
	}

	t.status = next
	return nil
}

// Complete captures proof of delivery and closes the task.
// Completing an already delivered task is a no-op returning false; the stored
// evidence is kept and can be read back through Proof.
func (t *DriverTask) Complete(proof ProofOfDelivery, at time.Time) (bool, error) {
	if t.status.IsFinal() {
		return false, nil
	}
	if err := proof.Validate(); err != nil {
		return false, err
	}
	if at.IsZero() {
		return false, errs.NewValueIsRequiredError("delivered at")
	}

	at = at.UTC()
	t.status = Delivered
	t.proof = &proof
	t.deliveredAt = &at
	return true, nil
}

// IsNewerPing reports whether a sample taken at recordedAt would replace the
// cached position. Equal timestamps are not newer.
func (t *DriverTask) IsNewerPing(recordedAt time.Time) bool {
	return t.lastPingAt == nil || recordedAt.After(*t.lastPingAt)
}

// UpdatePosition refreshes the cached position when the sample is strictly
// newer than the cache. It returns false for stale samples.
func (t *DriverTask) UpdatePosition(point kernel.GeoPoint, recordedAt time.Time) (bool, error) {
	if err := t.EnsureActive(); err != nil {
		return false, err
	}
	if err := point.Validate(); err != nil {
		return false, err
	}
	if !t.IsNewerPing(recordedAt) {
		return false, nil
	}

	at := recordedAt.UTC()
	t.lastPosition = &point
	t.lastPingAt = &at
	return true, nil
}

func (t *DriverTask) setIDs(id, orderID, driverID kernel.UUID) error {
	if err := errors.Join(id.Validate(), orderID.Validate(), driverID.Validate()); err != nil {
		return err
	}
	t.id = id
	t.orderID = orderID
	t.driverID = driverID
	return nil
}

func (t *DriverTask) setRecipient(recipient kernel.Recipient) error {
	if err := recipient.Validate(); err != nil {
		return err
	}
	t.recipient = recipient
	return nil
}

func (t *DriverTask) setCreatedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("created at")
	}
	t.createdAt = at.UTC()
	return nil
}
