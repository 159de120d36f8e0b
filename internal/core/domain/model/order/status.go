package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the store-visible fulfillment state of an order.
//
// State transitions:
//
//	Pending ──> Paid ──> Processing ──> Shipped ──> Delivered
//	   │          │          ^  │                      ^
//	   │          │          │  └──────────────────────┘
//	   ├──────────┼──────────┘
//	   └──> Cancelled <──┘
//
// Progress is monotonic along Pending < Paid < Processing < Shipped < Delivered.
// Cancelled is reachable only from Pending or Paid. Delivered and Cancelled are final.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Pending is the status of a freshly checked-out order awaiting payment.
	Pending

	// Paid means the gateway confirmed the payment.
	Paid

	// Processing means the order is being prepared: a driver was dispatched
	// or an admin approved a manual payment.
	Processing

	// Shipped means the driver picked the parcel up.
	Shipped

	// Delivered means proof of delivery was captured. Final.
	Delivered

	// Cancelled means the payment expired before the order progressed. Final.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Pending:    "PENDING",
		Paid:       "PAID",
		Processing: "PROCESSING",
		Shipped:    "SHIPPED",
		Delivered:  "DELIVERED",
		Cancelled:  "CANCELLED",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:    "PENDING",
		Paid:       "PAID",
		Processing: "PROCESSING",
		Shipped:    "SHIPPED",
		Delivered:  "DELIVERED",
		Cancelled:  "CANCELLED",
	}
}

// allowedTransitions lists every single-step edge of the order graph.
func allowedTransitions() map[Status][]Status {
	//nolint:exhaustive // final statuses have no outgoing edges
	return map[Status][]Status{
		Pending:    {Paid, Processing, Cancelled},
		Paid:       {Processing, Cancelled},
		Processing: {Shipped, Delivered},
		Shipped:    {Delivered},
	}
}

// ParseStatus converts the persisted or wire representation back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of the known statuses.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsFinal reports whether no further transitions are possible.
func (s Status) IsFinal() bool {
	return s == Delivered || s == Cancelled
}

// IsAtOrBeyond reports whether s has already progressed to target or past it.
// Cancelled is off the progress line and is never at or beyond anything but itself.
func (s Status) IsAtOrBeyond(target Status) bool {
	if s == target {
		return true
	}
	if s == Cancelled || target == Cancelled {
		return false
	}
	return s > target
}

// TransitionTo returns the status after moving s to target.
//
// Returns:
//   - (s, nil) when target equals s; callers treat it as a no-op
//   - (target, nil) when the edge exists in the order graph
//   - TerminalStateError when s is Cancelled or Delivered
//   - InvalidTransitionError for any other target
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	if s == target {
		return s, nil
	}
	if s.IsFinal() {
		return Unknown, errs.NewTerminalStateError("order", s.String())
	}

	for _, next := range allowedTransitions()[s] {
		if next == target {
			return target, nil
		}
	}

	return Unknown, errs.NewInvalidTransitionError("order", s.String(), target.String())
}
