package task

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the progress of a single delivery attempt.
//
//	Assigned ──> PickedUp ──> InTransit ──> Delivered
//
// Movement is forward-only. Delivered is final and is reached only through
// proof-of-delivery capture.
type Status int

const (
	Unknown Status = iota
	Assigned
	PickedUp
	InTransit
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Assigned:  "ASSIGNED",
		PickedUp:  "PICKED_UP",
		InTransit: "IN_TRANSIT",
		Delivered: "DELIVERED",
	}
}

func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"task status is invalid", fmt.Errorf("%q is not a valid task status", s))
}

func (s Status) Validate() error {
	if s < Assigned || s > Delivered {
		return errs.NewValueIsInvalidErrorWithCause(
			"task status is invalid", fmt.Errorf("%d is not a valid task status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsFinal reports whether s is Delivered.
func (s Status) IsFinal() bool {
	return s == Delivered
}

// Advance returns target if it lies strictly ahead of s.
// Skipping a step (Assigned straight to InTransit) is allowed.
// Same or earlier targets fail with InvalidTransition so that a retried request
// arriving after a newer one cannot move the task back.
func (s Status) Advance(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	if s.IsFinal() {
		return Unknown, errs.NewTerminalStateError("task", s.String())
	}
	if target <= s {
		return Unknown, errs.NewInvalidTransitionError("task", s.String(), target.String())
	}
	return target, nil
}
