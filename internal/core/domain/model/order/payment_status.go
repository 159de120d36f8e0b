package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// PaymentStatus tracks how far the money side of an order has got.
// Gateway reconciliation and manual proof review share this single machine:
//
//	Pending ──> Confirming ──> Paid
//	   │  ^          │          ^
//	   │  └─ Failed <┘          │
//	   └────────┴───────────────┘
//
// Paid is final. Failed stays retryable: a later gateway confirmation or a new
// proof submission moves it on.
type PaymentStatus int

const (
	PaymentUnknown PaymentStatus = iota
	PaymentPending
	// PaymentConfirming means the customer submitted a transfer proof that waits for admin review.
	PaymentConfirming
	PaymentPaid
	PaymentFailed
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentUnknown:    "UNKNOWN",
		PaymentPending:    "PENDING",
		PaymentConfirming: "CONFIRMING",
		PaymentPaid:       "PAID",
		PaymentFailed:     "FAILED",
	}
}

func paymentTransitions() map[PaymentStatus][]PaymentStatus {
	//nolint:exhaustive // Paid is final
	return map[PaymentStatus][]PaymentStatus{
		PaymentPending:    {PaymentConfirming, PaymentPaid, PaymentFailed},
		PaymentConfirming: {PaymentPaid, PaymentFailed},
		PaymentFailed:     {PaymentConfirming, PaymentPaid},
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for status, str := range getPaymentStatusStrings() {
		if status != PaymentUnknown && str == s {
			return status, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause(
		"payment status is invalid", fmt.Errorf("%q is not a valid payment status", s))
}

func (s PaymentStatus) Validate() error {
	if s == PaymentUnknown {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment status is invalid", fmt.Errorf("%d is not a valid payment status", s))
	}
	if _, ok := getPaymentStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment status is invalid", fmt.Errorf("%d is not a valid payment status", s))
	}
	return nil
}

func (s PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// TransitionTo mirrors Status.TransitionTo for the payment machine.
// Moving to the current status is a no-op.
func (s PaymentStatus) TransitionTo(target PaymentStatus) (PaymentStatus, error) {
	if err := target.Validate(); err != nil {
		return PaymentUnknown, err
	}
	if s == target {
		return s, nil
	}
	if s == PaymentPaid {
		return PaymentUnknown, errs.NewTerminalStateError("payment", s.String())
	}

	for _, next := range paymentTransitions()[s] {
		if next == target {
			return target, nil
		}
	}

	return PaymentUnknown, errs.NewInvalidTransitionError("payment", s.String(), target.String())
}
