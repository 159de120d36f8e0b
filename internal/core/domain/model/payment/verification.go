package payment

import (
	"strings"
	"time"
)

// GatewayStatus is the payment state as reported by the gateway.
type GatewayStatus string

const (
	GatewayPending   GatewayStatus = "pending"
	GatewayCompleted GatewayStatus = "completed"
	GatewayFailed    GatewayStatus = "failed"
	GatewayExpired   GatewayStatus = "expired"
)

// ParseGatewayStatus normalizes a raw gateway value. Anything the gateway may
// add later maps to pending, which leaves local state untouched.
func ParseGatewayStatus(raw string) GatewayStatus {
	switch GatewayStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case GatewayCompleted:
		return GatewayCompleted
	case GatewayFailed:
		return GatewayFailed
	case GatewayExpired:
		return GatewayExpired
	default:
		return GatewayPending
	}
}

// Source says which channel triggered a reconciliation.
type Source string

const (
	SourceWebhook Source = "webhook"
	SourcePoll    Source = "poll"
	SourceSweep   Source = "sweep"
)

// Verification is the gateway's authoritative answer for one order.
type Verification struct {
	OrderNumber string
	Amount      int64
	Status      GatewayStatus
	Reference   string
	Method      string
	CompletedAt *time.Time
}

// PaidAt returns the gateway completion time, or fallback when the gateway
// did not report one.
func (v Verification) PaidAt(fallback time.Time) time.Time {
	if v.CompletedAt != nil && !v.CompletedAt.IsZero() {
		return *v.CompletedAt
	}
	return fallback
}

// Event is an unverified payment notification as it arrives over the webhook.
// It only tells the reconciler which order to re-check.
type Event struct {
	OrderNumber string
	Amount      int64
	Status      GatewayStatus
	Source      Source
}
