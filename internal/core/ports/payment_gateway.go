package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/payment"
)

// PaymentGateway is the external processor's authoritative status endpoint.
//
// Implementations must bound every call with a timeout and report transport
// failures as GatewayUnavailableError. An order/amount pair unknown to the
// gateway is an ObjectNotFoundError.
type PaymentGateway interface {
	Verify(ctx context.Context, orderNumber string, amount int64) (payment.Verification, error)
}
