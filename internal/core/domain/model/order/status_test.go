package order_test

import (
	"fmt"
	"testing"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Validate(t *testing.T) {
	for _, status := range []order.Status{
		order.Pending, order.Paid, order.Processing, order.Shipped, order.Delivered, order.Cancelled,
	} {
		t.Run(status.String(), func(t *testing.T) {
			require.NoError(t, status.Validate())
		})
	}

	t.Run("should reject Unknown and out of range values", func(t *testing.T) {
		for _, status := range []order.Status{order.Unknown, order.Status(42), order.Status(-1)} {
			err := status.Validate()

			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			assert.Contains(t, err.Error(), "status is invalid")
		}
	})
}

func TestParseStatus(t *testing.T) {
	s, err := order.ParseStatus("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, order.Shipped, s)

	_, err = order.ParseStatus("UNKNOWN")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = order.ParseStatus("shipped")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_TransitionTo(t *testing.T) {
	tests := []struct {
		from    order.Status
		to      order.Status
		wantErr error
	}{
		{order.Pending, order.Paid, nil},
		{order.Pending, order.Processing, nil},
		{order.Pending, order.Cancelled, nil},
		{order.Paid, order.Processing, nil},
		{order.Paid, order.Cancelled, nil},
		{order.Processing, order.Shipped, nil},
		{order.Processing, order.Delivered, nil},
		{order.Shipped, order.Delivered, nil},

		{order.Pending, order.Shipped, errs.ErrInvalidTransition},
		{order.Pending, order.Delivered, errs.ErrInvalidTransition},
		{order.Paid, order.Pending, errs.ErrInvalidTransition},
		{order.Processing, order.Paid, errs.ErrInvalidTransition},
		{order.Processing, order.Cancelled, errs.ErrInvalidTransition},
		{order.Shipped, order.Processing, errs.ErrInvalidTransition},
		{order.Shipped, order.Cancelled, errs.ErrInvalidTransition},

		{order.Cancelled, order.Paid, errs.ErrTerminalState},
		{order.Cancelled, order.Processing, errs.ErrTerminalState},
		{order.Delivered, order.Shipped, errs.ErrTerminalState},
		{order.Delivered, order.Cancelled, errs.ErrTerminalState},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			next, err := tt.from.TransitionTo(tt.to)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, order.Unknown, next)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, next)
		})
	}

	t.Run("same status is a no-op even when final", func(t *testing.T) {
		for _, s := range []order.Status{order.Pending, order.Shipped, order.Delivered, order.Cancelled} {
			next, err := s.TransitionTo(s)

			require.NoError(t, err)
			assert.Equal(t, s, next)
		}
	})

	t.Run("invalid target is rejected", func(t *testing.T) {
		_, err := order.Pending.TransitionTo(order.Unknown)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestStatus_NeverRegresses(t *testing.T) {
	progress := []order.Status{order.Pending, order.Paid, order.Processing, order.Shipped, order.Delivered}

	for i, from := range progress {
		for _, to := range progress[:i] {
			_, err := from.TransitionTo(to)
			require.Error(t, err, "%s -> %s must fail", from, to)
		}
	}
}

func TestStatus_IsAtOrBeyond(t *testing.T) {
	assert.True(t, order.Shipped.IsAtOrBeyond(order.Processing))
	assert.True(t, order.Shipped.IsAtOrBeyond(order.Shipped))
	assert.False(t, order.Paid.IsAtOrBeyond(order.Processing))
	assert.False(t, order.Cancelled.IsAtOrBeyond(order.Processing))
	assert.False(t, order.Delivered.IsAtOrBeyond(order.Cancelled))
	assert.True(t, order.Cancelled.IsAtOrBeyond(order.Cancelled))
}

func TestPaymentStatus_TransitionTo(t *testing.T) {
	tests := []struct {
		from    order.PaymentStatus
		to      order.PaymentStatus
		wantErr error
	}{
		{order.PaymentPending, order.PaymentConfirming, nil},
		{order.PaymentPending, order.PaymentPaid, nil},
		{order.PaymentPending, order.PaymentFailed, nil},
		{order.PaymentConfirming, order.PaymentPaid, nil},
		{order.PaymentConfirming, order.PaymentFailed, nil},
		{order.PaymentFailed, order.PaymentPaid, nil},
		{order.PaymentFailed, order.PaymentConfirming, nil},

		{order.PaymentConfirming, order.PaymentPending, errs.ErrInvalidTransition},
		{order.PaymentFailed, order.PaymentPending, errs.ErrInvalidTransition},
		{order.PaymentPaid, order.PaymentFailed, errs.ErrTerminalState},
		{order.PaymentPaid, order.PaymentConfirming, errs.ErrTerminalState},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			next, err := tt.from.TransitionTo(tt.to)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, next)
		})
	}

	t.Run("paid to paid is a no-op", func(t *testing.T) {
		next, err := order.PaymentPaid.TransitionTo(order.PaymentPaid)

		require.NoError(t, err)
		assert.Equal(t, order.PaymentPaid, next)
	})
}

func TestParsePaymentStatus(t *testing.T) {
	s, err := order.ParsePaymentStatus("CONFIRMING")
	require.NoError(t, err)
	assert.Equal(t, order.PaymentConfirming, s)

	_, err = order.ParsePaymentStatus("UNKNOWN")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
