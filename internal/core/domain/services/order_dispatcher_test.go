package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderDispatcher_Dispatch(t *testing.T) {
	dispatcher := services.NewOrderDispatcher(services.NewOrderOrchestrator())

	t.Run("paid order moves to processing", func(t *testing.T) {
		o := newOrder(t, "ORD-1002")
		_, err := o.MarkPaid("TRX", "qris", now)
		require.NoError(t, err)
		driverID := kernel.NewUUID()
		scheduled := now.Add(24 * time.Hour)

		dt, err := dispatcher.Dispatch(o, nil, kernel.NewUUID(), driverID, &scheduled, now)

		require.NoError(t, err)
		assert.Equal(t, task.Assigned, dt.Status())
		assert.True(t, dt.OrderID().IsEqual(o.ID()))
		assert.True(t, dt.DriverID().IsEqual(driverID))
		assert.Equal(t, o.Recipient().Address(), dt.Recipient().Address())
		assert.Equal(t, &scheduled, dt.ScheduledDate())
		assert.Equal(t, order.Processing, o.Status())
	})

	t.Run("active task conflicts", func(t *testing.T) {
		o := newOrder(t, "ORD-1003")
		active, err := dispatcher.Dispatch(o, nil, kernel.NewUUID(), kernel.NewUUID(), nil, now)
		require.NoError(t, err)

		_, err = dispatcher.Dispatch(o, active, kernel.NewUUID(), kernel.NewUUID(), nil, now)

		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("delivered task does not block a new attempt", func(t *testing.T) {
		o := newOrder(t, "ORD-1004")
		prior, err := dispatcher.Dispatch(o, nil, kernel.NewUUID(), kernel.NewUUID(), nil, now)
		require.NoError(t, err)
		pod, err := task.NewProofOfDelivery("pod/1.jpg", "", "")
		require.NoError(t, err)
		_, err = prior.Complete(pod, now)
		require.NoError(t, err)

		dt, err := dispatcher.Dispatch(o, prior, kernel.NewUUID(), kernel.NewUUID(), nil, now)

		require.NoError(t, err)
		assert.False(t, dt.ID().IsEqual(prior.ID()))
	})

	t.Run("cancelled order is terminal", func(t *testing.T) {
		o := newOrder(t, "ORD-1005")
		_, err := o.MoveTo(order.Cancelled)
		require.NoError(t, err)

		_, err = dispatcher.Dispatch(o, nil, kernel.NewUUID(), kernel.NewUUID(), nil, now)

		require.ErrorIs(t, err, errs.ErrTerminalState)
	})

	t.Run("invalid driver", func(t *testing.T) {
		o := newOrder(t, "ORD-1006")

		_, err := dispatcher.Dispatch(o, nil, kernel.NewUUID(), kernel.UUID{}, nil, now)

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		assert.Equal(t, order.Pending, o.Status())
	})
}
