package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ClaimForSweep(ctx context.Context, now time.Time, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, now, limit)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockTaskRepository struct{ mock.Mock }

func (m *MockTaskRepository) Add(ctx context.Context, t *task.DriverTask) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.DriverTask) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTaskRepository) Get(ctx context.Context, id kernel.UUID) (*task.DriverTask, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*task.DriverTask)
	return t, args.Error(1)
}

func (m *MockTaskRepository) GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*task.DriverTask, error) {
	args := m.Called(ctx, orderID)
	t, _ := args.Get(0).(*task.DriverTask)
	return t, args.Error(1)
}

func (m *MockTaskRepository) ClaimPingSlot(
	ctx context.Context,
	taskID kernel.UUID,
	receivedAt time.Time,
	minInterval time.Duration,
) (bool, error) {
	args := m.Called(ctx, taskID, receivedAt, minInterval)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) UpdatePositionIfNewer(
	ctx context.Context,
	taskID kernel.UUID,
	point kernel.GeoPoint,
	recordedAt time.Time,
) (bool, error) {
	args := m.Called(ctx, taskID, point, recordedAt)
	return args.Bool(0), args.Error(1)
}

type MockTrackingLogRepository struct{ mock.Mock }

func (m *MockTrackingLogRepository) Add(ctx context.Context, l *tracking.Log) error {
	return m.Called(ctx, l).Error(0)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, msg *notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockOutboxRepository) ListPending(ctx context.Context, limit int, maxAttempts int) ([]*notification.Message, error) {
	args := m.Called(ctx, limit, maxAttempts)
	messages, _ := args.Get(0).([]*notification.Message)
	return messages, args.Error(1)
}

func (m *MockOutboxRepository) Update(ctx context.Context, msg *notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// MockUoW satisfies every unit of work flavour the handlers ask for.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.Called().Get(0).(ports.OrderRepository)
}

func (m *MockUoW) TaskRepository() ports.TaskRepository {
	return m.Called().Get(0).(ports.TaskRepository)
}

func (m *MockUoW) TrackingLogRepository() ports.TrackingLogRepository {
	return m.Called().Get(0).(ports.TrackingLogRepository)
}

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	return m.Called().Get(0).(ports.OutboxRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	return m.Called().Get(0).(commands.OrderUoW)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	return m.Called().Get(0).(commands.UoW)
}

type MockPingUoWFactory struct{ mock.Mock }

func (m *MockPingUoWFactory) Create() commands.PingUoW {
	return m.Called().Get(0).(commands.PingUoW)
}

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	return m.Called().Get(0).(commands.OutboxUoW)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) Verify(ctx context.Context, orderNumber string, amount int64) (payment.Verification, error) {
	args := m.Called(ctx, orderNumber, amount)
	v, _ := args.Get(0).(payment.Verification)
	return v, args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, msg *notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// fixtures

const orderTotal int64 = 150_000

func newRecipient(t *testing.T) kernel.Recipient {
	t.Helper()
	r, err := kernel.NewRecipient("Siti Rahma", "+628111222333", "Jl. Merdeka 1, Bandung")
	require.NoError(t, err)
	return r
}

func newPendingOrder(t *testing.T, number string) *order.Order {
	t.Helper()
	return newOrderAged(t, number, time.Hour)
}

func newOrderAged(t *testing.T, number string, age time.Duration) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), number, kernel.NewUUID(), orderTotal, newRecipient(t),
		time.Now().Add(-age))
	require.NoError(t, err)
	return o
}

func newPaidOrder(t *testing.T, number string) *order.Order {
	t.Helper()
	o := newPendingOrder(t, number)
	_, err := o.MarkPaid("PAY-1", "qris", time.Now())
	require.NoError(t, err)
	return o
}

func newAssignedTask(t *testing.T, o *order.Order, driverID kernel.UUID) *task.DriverTask {
	t.Helper()
	dt, err := task.NewDriverTask(kernel.NewUUID(), o.ID(), driverID, o.Recipient(), nil, time.Now())
	require.NoError(t, err)
	return dt
}

func messageOfKind(kind notification.Kind) any {
	return mock.MatchedBy(func(m *notification.Message) bool {
		return m.Kind() == kind
	})
}
