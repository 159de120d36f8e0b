package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func webhookCommand(t *testing.T, number string, amount int64) commands.ReconcilePaymentCommand {
	t.Helper()
	cmd, err := commands.NewReconcilePaymentCommand(payment.Event{
		OrderNumber: number,
		Amount:      amount,
		Status:      payment.GatewayCompleted,
		Source:      payment.SourceWebhook,
	})
	require.NoError(t, err)
	return cmd
}

func completed(number string) payment.Verification {
	return payment.Verification{
		OrderNumber: number,
		Amount:      orderTotal,
		Status:      payment.GatewayCompleted,
		Reference:   "PKS-778",
		Method:      "qris",
	}
}

// expectLoad wires the read-only transaction that precedes the gateway call.
func expectLoad(ctx context.Context, factory *MockOrderUoWFactory, o *order.Order) *MockUoW {
	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(repo).Once()
	repo.On("GetByNumber", ctx, o.Number()).Return(o, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	return uow
}

func TestReconcilePaymentCommandHandler_Handle_CompletedWebhook(t *testing.T) {
	ctx := t.Context()
	snapshot := newPendingOrder(t, "ORD-1001")
	locked := newPendingOrder(t, "ORD-1001")

	factory := new(MockOrderUoWFactory)
	loadUoW := expectLoad(ctx, factory, snapshot)

	gateway := new(MockPaymentGateway)
	gateway.On("Verify", mock.Anything, "ORD-1001", orderTotal).Return(completed("ORD-1001"), nil).Once()

	repo := new(MockOrderRepository)
	outbox := new(MockOutboxRepository)
	applyUoW := new(MockUoW)
	factory.On("Create").Return(applyUoW).Once()
	mock.InOrder(
		applyUoW.On("Begin", ctx).Return(nil).Once(),
		applyUoW.On("OrderRepository").Return(repo).Once(),
		repo.On("GetByNumber", ctx, "ORD-1001").Return(locked, nil).Once(),
		repo.On("Update", ctx, locked).Return(nil).Once(),
		applyUoW.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("Add", ctx, messageOfKind(notification.PaymentConfirmed)).Return(nil).Once(),
		applyUoW.On("Commit", ctx).Return(nil).Once(),
		applyUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, time.Second)
	res, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", orderTotal))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, order.Paid, res.Status)
	assert.Equal(t, order.PaymentPaid, res.PaymentStatus)
	assert.Equal(t, payment.GatewayCompleted, res.GatewayStatus)
	assert.Equal(t, "PKS-778", locked.PaymentReference())
	loadUoW.AssertExpectations(t)
	applyUoW.AssertExpectations(t)
	gateway.AssertExpectations(t)
	outbox.AssertExpectations(t)
}

func TestReconcilePaymentCommandHandler_Handle_AlreadyPaidSkipsGateway(t *testing.T) {
	ctx := t.Context()
	paid := newPaidOrder(t, "ORD-1001")

	factory := new(MockOrderUoWFactory)
	loadUoW := expectLoad(ctx, factory, paid)
	gateway := new(MockPaymentGateway)

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, time.Second)
	res, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", orderTotal))

	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, order.PaymentPaid, res.PaymentStatus)
	assert.Empty(t, res.GatewayStatus)
	gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	loadUoW.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestReconcilePaymentCommandHandler_Handle_ConcurrentDuplicateWebhook(t *testing.T) {
	ctx := t.Context()
	snapshot := newPendingOrder(t, "ORD-1001")
	// The first delivery committed while this one waited on the gateway.
	locked := newPaidOrder(t, "ORD-1001")

	factory := new(MockOrderUoWFactory)
	expectLoad(ctx, factory, snapshot)

	gateway := new(MockPaymentGateway)
	gateway.On("Verify", mock.Anything, "ORD-1001", orderTotal).Return(completed("ORD-1001"), nil).Once()

	repo := new(MockOrderRepository)
	applyUoW := new(MockUoW)
	factory.On("Create").Return(applyUoW).Once()
	applyUoW.On("Begin", ctx).Return(nil).Once()
	applyUoW.On("OrderRepository").Return(repo).Once()
	repo.On("GetByNumber", ctx, "ORD-1001").Return(locked, nil).Once()
	applyUoW.On("Rollback", ctx).Return(nil).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, time.Second)
	res, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", orderTotal))

	require.NoError(t, err)
	assert.False(t, res.Changed)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	applyUoW.AssertNotCalled(t, "OutboxRepository")
	applyUoW.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestReconcilePaymentCommandHandler_Handle_AmountMismatch(t *testing.T) {
	ctx := t.Context()
	factory := new(MockOrderUoWFactory)
	expectLoad(ctx, factory, newPendingOrder(t, "ORD-1001"))
	gateway := new(MockPaymentGateway)

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, time.Second)
	_, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", 1))

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcilePaymentCommandHandler_Handle_UnknownOrder(t *testing.T) {
	ctx := t.Context()
	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(repo).Once()
	repo.On("GetByNumber", ctx, "ORD-404").Return(nil, errs.NewObjectNotFoundError("order number", "ORD-404")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, new(MockPaymentGateway), time.Second)
	_, err := h.Handle(ctx, webhookCommand(t, "ORD-404", orderTotal))

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestReconcilePaymentCommandHandler_Handle_GatewayTimeout(t *testing.T) {
	ctx := t.Context()
	factory := new(MockOrderUoWFactory)
	expectLoad(ctx, factory, newPendingOrder(t, "ORD-1001"))

	gateway := new(MockPaymentGateway)
	gateway.On("Verify", mock.Anything, "ORD-1001", orderTotal).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(payment.Verification{}, context.DeadlineExceeded).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, 20*time.Millisecond)
	_, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", orderTotal))

	require.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	assert.True(t, errs.IsRetryable(err))
	// only the read transaction was opened
	factory.AssertNumberOfCalls(t, "Create", 1)
}

func TestReconcilePaymentCommandHandler_Handle_GatewayNotFound(t *testing.T) {
	ctx := t.Context()
	factory := new(MockOrderUoWFactory)
	expectLoad(ctx, factory, newPendingOrder(t, "ORD-1001"))

	gateway := new(MockPaymentGateway)
	gateway.On("Verify", mock.Anything, "ORD-1001", orderTotal).
		Return(payment.Verification{}, errs.NewObjectNotFoundError("transaction", "ORD-1001")).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, time.Second)
	_, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", orderTotal))

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.False(t, errs.IsRetryable(err))
}

func TestReconcilePaymentCommandHandler_Handle_GatewayAnswersForAnotherOrder(t *testing.T) {
	ctx := t.Context()
	factory := new(MockOrderUoWFactory)
	expectLoad(ctx, factory, newPendingOrder(t, "ORD-1001"))

	gateway := new(MockPaymentGateway)
	gateway.On("Verify", mock.Anything, "ORD-1001", orderTotal).
		Return(payment.Verification{}, errs.NewObjectNotFoundErrorWithCause("payment", "ORD-1001",
			errors.New(`gateway answered for order "ORD-9999"`))).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, time.Second)
	_, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", orderTotal))

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.NotErrorIs(t, err, errs.ErrGatewayUnavailable)
	assert.False(t, errs.IsRetryable(err))
	factory.AssertNumberOfCalls(t, "Create", 1)
}

func TestReconcilePaymentCommandHandler_Handle_GatewayRejectsCredentials(t *testing.T) {
	ctx := t.Context()
	factory := new(MockOrderUoWFactory)
	expectLoad(ctx, factory, newPendingOrder(t, "ORD-1001"))

	rejected := errors.New(`gateway answered 401: {"error":"invalid api key"}`)
	gateway := new(MockPaymentGateway)
	gateway.On("Verify", mock.Anything, "ORD-1001", orderTotal).
		Return(payment.Verification{}, rejected).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, time.Second)
	_, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", orderTotal))

	require.ErrorIs(t, err, rejected)
	assert.NotErrorIs(t, err, errs.ErrGatewayUnavailable)
	assert.False(t, errs.IsRetryable(err))
	factory.AssertNumberOfCalls(t, "Create", 1)
}

func TestReconcilePaymentCommandHandler_Handle_ExpiredCancels(t *testing.T) {
	ctx := t.Context()
	locked := newPendingOrder(t, "ORD-1001")

	factory := new(MockOrderUoWFactory)
	expectLoad(ctx, factory, newPendingOrder(t, "ORD-1001"))

	expired := completed("ORD-1001")
	expired.Status = payment.GatewayExpired
	gateway := new(MockPaymentGateway)
	gateway.On("Verify", mock.Anything, "ORD-1001", orderTotal).Return(expired, nil).Once()

	repo := new(MockOrderRepository)
	applyUoW := new(MockUoW)
	factory.On("Create").Return(applyUoW).Once()
	applyUoW.On("Begin", ctx).Return(nil).Once()
	applyUoW.On("OrderRepository").Return(repo).Once()
	repo.On("GetByNumber", ctx, "ORD-1001").Return(locked, nil).Once()
	repo.On("Update", ctx, locked).Return(nil).Once()
	applyUoW.On("Commit", ctx).Return(nil).Once()
	applyUoW.On("Rollback", ctx).Return(nil).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, time.Second)
	res, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", 0))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, order.Cancelled, res.Status)
	assert.Equal(t, order.PaymentFailed, res.PaymentStatus)
	applyUoW.AssertNotCalled(t, "OutboxRepository")
	applyUoW.AssertExpectations(t)
}

func TestReconcilePaymentCommandHandler_Handle_UpdateErrorRollsBack(t *testing.T) {
	ctx := t.Context()
	locked := newPendingOrder(t, "ORD-1001")

	factory := new(MockOrderUoWFactory)
	expectLoad(ctx, factory, newPendingOrder(t, "ORD-1001"))

	gateway := new(MockPaymentGateway)
	gateway.On("Verify", mock.Anything, "ORD-1001", orderTotal).Return(completed("ORD-1001"), nil).Once()

	repo := new(MockOrderRepository)
	applyUoW := new(MockUoW)
	factory.On("Create").Return(applyUoW).Once()
	applyUoW.On("Begin", ctx).Return(nil).Once()
	applyUoW.On("OrderRepository").Return(repo).Once()
	repo.On("GetByNumber", ctx, "ORD-1001").Return(locked, nil).Once()
	repo.On("Update", ctx, locked).Return(errors.New("connection reset")).Once()
	applyUoW.On("Rollback", ctx).Return(nil).Once()

	h := commands.NewReconcilePaymentCommandHandler(factory, gateway, time.Second)
	_, err := h.Handle(ctx, webhookCommand(t, "ORD-1001", orderTotal))

	require.EqualError(t, err, "connection reset")
	applyUoW.AssertNotCalled(t, "Commit", mock.Anything)
	applyUoW.AssertExpectations(t)
}
