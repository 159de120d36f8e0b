package commands_test

import (
	"errors"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOutboxMessage(t *testing.T, kind notification.Kind) *notification.Message {
	t.Helper()
	m, err := notification.NewMessage(kernel.NewUUID(), kind, kernel.NewUUID(), "ORD-1001",
		map[string]any{"order_number": "ORD-1001"}, time.Now())
	require.NoError(t, err)
	return m
}

func TestPublishNotificationsCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	delivered := newOutboxMessage(t, notification.PaymentConfirmed)
	refused := newOutboxMessage(t, notification.Shipped)

	outbox := new(MockOutboxRepository)
	notifier := new(MockNotifier)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("ListPending", ctx, 100, 10).Return([]*notification.Message{delivered, refused}, nil).Once(),
		notifier.On("Notify", ctx, delivered).Return(nil).Once(),
		outbox.On("Update", ctx, delivered).Return(nil).Once(),
		notifier.On("Notify", ctx, refused).Return(errors.New("channel closed")).Once(),
		outbox.On("Update", ctx, refused).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewPublishNotificationsCommandHandler(factory, notifier, commands.RelayPolicy{})
	report, err := h.Handle(ctx, commands.NewPublishNotificationsCommand())

	require.NoError(t, err)
	assert.Equal(t, commands.RelayReport{Published: 1, Failed: 1}, report)
	assert.True(t, delivered.IsPublished())
	assert.False(t, refused.IsPublished())
	assert.Equal(t, 1, refused.Attempts())
	assert.Equal(t, "channel closed", refused.LastError())
	uow.AssertExpectations(t)
	outbox.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestPublishNotificationsCommandHandler_Handle_Empty(t *testing.T) {
	ctx := t.Context()
	outbox := new(MockOutboxRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OutboxRepository").Return(outbox).Once()
	outbox.On("ListPending", ctx, 5, 3).Return([]*notification.Message{}, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()
	notifier := new(MockNotifier)

	h := commands.NewPublishNotificationsCommandHandler(factory, notifier, commands.RelayPolicy{BatchSize: 5, MaxAttempts: 3})
	report, err := h.Handle(ctx, commands.NewPublishNotificationsCommand())

	require.NoError(t, err)
	assert.Zero(t, report)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
