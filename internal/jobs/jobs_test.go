package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSweeper struct{ mock.Mock }

func (m *MockSweeper) Handle(ctx context.Context, cmd commands.SweepPendingPaymentsCommand) (commands.SweepReport, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.SweepReport), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Handle(ctx context.Context, cmd commands.PublishNotificationsCommand) (commands.RelayReport, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.RelayReport), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPaymentSweepJob_Run(t *testing.T) {
	sweeper := &MockSweeper{}
	sweeper.On("Handle", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return hasDeadline
	}), mock.Anything).Return(commands.SweepReport{
		Checked:  3,
		Changed:  1,
		Reminded: 1,
		Failures: []commands.SweepFailure{{OrderNumber: "ORD-1", Err: errors.New("gateway down")}},
	}, nil).Once()

	job := jobs.NewPaymentSweepJob(sweeper, "", time.Minute, discardLogger())

	assert.NotPanics(t, job.Run)
	sweeper.AssertExpectations(t)
}

func TestPaymentSweepJob_RunError(t *testing.T) {
	sweeper := &MockSweeper{}
	sweeper.On("Handle", mock.Anything, mock.Anything).
		Return(commands.SweepReport{}, errors.New("db down")).Once()

	job := jobs.NewPaymentSweepJob(sweeper, "", 0, discardLogger())

	assert.NotPanics(t, job.Run)
	sweeper.AssertExpectations(t)
}

func TestNotificationRelayJob_Run(t *testing.T) {
	publisher := &MockPublisher{}
	publisher.On("Handle", mock.Anything, mock.Anything).Return(commands.RelayReport{Published: 2, Failed: 1}, nil).Once()
	publisher.On("Handle", mock.Anything, mock.Anything).Return(commands.RelayReport{}, nil).Once()

	job := jobs.NewNotificationRelayJob(publisher, "", time.Second, discardLogger())
	job.Run()
	job.Run()

	publisher.AssertNumberOfCalls(t, "Handle", 2)
}

func TestJob_StartRejectsBadSchedule(t *testing.T) {
	job := jobs.NewPaymentSweepJob(&MockSweeper{}, "every minute", time.Minute, discardLogger())

	require.Error(t, job.Start())
}

func TestJobManager_StartStop(t *testing.T) {
	sweeper := &MockSweeper{}
	publisher := &MockPublisher{}
	// never fires during the test
	yearly := "0 0 0 1 1 *"

	manager := jobs.NewJobManager(
		jobs.NewPaymentSweepJob(sweeper, yearly, time.Minute, discardLogger()),
		jobs.NewNotificationRelayJob(publisher, yearly, time.Minute, discardLogger()),
	)

	require.NoError(t, manager.StartAll())
	manager.StopAll()

	sweeper.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestJobManager_StartAllFailsOnBadSchedule(t *testing.T) {
	manager := jobs.NewJobManager(
		jobs.NewPaymentSweepJob(&MockSweeper{}, "bogus", time.Minute, discardLogger()),
		jobs.NewNotificationRelayJob(&MockPublisher{}, "0 0 0 1 1 *", time.Minute, discardLogger()),
	)

	err := manager.StartAll()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment sweep")
}
