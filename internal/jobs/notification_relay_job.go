package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultNotificationRelaySchedule drains the outbox every ten seconds.
const DefaultNotificationRelaySchedule = "*/10 * * * * *"

type notificationPublisher interface {
	Handle(ctx context.Context, cmd commands.PublishNotificationsCommand) (commands.RelayReport, error)
}

// NotificationRelayJob publishes pending outbox rows to the broker.
type NotificationRelayJob struct {
	handler  notificationPublisher
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewNotificationRelayJob(handler notificationPublisher, schedule string, timeout time.Duration, logger *slog.Logger) *NotificationRelayJob {
	if schedule == "" {
		schedule = DefaultNotificationRelaySchedule
	}
	return &NotificationRelayJob{
		handler:  handler,
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "notification_relay_job"),
	}
}

func (j *NotificationRelayJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Notification relay job started", "schedule", j.schedule)
	return nil
}

// Run drains one batch.
func (j *NotificationRelayJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	report, err := j.handler.Handle(ctx, commands.NewPublishNotificationsCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Notification relay failed", "error", err)
		return
	}
	if report.Published == 0 && report.Failed == 0 {
		return
	}

	level := slog.LevelInfo
	if report.Failed > 0 {
		level = slog.LevelWarn
	}
	j.logger.Log(ctx, level, "Notification relay finished", "published", report.Published, "failed", report.Failed)
}

func (j *NotificationRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Notification relay job stopped")
}
