package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// DefaultPaymentSweepSchedule runs the sweep every five minutes.
const DefaultPaymentSweepSchedule = "0 */5 * * * *"

type paymentSweeper interface {
	Handle(ctx context.Context, cmd commands.SweepPendingPaymentsCommand) (commands.SweepReport, error)
}

// PaymentSweepJob reconciles unpaid orders against the gateway on a schedule
// and sends payment reminders. Per-order failures are logged and never abort
// the pass.
type PaymentSweepJob struct {
	handler  paymentSweeper
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewPaymentSweepJob creates the sweep job. An empty schedule falls back to
// DefaultPaymentSweepSchedule. Each pass is bounded by timeout.
func NewPaymentSweepJob(handler paymentSweeper, schedule string, timeout time.Duration, logger *slog.Logger) *PaymentSweepJob {
	if schedule == "" {
		schedule = DefaultPaymentSweepSchedule
	}
	return &PaymentSweepJob{
		handler:  handler,
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "payment_sweep_job"),
	}
}

func (j *PaymentSweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Payment sweep job started", "schedule", j.schedule)
	return nil
}

// Run performs one pass.
func (j *PaymentSweepJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	report, err := j.handler.Handle(ctx, commands.NewSweepPendingPaymentsCommand())

	metrics.SweepRunsTotal.WithLabelValues("checked").Add(float64(report.Checked))
	metrics.SweepRunsTotal.WithLabelValues("changed").Add(float64(report.Changed))
	metrics.SweepRunsTotal.WithLabelValues("expired").Add(float64(report.Expired))
	metrics.SweepRunsTotal.WithLabelValues("reminded").Add(float64(report.Reminded))
	metrics.SweepRunsTotal.WithLabelValues("failed").Add(float64(len(report.Failures)))

	for _, f := range report.Failures {
		j.logger.WarnContext(ctx, "Order reconciliation failed", "order_number", f.OrderNumber, "error", f.Err)
	}
	if err != nil {
		j.logger.ErrorContext(ctx, "Payment sweep failed", "error", err)
		return
	}

	if report.Checked == 0 {
		j.logger.DebugContext(ctx, "No orders awaiting payment")
		return
	}
	j.logger.InfoContext(ctx, "Payment sweep finished",
		"checked", report.Checked,
		"changed", report.Changed,
		"expired", report.Expired,
		"reminded", report.Reminded,
		"failed", len(report.Failures),
	)
}

func (j *PaymentSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Payment sweep job stopped")
}
