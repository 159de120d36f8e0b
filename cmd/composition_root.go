package cmd

import (
	"fmt"
	"log/slog"
	"time"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/amqp"
	"fulfillment/internal/adapters/out/gateway"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Background job runs get this long before their context is cancelled.
const jobTimeout = 2 * time.Minute

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	gateway    *gateway.Client
	notifier   *amqp.Notifier
	logger     *slog.Logger
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	gw, err := gateway.NewClient(gateway.Config{
		BaseURL: cfg.GatewayBaseURL,
		Project: cfg.GatewayProject,
		APIKey:  cfg.GatewayAPIKey,
		Timeout: cfg.GatewayTimeout,
	}, logger)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("payment gateway: %w", err)
	}

	notifier, err := amqp.NewNotifier(amqp.Config{
		URL:      cfg.AMQPURL,
		Exchange: cfg.AMQPExchange,
	}, logger)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("notifier: %w", err)
	}

	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		gateway:    gw,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uowFactoryForTasks() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateReconcilePaymentCommandHandler() commands.ReconcilePaymentCommandHandler {
	return commands.NewReconcilePaymentCommandHandler(c.orderUoWFactory(), c.gateway, c.cfg.GatewayTimeout)
}

func (c *CompositionRoot) CreateSweepPendingPaymentsCommandHandler() commands.SweepPendingPaymentsCommandHandler {
	return commands.NewSweepPendingPaymentsCommandHandler(
		c.orderUoWFactory(),
		c.CreateReconcilePaymentCommandHandler(),
		commands.SweepPolicy{
			BatchSize:     c.cfg.SweepBatchSize,
			ReminderDelay: c.cfg.ReminderDelay,
			ExpiryWindow:  c.cfg.PaymentExpiryWindow,
		},
	)
}

func (c *CompositionRoot) CreateSubmitPaymentProofCommandHandler() commands.SubmitPaymentProofCommandHandler {
	return commands.NewSubmitPaymentProofCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateReviewPaymentCommandHandler() commands.ReviewPaymentCommandHandler {
	return commands.NewReviewPaymentCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateDispatchTaskCommandHandler() commands.DispatchTaskCommandHandler {
	return commands.NewDispatchTaskCommandHandler(c.uowFactoryForTasks())
}

func (c *CompositionRoot) CreateAdvanceTaskCommandHandler() commands.AdvanceTaskCommandHandler {
	return commands.NewAdvanceTaskCommandHandler(c.uowFactoryForTasks())
}

func (c *CompositionRoot) CreateCompleteTaskCommandHandler() commands.CompleteTaskCommandHandler {
	return commands.NewCompleteTaskCommandHandler(c.uowFactoryForTasks())
}

func (c *CompositionRoot) CreateRecordPingCommandHandler() commands.RecordPingCommandHandler {
	var f commands.PingUoWFactory = FuncPingUoWFactory(func() commands.PingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordPingCommandHandler(f, c.cfg.MinPingInterval)
}

func (c *CompositionRoot) CreatePublishNotificationsCommandHandler() commands.PublishNotificationsCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPublishNotificationsCommandHandler(f, c.notifier, commands.DefaultRelayPolicy())
}

func (c *CompositionRoot) CreateTrackOrderQueryHandler() queries.TrackOrderQueryHandler {
	return queries.NewTrackOrderQueryHandler(c.gormDB)
}

// NewHTTPServer wires every use case behind the echo router.
func (c *CompositionRoot) NewHTTPServer() (*echo.Echo, error) {
	auth, err := httpin.NewAuthenticator(c.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	server := httpin.NewServer(httpin.Handlers{
		CreateOrder:        c.CreateCreateOrderCommandHandler(),
		ReconcilePayment:   c.CreateReconcilePaymentCommandHandler(),
		SubmitPaymentProof: c.CreateSubmitPaymentProofCommandHandler(),
		ReviewPayment:      c.CreateReviewPaymentCommandHandler(),
		DispatchTask:       c.CreateDispatchTaskCommandHandler(),
		AdvanceTask:        c.CreateAdvanceTaskCommandHandler(),
		CompleteTask:       c.CreateCompleteTaskCommandHandler(),
		RecordPing:         c.CreateRecordPingCommandHandler(),
		TrackOrder:         c.CreateTrackOrderQueryHandler(),
	}, c.cfg.GatewayProject, c.logger)

	return httpin.NewRouter(server, auth, c.logger)
}

func (c *CompositionRoot) NewJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewPaymentSweepJob(c.CreateSweepPendingPaymentsCommandHandler(), c.cfg.SweepSchedule, jobTimeout, c.logger),
		jobs.NewNotificationRelayJob(c.CreatePublishNotificationsCommandHandler(), c.cfg.RelaySchedule, jobTimeout, c.logger),
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncPingUoWFactory func() commands.PingUoW

func (f FuncPingUoWFactory) Create() commands.PingUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
