// Package amqp publishes outbox notifications to a RabbitMQ topic exchange.
//
// Every Notify call dials, publishes and closes. The process keeps no broker
// connection between relay runs, so a broker restart needs no reconnect logic.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange    = "fulfillment.notifications"
	DefaultDialTimeout = 5 * time.Second
	DefaultMaxRetries  = 3

	routingKeyPrefix = "notification."
)

type Config struct {
	URL         string
	Exchange    string
	DialTimeout time.Duration
	MaxRetries  uint64
	// InitialInterval is the first backoff delay; zero keeps the backoff default.
	InitialInterval time.Duration
}

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connection interface {
	Channel() (channel, error)
	Close() error
}

type dialer func(url string, timeout time.Duration) (connection, error)

type Notifier struct {
	cfg    Config
	dial   dialer
	logger *slog.Logger
}

func NewNotifier(cfg Config, logger *slog.Logger) (*Notifier, error) {
	return newNotifier(cfg, dialBroker, logger)
}

func newNotifier(cfg Config, dial dialer, logger *slog.Logger) (*Notifier, error) {
	if cfg.URL == "" {
		return nil, errs.NewValueIsRequiredError("amqp url")
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		cfg:    cfg,
		dial:   dial,
		logger: logger.With("component", "amqp_notifier"),
	}, nil
}

type envelope struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	OrderID     string         `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	Payload     map[string]any `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Notify publishes message with routing key "notification.<kind>", retrying
// dial and publish failures with exponential backoff.
func (n *Notifier) Notify(ctx context.Context, message *notification.Message) error {
	if message == nil {
		return errs.NewValueIsRequiredError("notification")
	}

	body, err := json.Marshal(envelope{
		ID:          message.ID().String(),
		Kind:        string(message.Kind()),
		OrderID:     message.OrderID().String(),
		OrderNumber: message.OrderNumber(),
		Payload:     message.Payload(),
		CreatedAt:   message.CreatedAt(),
	})
	if err != nil {
		return fmt.Errorf("encode notification %s: %w", message.ID(), err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    message.ID().String(),
		Type:         string(message.Kind()),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	key := routingKeyPrefix + string(message.Kind())

	attempt := 0
	operation := func() error {
		attempt++
		perr := n.publish(ctx, key, publishing)
		if perr != nil {
			n.logger.WarnContext(ctx, "publish attempt failed",
				"message_id", publishing.MessageId,
				"kind", publishing.Type,
				"attempt", attempt,
				"error", perr,
			)
		}
		return perr
	}

	if err = backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(n.newBackOff(), n.cfg.MaxRetries), ctx)); err != nil {
		metrics.NotificationsTotal.WithLabelValues(publishing.Type, "failed").Inc()
		return errs.NewGatewayUnavailableErrorWithCause("publish notification", err)
	}

	metrics.NotificationsTotal.WithLabelValues(publishing.Type, "published").Inc()
	n.logger.DebugContext(ctx, "notification published",
		"message_id", publishing.MessageId,
		"kind", publishing.Type,
		"order_number", message.OrderNumber(),
	)
	return nil
}

func (n *Notifier) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	conn, err := n.dial(n.cfg.URL, n.cfg.DialTimeout)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() {
		_ = ch.Close()
	}()

	if err = ch.ExchangeDeclare(n.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", n.cfg.Exchange, err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, n.cfg.DialTimeout)
	defer cancel()

	if err = ch.PublishWithContext(publishCtx, n.cfg.Exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", n.cfg.Exchange, err)
	}
	return nil
}

func (n *Notifier) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if n.cfg.InitialInterval > 0 {
		b.InitialInterval = n.cfg.InitialInterval
	}
	b.MaxElapsedTime = 0
	return b
}

type brokerConnection struct {
	*amqp.Connection
}

func (c brokerConnection) Channel() (channel, error) {
	return c.Connection.Channel()
}

func dialBroker(url string, timeout time.Duration) (connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return brokerConnection{conn}, nil
}
