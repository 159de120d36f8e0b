package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/ports"
)

// RelayPolicy tunes the outbox relay.
type RelayPolicy struct {
	BatchSize int
	// MaxAttempts stops retrying a message after this many failed publishes.
	MaxAttempts int
}

func DefaultRelayPolicy() RelayPolicy {
	return RelayPolicy{BatchSize: 100, MaxAttempts: 10}
}

// RelayReport summarizes one relay pass.
type RelayReport struct {
	Published int
	Failed    int
}

// PublishNotificationsCommandHandler hands pending outbox rows to the Notifier.
//
// A publish failure only bumps the message's attempt counter; order and task
// state are never touched here. Delivery is at-least-once: a crash between
// publish and commit republishes the message on the next pass.
type PublishNotificationsCommandHandler struct {
	uowFactory OutboxUoWFactory
	notifier   ports.Notifier
	policy     RelayPolicy
}

func NewPublishNotificationsCommandHandler(
	uowFactory OutboxUoWFactory,
	notifier ports.Notifier,
	policy RelayPolicy,
) PublishNotificationsCommandHandler {
	defaults := DefaultRelayPolicy()
	if policy.BatchSize <= 0 {
		policy.BatchSize = defaults.BatchSize
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	return PublishNotificationsCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		policy:     policy,
	}
}

func (h PublishNotificationsCommandHandler) Handle(ctx context.Context, cmd PublishNotificationsCommand) (RelayReport, error) {
	if err := cmd.Validate(); err != nil {
		return RelayReport{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RelayReport{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outbox := uow.OutboxRepository()
	messages, err := outbox.ListPending(ctx, h.policy.BatchSize, h.policy.MaxAttempts)
	if err != nil {
		return RelayReport{}, err
	}
	if len(messages) == 0 {
		return RelayReport{}, nil
	}

	report := RelayReport{}
	for _, m := range messages {
		if notifyErr := h.notifier.Notify(ctx, m); notifyErr != nil {
			m.MarkFailed(notifyErr)
			report.Failed++
		} else {
			m.MarkPublished(time.Now().UTC())
			report.Published++
		}

		if err = outbox.Update(ctx, m); err != nil {
			return RelayReport{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return RelayReport{}, err
	}

	return report, nil
}
