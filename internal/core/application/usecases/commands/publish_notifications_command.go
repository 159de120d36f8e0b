package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrPublishNotificationsCommandIsNotConstructed = errors.New(
	"PublishNotificationsCommand must be created via NewPublishNotificationsCommand constructor",
)

// PublishNotificationsCommand triggers one relay pass over the notification outbox.
type PublishNotificationsCommand struct {
	guard guard.ConstructorGuard
}

func NewPublishNotificationsCommand() PublishNotificationsCommand {
	return PublishNotificationsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *PublishNotificationsCommand) Validate() error {
	return c.guard.Validate(
		ErrPublishNotificationsCommandIsNotConstructed,
	)
}
