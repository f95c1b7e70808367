package command

import (
	"context"

	"github.com/goliatone/go-notifiarr/core"
)

type NotificationEnqueuer interface {
	EnqueueNotification(
		ctx context.Context,
		payload *core.EventPayload,
		endpoint core.EndpointConfig,
		idempotencyKey string,
	) error
}

type SendNotificationCommand struct {
	sender core.NotificationSender
}

func NewSendNotificationCommand(sender core.NotificationSender) *SendNotificationCommand {
	return &SendNotificationCommand{sender: sender}
}

func (c *SendNotificationCommand) Execute(ctx context.Context, msg SendNotificationMessage) error {
	if c == nil || c.sender == nil {
		return commandDependencyError("command: notification sender is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.sender.Send(ctx, msg.Payload, msg.Endpoint)
}

type EnqueueNotificationCommand struct {
	enqueuer NotificationEnqueuer
}

func NewEnqueueNotificationCommand(enqueuer NotificationEnqueuer) *EnqueueNotificationCommand {
	return &EnqueueNotificationCommand{enqueuer: enqueuer}
}

func (c *EnqueueNotificationCommand) Execute(ctx context.Context, msg EnqueueNotificationMessage) error {
	if c == nil || c.enqueuer == nil {
		return commandDependencyError("command: notification enqueuer is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.enqueuer.EnqueueNotification(ctx, msg.Payload, msg.Endpoint, msg.IdempotencyKey)
}
