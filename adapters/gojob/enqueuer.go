package gojob

import (
	"context"

	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-notifiarr/core"
)

type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, n NotificationJob) error {
	if a == nil || a.enqueuer == nil {
		return jobDependencyError("gojob: enqueuer is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return a.enqueuer.Enqueue(ctx, ToExecutionMessage(n))
}

func (a *EnqueuerAdapter) EnqueueNotification(
	ctx context.Context,
	payload *core.EventPayload,
	endpoint core.EndpointConfig,
	idempotencyKey string,
) error {
	return a.Enqueue(ctx, NotificationJob{
		Payload:        payload,
		Endpoint:       endpoint,
		IdempotencyKey: idempotencyKey,
	})
}
