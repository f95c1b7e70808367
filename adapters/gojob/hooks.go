package gojob

import (
	"context"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue/worker"
)

// LoggingHook reports worker lifecycle events through a go-job logger. Job
// parameters are never logged since they carry the relay api key.
type LoggingHook struct {
	logger job.Logger
}

func NewLoggingHook(logger job.Logger) *LoggingHook {
	return &LoggingHook{logger: logger}
}

func (h *LoggingHook) OnStart(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Info("notification job started", eventArgs(event)...)
}

func (h *LoggingHook) OnSuccess(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Info("notification job delivered", eventArgs(event)...)
}

func (h *LoggingHook) OnFailure(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	args := eventArgs(event)
	if event.Err != nil {
		args = append(args, "error", event.Err.Error())
	}
	h.logger.Error("notification job dead-lettered", args...)
}

// OnRetry is never triggered by Worker; it is kept for go-job worker pools.
func (h *LoggingHook) OnRetry(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Info("notification job retry scheduled", eventArgs(event)...)
}

func eventArgs(event worker.Event) []any {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	args := []any{"attempt", event.Attempt}
	if message != nil {
		args = append(args,
			"job_id", message.JobID,
			"instance_name", stringParam(message.Parameters, ParamInstanceName),
		)
		if message.IdempotencyKey != "" {
			args = append(args, "idempotency_key", message.IdempotencyKey)
		}
	}
	if event.Duration > 0 {
		args = append(args, "duration_ms", event.Duration.Milliseconds())
	}
	return args
}
