package gojob

import (
	"context"
	"time"

	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	"github.com/goliatone/go-notifiarr/core"
)

const (
	NackReasonInvalidJob = "invalid notification job"
	NackReasonSendFailed = "notification send failed"
)

// Worker delivers queued notifications one at a time. Sends are single shot:
// a failed delivery is dead-lettered and never requeued.
type Worker struct {
	dequeuer queue.Dequeuer
	sender   core.NotificationSender
	hook     worker.Hook
	now      func() time.Time
}

type WorkerOption func(*Worker)

func WithWorkerHook(hook worker.Hook) WorkerOption {
	return func(w *Worker) {
		w.hook = hook
	}
}

func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

func NewWorker(dequeuer queue.Dequeuer, sender core.NotificationSender, opts ...WorkerOption) *Worker {
	w := &Worker{
		dequeuer: dequeuer,
		sender:   sender,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// ProcessNext dequeues one delivery and settles it. The returned error is the
// send or decode failure after the delivery was nacked, or a queue error.
func (w *Worker) ProcessNext(ctx context.Context) error {
	if w == nil || w.dequeuer == nil || w.sender == nil {
		return jobDependencyError("gojob: worker is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}

	msg := delivery.Message()
	event := worker.Event{
		Message:   msg,
		Delivery:  delivery,
		Attempt:   1,
		StartedAt: w.now(),
	}
	w.onStart(ctx, event)

	n, err := FromExecutionMessage(msg)
	if err != nil {
		return w.fail(ctx, delivery, event, err, NackReasonInvalidJob)
	}
	if err := w.sender.Send(ctx, n.Payload, n.Endpoint); err != nil {
		return w.fail(ctx, delivery, event, err, NackReasonSendFailed)
	}
	if err := delivery.Ack(ctx); err != nil {
		return err
	}

	event.Duration = w.now().Sub(event.StartedAt)
	w.onSuccess(ctx, event)
	return nil
}

func (w *Worker) fail(
	ctx context.Context,
	delivery queue.Delivery,
	event worker.Event,
	cause error,
	reason string,
) error {
	event.Err = cause
	event.Duration = w.now().Sub(event.StartedAt)
	if err := delivery.Nack(ctx, queue.NackOptions{
		Requeue:    false,
		DeadLetter: true,
		Reason:     reason,
	}); err != nil {
		return err
	}
	w.onFailure(ctx, event)
	return cause
}

func (w *Worker) onStart(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnStart(ctx, event)
	}
}

func (w *Worker) onSuccess(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnSuccess(ctx, event)
	}
}

func (w *Worker) onFailure(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnFailure(ctx, event)
	}
}
