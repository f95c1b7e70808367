package gocommand

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	notifiarrcommand "github.com/goliatone/go-notifiarr/command"
	"github.com/goliatone/go-notifiarr/core"
	notifiarrquery "github.com/goliatone/go-notifiarr/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return adapterError(goerrors.CategoryBadInput, "gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return adapterError(goerrors.CategoryBadInput, "gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return errRegistryNotConfigured()
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return errRegistryNotConfigured()
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return errRegistryNotConfigured()
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into a go-job queue registry so
// they can be scheduled for background delivery.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return adapterError(goerrors.CategoryBadInput, "gocommand: queue registry is required")
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return errRegistryNotConfigured()
	}
	return a.registry.Initialize()
}

// Handlers groups the notifiarr command and query handlers. Nil entries are
// skipped by RegisterHandlers.
type Handlers struct {
	SendNotification    *notifiarrcommand.SendNotificationCommand
	EnqueueNotification *notifiarrcommand.EnqueueNotificationCommand
	TestEndpoint        *notifiarrquery.TestEndpointQuery
	ListDispatches      *notifiarrquery.ListDispatchesQuery
}

// RegisterHandlers registers and subscribes every configured handler. On error
// the subscriptions created so far are removed.
func RegisterHandlers(
	adapter *RegistryAdapter,
	handlers Handlers,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, errRegistryNotConfigured()
	}
	subscriptions := make([]commanddispatcher.Subscription, 0, 4)
	track := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			Unsubscribe(subscriptions)
			return err
		}
		subscriptions = append(subscriptions, sub)
		return nil
	}

	if handlers.SendNotification != nil {
		if err := track(RegisterAndSubscribe[notifiarrcommand.SendNotificationMessage](
			adapter, handlers.SendNotification, runnerOpts...,
		)); err != nil {
			return nil, err
		}
	}
	if handlers.EnqueueNotification != nil {
		if err := track(RegisterAndSubscribe[notifiarrcommand.EnqueueNotificationMessage](
			adapter, handlers.EnqueueNotification, runnerOpts...,
		)); err != nil {
			return nil, err
		}
	}
	if handlers.TestEndpoint != nil {
		if err := track(RegisterAndSubscribeQuery[notifiarrquery.TestEndpointMessage, core.ValidationResult](
			adapter, handlers.TestEndpoint, runnerOpts...,
		)); err != nil {
			return nil, err
		}
	}
	if handlers.ListDispatches != nil {
		if err := track(RegisterAndSubscribeQuery[notifiarrquery.ListDispatchesMessage, core.DispatchPage](
			adapter, handlers.ListDispatches, runnerOpts...,
		)); err != nil {
			return nil, err
		}
	}
	return subscriptions, nil
}

func Unsubscribe(subscriptions []commanddispatcher.Subscription) {
	for _, sub := range subscriptions {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func SendNotification(ctx context.Context, msg notifiarrcommand.SendNotificationMessage) error {
	return Dispatch(ctx, msg)
}

func TestEndpoint(ctx context.Context, msg notifiarrquery.TestEndpointMessage) (core.ValidationResult, error) {
	return Query[notifiarrquery.TestEndpointMessage, core.ValidationResult](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, errRegistryNotConfigured()
	}
	if cmd == nil {
		return nil, adapterError(goerrors.CategoryBadInput, "gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, errRegistryNotConfigured()
	}
	if qry == nil {
		return nil, adapterError(goerrors.CategoryBadInput, "gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func errRegistryNotConfigured() error {
	return adapterError(goerrors.CategoryInternal, "gocommand: registry is not configured")
}

func adapterError(category goerrors.Category, message string) error {
	code := http.StatusInternalServerError
	textCode := core.ErrorInternal
	if category == goerrors.CategoryBadInput {
		code = http.StatusBadRequest
		textCode = core.ErrorBadInput
	}
	return goerrors.New(message, category).WithCode(code).WithTextCode(textCode)
}
