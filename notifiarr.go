package notifiarr

import (
	"github.com/goliatone/go-notifiarr/core"
	"github.com/goliatone/go-notifiarr/transport"
)

type Config = core.Config
type Option = core.Option
type Dispatcher = core.Dispatcher

type EndpointConfig = core.EndpointConfig
type Environment = core.Environment
type EventPayload = core.EventPayload
type FormField = core.FormField
type ValidationResult = core.ValidationResult
type FailureCategory = core.FailureCategory
type DispatchRecord = core.DispatchRecord

const (
	EnvironmentProduction  = core.EnvironmentProduction
	EnvironmentDevelopment = core.EnvironmentDevelopment
)

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithSender          = core.WithSender
	WithMetricsRecorder = core.WithMetricsRecorder
	WithLedger          = core.WithLedger
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver

	NewEventPayload = core.NewEventPayload
	Classify        = core.Classify
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// New builds a dispatcher that posts through transport.FormAdapter unless a
// sender is supplied with WithSender.
func New(cfg Config, opts ...Option) (*Dispatcher, error) {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithSender(transport.NewFormAdapter(nil)))
	all = append(all, opts...)
	return core.NewDispatcher(cfg, all...)
}
