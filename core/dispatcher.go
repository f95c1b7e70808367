package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const FieldInstanceName = "instanceName"

var ErrSenderNotConfigured = errors.New("core: relay sender is not configured")

// Dispatcher sends relay notifications and classifies relay failures. It holds
// no per-call state and is safe for concurrent use.
type Dispatcher struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	sender          RelaySender
	metricsRecorder MetricsRecorder
	ledger          DispatchLedger
	errorMapper     ErrorMapper
}

func NewDispatcher(cfg Config, opts ...Option) (*Dispatcher, error) {
	builder := defaultDispatcherBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("notifiarr", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("notifiarr"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.sender == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: relay sender is required"))
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Dispatcher{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		sender:          builder.sender,
		metricsRecorder: builder.metricsRecorder,
		ledger:          builder.ledger,
		errorMapper:     builder.errorMapper,
	}, nil
}

type DispatcherDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	Sender          RelaySender
	MetricsRecorder MetricsRecorder
	Ledger          DispatchLedger
	ErrorMapper     ErrorMapper
}

func (d *Dispatcher) Dependencies() DispatcherDependencies {
	if d == nil {
		return DispatcherDependencies{}
	}
	return DispatcherDependencies{
		Logger:          d.logger,
		LoggerProvider:  d.loggerProvider,
		Sender:          d.sender,
		MetricsRecorder: d.metricsRecorder,
		Ledger:          d.ledger,
		ErrorMapper:     d.errorMapper,
	}
}

func (d *Dispatcher) Config() Config {
	if d == nil {
		return DefaultConfig()
	}
	return d.config
}

// BuildRequest renders the relay form POST: instanceName first, then every
// payload entry in order.
func (d *Dispatcher) BuildRequest(payload *EventPayload, endpoint EndpointConfig) RelayRequest {
	cfg := d.Config()
	fields := make([]FormField, 0, payload.Len()+1)
	fields = append(fields, FormField{Name: FieldInstanceName, Value: endpoint.InstanceName})
	fields = append(fields, payload.Fields()...)
	return RelayRequest{
		Method: http.MethodPost,
		URL:    cfg.NotificationURL(endpoint),
		Fields: fields,
	}
}

// Send delivers one event. Every failure collapses into the same generic
// dispatch error; the classified cause is only logged.
func (d *Dispatcher) Send(ctx context.Context, payload *EventPayload, endpoint EndpointConfig) error {
	failure := d.dispatch(ctx, OperationSend, payload, endpoint)
	if failure == nil {
		return nil
	}
	d.logError(ctx, DispatchFailedMessage, failureFields(OperationSend, endpoint, failure))
	return newDispatchError(OperationSend, endpoint)
}

// Test sends a minimal test event and reports the outcome as a validation
// result. It never returns an error.
func (d *Dispatcher) Test(ctx context.Context, endpoint EndpointConfig) (result ValidationResult) {
	defer func() {
		if recovered := recover(); recovered != nil {
			failure := &Failure{
				Category: CategoryTransport,
				Err:      fmt.Errorf("core: relay sender panicked: %v", recovered),
			}
			d.logError(ctx, failure.Category.Message(PathTest), failureFields(OperationTest, endpoint, failure))
			result = ValidationResultFor(failure)
		}
	}()

	cfg := d.Config()
	payload := NewEventPayload(FormField{Name: cfg.TestEventKey, Value: cfg.TestEventValue})
	failure := d.dispatch(ctx, OperationTest, payload, endpoint)
	if failure == nil {
		return ValidationResult{}
	}
	result = ValidationResultFor(failure)
	d.logError(ctx, result.Message, failureFields(OperationTest, endpoint, failure))
	return result
}

func (d *Dispatcher) dispatch(
	ctx context.Context,
	operation Operation,
	payload *EventPayload,
	endpoint EndpointConfig,
) *Failure {
	if ctx == nil {
		ctx = context.Background()
	}
	if d == nil || d.sender == nil {
		return &Failure{Category: CategoryTransport, Err: ErrSenderNotConfigured}
	}

	startedAt := time.Now()
	req := d.BuildRequest(payload, endpoint)
	req.Metadata = map[string]any{
		"operation":     string(operation),
		"instance_name": strings.TrimSpace(endpoint.InstanceName),
		"environment":   endpoint.Environment.String(),
	}
	res, err := d.sender.Post(ctx, req)
	if err == nil && res.StatusCode != 0 && Classify(res.StatusCode) != CategoryNone {
		err = &HTTPError{StatusCode: res.StatusCode, Response: res}
	}
	failure := ClassifyError(err)

	record := DispatchRecord{
		Operation:    operation,
		InstanceName: strings.TrimSpace(endpoint.InstanceName),
		Environment:  endpoint.Environment,
		StatusCode:   res.StatusCode,
		Fields:       len(req.Fields),
		Duration:     time.Since(startedAt),
		Metadata:     res.Metadata,
	}
	if failure != nil {
		record.Category = failure.Category
		record.StatusCode = failure.StatusCode
		record.Message = failure.Category.Message(operationPath(operation))
		if operation == OperationSend {
			d.logError(ctx, record.Message, failureFields(operation, endpoint, failure))
		}
	} else {
		d.logInfo(ctx, "relay notification delivered", map[string]any{
			"operation":     string(operation),
			"instance_name": record.InstanceName,
			"environment":   endpoint.Environment.String(),
			"status_code":   res.StatusCode,
		})
	}
	d.observe(ctx, record)
	return failure
}

func operationPath(operation Operation) Path {
	if operation == OperationTest {
		return PathTest
	}
	return PathSend
}

func failureFields(operation Operation, endpoint EndpointConfig, failure *Failure) map[string]any {
	fields := map[string]any{
		"operation":     string(operation),
		"instance_name": strings.TrimSpace(endpoint.InstanceName),
		"environment":   endpoint.Environment.String(),
	}
	if failure == nil {
		return fields
	}
	fields["category"] = failure.Category.String()
	if failure.StatusCode > 0 {
		fields["status_code"] = failure.StatusCode
	}
	if failure.Err != nil {
		fields["error"] = RedactAPIKey(failure.Err.Error(), endpoint.APIKey)
	}
	return fields
}
