package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// RelayRequest is one form POST. Metadata describes the dispatch for the
// sender and is echoed into RelayResponse.Metadata; it is never sent.
type RelayRequest struct {
	Method   string
	URL      string
	Fields   []FormField
	Metadata map[string]any
}

type RelayResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// RelaySender performs the HTTP round trip. Non-2xx responses must be returned
// as *HTTPError so they stay distinguishable from transport failures.
type RelaySender interface {
	Post(ctx context.Context, req RelayRequest) (RelayResponse, error)
}

type RelaySenderFunc func(ctx context.Context, req RelayRequest) (RelayResponse, error)

func (f RelaySenderFunc) Post(ctx context.Context, req RelayRequest) (RelayResponse, error) {
	return f(ctx, req)
}

type NotificationSender interface {
	Send(ctx context.Context, payload *EventPayload, endpoint EndpointConfig) error
}

type EndpointTester interface {
	Test(ctx context.Context, endpoint EndpointConfig) ValidationResult
}

type Notifier interface {
	NotificationSender
	EndpointTester
}

// DispatchLedger observes dispatch outcomes. Implementations must not change
// the outcome reported to the caller.
type DispatchLedger interface {
	Record(ctx context.Context, record DispatchRecord) error
}

type DispatchReader interface {
	List(ctx context.Context, filter DispatchFilter) (DispatchPage, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
