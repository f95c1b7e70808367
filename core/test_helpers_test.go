package core

import (
	"context"
	"sync"
)

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := *l.records
	out := make([]capturedLog, len(items))
	copy(out, items)
	return out
}

func (l *captureLogger) errors() []capturedLog {
	out := []capturedLog{}
	for _, record := range l.snapshot() {
		if record.level == "error" {
			out = append(out, record)
		}
	}
	return out
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type recordingSender struct {
	mu       sync.Mutex
	requests []RelayRequest
	postFn   func(ctx context.Context, req RelayRequest) (RelayResponse, error)
}

func (s *recordingSender) Post(ctx context.Context, req RelayRequest) (RelayResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.postFn != nil {
		return s.postFn(ctx, req)
	}
	return RelayResponse{StatusCode: 200}, nil
}

func (s *recordingSender) calls() []RelayRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RelayRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func statusSender(status int) *recordingSender {
	return &recordingSender{
		postFn: func(context.Context, RelayRequest) (RelayResponse, error) {
			response := RelayResponse{StatusCode: status}
			if status >= 200 && status < 300 {
				return response, nil
			}
			return RelayResponse{}, &HTTPError{StatusCode: status, Response: response}
		},
	}
}

func errorSender(err error) *recordingSender {
	return &recordingSender{
		postFn: func(context.Context, RelayRequest) (RelayResponse, error) {
			return RelayResponse{}, err
		},
	}
}

type memoryLedger struct {
	mu      sync.Mutex
	records []DispatchRecord
	err     error
}

func (l *memoryLedger) Record(_ context.Context, record DispatchRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, record)
	return nil
}

func (l *memoryLedger) snapshot() []DispatchRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]DispatchRecord, len(l.records))
	copy(out, l.records)
	return out
}

func fieldMap(fields []FormField) map[string]string {
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		out[field.Name] = field.Value
	}
	return out
}
