package core

import (
	"context"
	"sort"
	"strings"
	"time"
)

func (d *Dispatcher) observe(ctx context.Context, record DispatchRecord) {
	if d == nil {
		return
	}
	status := "success"
	if !record.Succeeded() {
		status = "failure"
	}
	tags := map[string]string{
		"operation":   string(record.Operation),
		"status":      status,
		"category":    record.Category.String(),
		"environment": record.Environment.String(),
	}
	d.recordCounter(ctx, "notifiarr."+string(record.Operation)+".total", 1, tags)
	d.recordHistogram(ctx, "notifiarr."+string(record.Operation)+".duration_ms", float64(record.Duration.Milliseconds()), tags)

	if d.ledger == nil {
		return
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.Metadata = RedactSensitiveMap(record.Metadata)
	if err := d.ledger.Record(ctx, record); err != nil {
		d.logError(ctx, "dispatch ledger record failed", map[string]any{
			"operation":     string(record.Operation),
			"instance_name": record.InstanceName,
			"error":         err.Error(),
		})
	}
}

func (d *Dispatcher) logInfo(ctx context.Context, message string, fields map[string]any) {
	d.logWithLevel(ctx, "info", message, fields)
}

func (d *Dispatcher) logError(ctx context.Context, message string, fields map[string]any) {
	d.logWithLevel(ctx, "error", message, fields)
}

func (d *Dispatcher) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if d == nil || d.logger == nil {
		return
	}
	fields = RedactSensitiveMap(fields)
	logger := d.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (d *Dispatcher) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if d == nil || d.metricsRecorder == nil {
		return
	}
	d.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (d *Dispatcher) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if d == nil || d.metricsRecorder == nil {
		return
	}
	d.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
