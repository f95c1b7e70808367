package gojob

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-notifiarr/core"
)

const (
	JobIDSendNotification = "notifiarr.notification.send"

	ParamInstanceName = "instance_name"
	ParamEnvironment  = "environment"
	ParamAPIKey       = "api_key"
	ParamFields       = "fields"

	// DedupPolicyDrop drops a job whose idempotency key is already queued.
	DedupPolicyDrop = "drop"
)

// NotificationJob is the queued form of a single Send call.
type NotificationJob struct {
	Payload        *core.EventPayload
	Endpoint       core.EndpointConfig
	IdempotencyKey string
}

// ToExecutionMessage maps a notification job to go-job. Fields are stored as
// an ordered list of name/value maps so order survives JSON backed queues.
func ToExecutionMessage(n NotificationJob) *job.ExecutionMessage {
	fields := n.Payload.Fields()
	encoded := make([]any, 0, len(fields))
	for _, field := range fields {
		encoded = append(encoded, map[string]any{"name": field.Name, "value": field.Value})
	}
	msg := &job.ExecutionMessage{
		JobID:      JobIDSendNotification,
		ScriptPath: JobIDSendNotification,
		Parameters: map[string]any{
			ParamInstanceName: n.Endpoint.InstanceName,
			ParamEnvironment:  n.Endpoint.Environment.String(),
			ParamAPIKey:       n.Endpoint.APIKey,
			ParamFields:       encoded,
		},
		IdempotencyKey: strings.TrimSpace(n.IdempotencyKey),
	}
	if msg.IdempotencyKey != "" {
		msg.DedupPolicy = job.DeduplicationPolicy(DedupPolicyDrop)
	}
	return msg
}

// FromExecutionMessage decodes a go-job message produced by ToExecutionMessage.
func FromExecutionMessage(msg *job.ExecutionMessage) (NotificationJob, error) {
	if msg == nil {
		return NotificationJob{}, jobDecodeError("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDSendNotification {
		return NotificationJob{}, jobDecodeError(fmt.Sprintf("gojob: unsupported job id %q", msg.JobID))
	}

	params := msg.Parameters
	apiKey := stringParam(params, ParamAPIKey)
	if strings.TrimSpace(apiKey) == "" {
		return NotificationJob{}, jobDecodeError("gojob: api key parameter is required")
	}
	env := core.EnvironmentProduction
	if raw := stringParam(params, ParamEnvironment); raw != "" {
		parsed, ok := core.ParseEnvironment(raw)
		if !ok {
			return NotificationJob{}, jobDecodeError(fmt.Sprintf("gojob: invalid environment %q", raw))
		}
		env = parsed
	}
	fields, err := decodeFields(params[ParamFields])
	if err != nil {
		return NotificationJob{}, err
	}

	return NotificationJob{
		Payload: core.NewEventPayload(fields...),
		Endpoint: core.EndpointConfig{
			APIKey:       apiKey,
			InstanceName: stringParam(params, ParamInstanceName),
			Environment:  env,
		},
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
	}, nil
}

func decodeFields(raw any) ([]core.FormField, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case []core.FormField:
		return append([]core.FormField(nil), typed...), nil
	case []map[string]string:
		out := make([]core.FormField, 0, len(typed))
		for _, entry := range typed {
			out = append(out, core.FormField{Name: entry["name"], Value: entry["value"]})
		}
		return out, nil
	case []map[string]any:
		out := make([]core.FormField, 0, len(typed))
		for _, entry := range typed {
			out = append(out, core.FormField{Name: stringParam(entry, "name"), Value: stringParam(entry, "value")})
		}
		return out, nil
	case []any:
		out := make([]core.FormField, 0, len(typed))
		for idx, item := range typed {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, jobDecodeError(fmt.Sprintf("gojob: field %d must be an object", idx))
			}
			out = append(out, core.FormField{Name: stringParam(entry, "name"), Value: stringParam(entry, "value")})
		}
		return out, nil
	default:
		return nil, jobDecodeError(fmt.Sprintf("gojob: unsupported fields parameter %T", raw))
	}
}

func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	switch value := params[key].(type) {
	case nil:
		return ""
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}

func jobDecodeError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorBadInput)
}

func jobDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ErrorInternal)
}
