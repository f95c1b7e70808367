package command

import (
	"strings"

	"github.com/goliatone/go-notifiarr/core"
)

const (
	TypeSendNotification    = "notifiarr.command.notification.send"
	TypeEnqueueNotification = "notifiarr.command.notification.enqueue"
)

type SendNotificationMessage struct {
	Payload  *core.EventPayload
	Endpoint core.EndpointConfig
}

func (SendNotificationMessage) Type() string { return TypeSendNotification }

func (m SendNotificationMessage) Validate() error {
	return validateEndpoint(m.Endpoint)
}

type EnqueueNotificationMessage struct {
	Payload        *core.EventPayload
	Endpoint       core.EndpointConfig
	IdempotencyKey string
}

func (EnqueueNotificationMessage) Type() string { return TypeEnqueueNotification }

func (m EnqueueNotificationMessage) Validate() error {
	return validateEndpoint(m.Endpoint)
}

func validateEndpoint(endpoint core.EndpointConfig) error {
	if strings.TrimSpace(endpoint.APIKey) == "" {
		return commandValidationError("endpoint.api_key", "api key is required")
	}
	switch endpoint.Environment {
	case core.EnvironmentProduction, core.EnvironmentDevelopment:
	default:
		return commandValidationError("endpoint.environment", "environment must be production or development")
	}
	return nil
}
