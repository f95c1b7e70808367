package query

import (
	"strings"

	"github.com/goliatone/go-notifiarr/core"
)

const (
	TypeTestEndpoint   = "notifiarr.query.endpoint.test"
	TypeListDispatches = "notifiarr.query.dispatches.list"
)

const MaxDispatchesPerPage = 200

type TestEndpointMessage struct {
	Endpoint core.EndpointConfig
}

func (TestEndpointMessage) Type() string { return TypeTestEndpoint }

// Validate rejects malformed messages. A missing api key is not an error here:
// the query reports it as a field-tagged ValidationResult.
func (m TestEndpointMessage) Validate() error {
	switch m.Endpoint.Environment {
	case core.EnvironmentProduction, core.EnvironmentDevelopment:
	default:
		return queryValidationError("endpoint.environment", "environment must be production or development")
	}
	return nil
}

func (m TestEndpointMessage) missingAPIKey() bool {
	return strings.TrimSpace(m.Endpoint.APIKey) == ""
}

type ListDispatchesMessage struct {
	Filter core.DispatchFilter
}

func (ListDispatchesMessage) Type() string { return TypeListDispatches }

func (m ListDispatchesMessage) Validate() error {
	if m.Filter.Page < 0 {
		return queryValidationError("filter.page", "page must be zero or positive")
	}
	if m.Filter.PerPage < 0 {
		return queryValidationError("filter.per_page", "per_page must be zero or positive")
	}
	if m.Filter.PerPage > MaxDispatchesPerPage {
		return queryValidationError("filter.per_page", "per_page must not exceed 200")
	}
	switch m.Filter.Operation {
	case "", core.OperationSend, core.OperationTest:
	default:
		return queryValidationError("filter.operation", "operation must be send or test")
	}
	return nil
}
