package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorBadInput       = "NOTIFIARR_BAD_INPUT"
	ErrorUnauthorized   = "NOTIFIARR_UNAUTHORIZED"
	ErrorRelayRejected  = "NOTIFIARR_RELAY_REJECTED"
	ErrorUpstreamEdge   = "NOTIFIARR_UPSTREAM_EDGE"
	ErrorUnknownHTTP    = "NOTIFIARR_UNKNOWN_HTTP"
	ErrorTransport      = "NOTIFIARR_TRANSPORT"
	ErrorDispatchFailed = "NOTIFIARR_DISPATCH_FAILED"
	ErrorInternal       = "NOTIFIARR_INTERNAL_ERROR"
)

// DispatchFailedMessage is the only message callers of Send ever see.
const DispatchFailedMessage = "Unable to send notification"

// HTTPError is returned by a RelaySender when the relay answers with a non-2xx
// status.
type HTTPError struct {
	StatusCode int
	Response   RelayResponse
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	text := http.StatusText(e.StatusCode)
	if text == "" {
		return fmt.Sprintf("relay responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("relay responded with status %d %s", e.StatusCode, text)
}

func newDispatchError(operation Operation, endpoint EndpointConfig) *goerrors.Error {
	return goerrors.New(DispatchFailedMessage, goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorDispatchFailed).
		WithMetadata(map[string]any{
			"operation":     string(operation),
			"instance_name": strings.TrimSpace(endpoint.InstanceName),
		})
}

// FailureError renders a classified failure as a go-errors envelope for
// callers that report relay failures in detail.
func FailureError(failure *Failure) *goerrors.Error {
	if failure == nil {
		return nil
	}
	category, textCode := failureErrorCategory(failure.Category)
	message := failure.Category.Message(PathSend)
	var err *goerrors.Error
	if failure.Err != nil {
		err = goerrors.Wrap(failure.Err, category, message)
	} else {
		err = goerrors.New(message, category)
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(textCode)
	metadata := map[string]any{"category": failure.Category.String()}
	if failure.StatusCode > 0 {
		metadata["status_code"] = failure.StatusCode
	}
	return err.WithMetadata(metadata)
}

func failureErrorCategory(category FailureCategory) (goerrors.Category, string) {
	switch category {
	case CategoryAuthentication:
		return goerrors.CategoryAuth, ErrorUnauthorized
	case CategoryConfiguration:
		return goerrors.CategoryBadInput, ErrorRelayRejected
	case CategoryUpstreamEdge:
		return goerrors.CategoryExternal, ErrorUpstreamEdge
	case CategoryTransport:
		return goerrors.CategoryExternal, ErrorTransport
	default:
		return goerrors.CategoryExternal, ErrorUnknownHTTP
	}
}

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must"):
		return newCoreError(err.Error(), goerrors.CategoryBadInput, ErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func newCoreError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = errorHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorUnauthorized
	case goerrors.CategoryExternal:
		return ErrorTransport
	default:
		return ErrorInternal
	}
}

func errorHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
