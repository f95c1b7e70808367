package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type FailureCategory string

const (
	CategoryNone           FailureCategory = ""
	CategoryAuthentication FailureCategory = "authentication"
	CategoryConfiguration  FailureCategory = "configuration"
	CategoryUpstreamEdge   FailureCategory = "upstream_edge"
	CategoryUnknownHTTP    FailureCategory = "unknown_http"
	CategoryTransport      FailureCategory = "transport"
)

// Classify maps a relay response status to a failure category. 2xx statuses
// are not failures.
func Classify(statusCode int) FailureCategory {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return CategoryNone
	case statusCode == http.StatusUnauthorized:
		return CategoryAuthentication
	case statusCode == http.StatusBadRequest:
		return CategoryConfiguration
	case statusCode >= 520 && statusCode <= 524:
		return CategoryUpstreamEdge
	default:
		return CategoryUnknownHTTP
	}
}

// Path selects the wording of a category message: live sends talk about the
// notification, connectivity tests about the test message.
type Path string

const (
	PathSend Path = "send"
	PathTest Path = "test"
)

func (c FailureCategory) Message(path Path) string {
	subject := "notification"
	if path == PathTest {
		subject = "test message"
	}
	switch c {
	case CategoryNone:
		return ""
	case CategoryAuthentication:
		return "API key is invalid"
	case CategoryConfiguration:
		return fmt.Sprintf(
			"Unable to send %s. Ensure Radarr Integration is enabled & assigned a channel on Notifiarr",
			subject,
		)
	case CategoryUpstreamEdge:
		return "Cloudflare Related HTTP Error - Unable to send " + subject
	case CategoryTransport:
		if path == PathTest {
			return "Unable to send test notification"
		}
		return "Unable to send notification"
	default:
		return "Unknown HTTP Error - Unable to send " + subject
	}
}

// FieldAPIKey names the api key settings field in validation results.
const FieldAPIKey = "APIKey"

// Field returns the settings field a category points at in a validation
// result; empty means a general error.
func (c FailureCategory) Field() string {
	if c == CategoryAuthentication {
		return FieldAPIKey
	}
	return ""
}

func (c FailureCategory) String() string {
	if c == CategoryNone {
		return "none"
	}
	return string(c)
}

// Failure is the classified outcome of one relay call. It wraps the transport
// error it was derived from.
type Failure struct {
	Category   FailureCategory
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	message := f.Category.Message(PathSend)
	if f.StatusCode > 0 {
		message = fmt.Sprintf("%s (status %d)", message, f.StatusCode)
	}
	if f.Err != nil {
		message += ": " + strings.TrimSpace(f.Err.Error())
	}
	return message
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// ClassifyError turns a sender error into a Failure. HTTP status errors are
// classified by status; anything else is a transport failure.
func ClassifyError(err error) *Failure {
	if err == nil {
		return nil
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		category := Classify(httpErr.StatusCode)
		if category == CategoryNone {
			category = CategoryUnknownHTTP
		}
		return &Failure{
			Category:   category,
			StatusCode: httpErr.StatusCode,
			Err:        err,
		}
	}
	return &Failure{Category: CategoryTransport, Err: err}
}

// ValidationResultFor renders a failure for the settings validator.
func ValidationResultFor(failure *Failure) ValidationResult {
	if failure == nil || failure.Category == CategoryNone {
		return ValidationResult{}
	}
	return ValidationResult{
		Field:   failure.Category.Field(),
		Message: failure.Category.Message(PathTest),
	}
}
