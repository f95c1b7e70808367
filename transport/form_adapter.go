package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notifiarr/core"
)

const ContentTypeForm = "application/x-www-form-urlencoded"

const defaultFormClientTimeout = 30 * time.Second
const defaultFormResponseBodyLimit int64 = 1 << 20 // 1 MiB

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FormAdapter posts relay requests as url-encoded forms. Connection reuse and
// timeouts belong to the wrapped client.
type FormAdapter struct {
	Client               HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewFormAdapter(client HTTPDoer) *FormAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultFormClientTimeout}
	}
	return &FormAdapter{
		Client:               client,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultFormResponseBodyLimit,
	}
}

func (a *FormAdapter) Post(ctx context.Context, req core.RelayRequest) (core.RelayResponse, error) {
	if a == nil || a.Client == nil {
		return core.RelayResponse{}, transportError(
			"transport: form adapter requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodPost
	}
	parsedURL, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil {
		return core.RelayResponse{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid request url",
			http.StatusBadRequest,
			nil,
		)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return core.RelayResponse{}, transportError(
			"transport: request url must be absolute",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, parsedURL.String(), strings.NewReader(EncodeForm(req.Fields)))
	if err != nil {
		return core.RelayResponse{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			map[string]any{"method": method},
		)
	}
	for key, value := range a.DefaultHeaders {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	httpReq.Header.Set("Content-Type", ContentTypeForm)

	startedAt := time.Now().UTC()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		return core.RelayResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			withRequestMetadata(req, map[string]any{"method": method, "host": parsedURL.Host}),
		)
	}
	defer httpRes.Body.Close()

	maxBodyBytes := resolveResponseBodyLimit(a.MaxResponseBodyBytes)
	body, err := io.ReadAll(io.LimitReader(httpRes.Body, maxBodyBytes))
	if err != nil {
		return core.RelayResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			map[string]any{"status_code": httpRes.StatusCode},
		)
	}

	response := core.RelayResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    flattenHeaders(httpRes.Header),
		Body:       body,
		Metadata: withRequestMetadata(req, map[string]any{
			"duration_ms": time.Since(startedAt).Milliseconds(),
		}),
	}
	if httpRes.StatusCode < 200 || httpRes.StatusCode > 299 {
		return response, &core.HTTPError{StatusCode: httpRes.StatusCode, Response: response}
	}
	return response, nil
}

// withRequestMetadata copies request metadata into fields without overriding
// keys the adapter set itself.
func withRequestMetadata(req core.RelayRequest, fields map[string]any) map[string]any {
	for key, value := range req.Metadata {
		if _, exists := fields[key]; !exists {
			fields[key] = value
		}
	}
	return fields
}

// EncodeForm url-encodes fields in the order given. url.Values would sort
// them by key.
func EncodeForm(fields []core.FormField) string {
	if len(fields) == 0 {
		return ""
	}
	var builder strings.Builder
	for i, field := range fields {
		if i > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(url.QueryEscape(field.Name))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(field.Value))
	}
	return builder.String()
}

func flattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			flat[key] = ""
			continue
		}
		flat[key] = strings.Join(values, ",")
	}
	return flat
}

func resolveResponseBodyLimit(limit int64) int64 {
	if limit > 0 {
		return limit
	}
	return defaultFormResponseBodyLimit
}

var _ core.RelaySender = (*FormAdapter)(nil)
