package ginapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	notifiarr "github.com/goliatone/go-notifiarr"
	"github.com/goliatone/go-notifiarr/core"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryLedger struct {
	mu      sync.Mutex
	records []core.DispatchRecord
}

func (l *memoryLedger) Record(_ context.Context, record core.DispatchRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *memoryLedger) List(_ context.Context, filter core.DispatchFilter) (core.DispatchPage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := []core.DispatchRecord{}
	for _, record := range l.records {
		if filter.InstanceName != "" && record.InstanceName != filter.InstanceName {
			continue
		}
		items = append(items, record)
	}
	return core.DispatchPage{Items: items, Page: 1, PerPage: 25, Total: len(items)}, nil
}

type recordingEnqueuer struct {
	key string
}

func (e *recordingEnqueuer) EnqueueNotification(_ context.Context, _ *core.EventPayload, _ core.EndpointConfig, key string) error {
	e.key = key
	return nil
}

type relay struct {
	mu     sync.Mutex
	status int
	paths  []string
	forms  []url.Values
}

func newTestRouter(t *testing.T, status int, opts ...notifiarr.FacadeOption) (*gin.Engine, *relay) {
	t.Helper()
	rl := &relay{status: status}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		rl.mu.Lock()
		rl.paths = append(rl.paths, r.URL.Path)
		rl.forms = append(rl.forms, r.PostForm)
		rl.mu.Unlock()
		w.WriteHeader(rl.status)
	}))
	t.Cleanup(server.Close)

	cfg := notifiarr.DefaultConfig()
	cfg.ProductionBaseURL = server.URL
	cfg.DevelopmentBaseURL = server.URL
	dispatcher, err := notifiarr.New(cfg, notifiarr.WithLedger(&memoryLedger{}))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	facade, err := notifiarr.NewFacade(dispatcher, opts...)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	return NewRouter(facade), rl
}

func doJSON(t *testing.T, r http.Handler, method string, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSendNotificationRoute(t *testing.T) {
	router, rl := newTestRouter(t, http.StatusOK)
	rec := doJSON(t, router, http.MethodPost, "/notifications", map[string]any{
		"instance_name": "radarr",
		"fields": []map[string]string{
			{"name": "EventType", "value": "Download"},
			{"name": "Movie", "value": "Heat"},
		},
	}, map[string]string{HeaderAPIKey: "key-1"})

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(rl.paths) != 1 || rl.paths[0] != "/api/v1/notification/radarr/key-1" {
		t.Fatalf("unexpected relay paths: %v", rl.paths)
	}
	if rl.forms[0].Get("Movie") != "Heat" || rl.forms[0].Get("instanceName") != "radarr" {
		t.Fatalf("unexpected relay form: %v", rl.forms[0])
	}
}

func TestSendNotificationRouteRendersGenericError(t *testing.T) {
	router, _ := newTestRouter(t, http.StatusBadRequest)
	rec := doJSON(t, router, http.MethodPost, "/notifications", map[string]any{
		"api_key": "key-1",
	}, nil)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			TextCode string `json:"text_code"`
			Message  string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.TextCode != core.ErrorDispatchFailed || body.Error.Message != core.DispatchFailedMessage {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
}

func TestSendNotificationRouteRejectsMissingAPIKey(t *testing.T) {
	router, rl := newTestRouter(t, http.StatusOK)
	rec := doJSON(t, router, http.MethodPost, "/notifications", map[string]any{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(rl.paths) != 0 {
		t.Fatalf("expected no relay call")
	}
}

func TestSendNotificationRouteRejectsBadEnvironment(t *testing.T) {
	router, _ := newTestRouter(t, http.StatusOK)
	rec := doJSON(t, router, http.MethodPost, "/notifications", map[string]any{
		"api_key":     "key-1",
		"environment": "staging",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTestEndpointRoute(t *testing.T) {
	router, rl := newTestRouter(t, http.StatusUnauthorized)
	rec := doJSON(t, router, http.MethodPost, "/endpoints/test", map[string]any{
		"api_key":     "bad",
		"environment": "development",
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.OK || body.Field != "APIKey" || body.Message != "API key is invalid" {
		t.Fatalf("unexpected test response: %+v", body)
	}
	if rl.forms[0].Get("EventType") != "Test" {
		t.Fatalf("expected test payload, got %v", rl.forms[0])
	}
}

func TestTestEndpointRouteMissingAPIKey(t *testing.T) {
	router, rl := newTestRouter(t, http.StatusOK)
	rec := doJSON(t, router, http.MethodPost, "/endpoints/test", map[string]any{
		"environment": "production",
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.OK || body.Field != "APIKey" || body.Message != "API key is required" {
		t.Fatalf("unexpected test response: %+v", body)
	}
	if len(rl.forms) != 0 {
		t.Fatalf("expected no relay call, got %d", len(rl.forms))
	}
}

func TestQueueRouteUsesIdempotencyHeader(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	router, rl := newTestRouter(t, http.StatusOK, notifiarr.WithEnqueuer(enqueuer))
	rec := doJSON(t, router, http.MethodPost, "/notifications/queue", map[string]any{
		"api_key":         "key-1",
		"idempotency_key": "body-key",
	}, map[string]string{"Idempotency-Key": "header-key"})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if enqueuer.key != "header-key" {
		t.Fatalf("expected header idempotency key, got %q", enqueuer.key)
	}
	if len(rl.paths) != 0 {
		t.Fatalf("expected no synchronous relay call")
	}
}

func TestQueueRouteWithoutEnqueuer(t *testing.T) {
	router, _ := newTestRouter(t, http.StatusOK)
	rec := doJSON(t, router, http.MethodPost, "/notifications/queue", map[string]any{"api_key": "k"}, nil)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}

func TestDispatchesRoute(t *testing.T) {
	router, _ := newTestRouter(t, http.StatusNoContent)
	for _, instance := range []string{"radarr", "radarr-4k"} {
		rec := doJSON(t, router, http.MethodPost, "/notifications", map[string]any{
			"api_key":       "key-1",
			"instance_name": instance,
		}, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("send %s: expected 204, got %d", instance, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/dispatches?instance_name=radarr-4k", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page pageJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || page.Items[0].InstanceName != "radarr-4k" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Items[0].Category != "none" || page.Items[0].StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected dispatch item: %+v", page.Items[0])
	}

	bad := doJSON(t, router, http.MethodGet, "/dispatches?per_page=1000", nil, nil)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized page, got %d", bad.Code)
	}
}

func TestHealthRoute(t *testing.T) {
	router, _ := newTestRouter(t, http.StatusOK)
	rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
