package query

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notifiarr/core"
)

type stubTester struct {
	calls  int
	result core.ValidationResult
}

func (s *stubTester) Test(_ context.Context, _ core.EndpointConfig) core.ValidationResult {
	s.calls++
	return s.result
}

type stubReader struct {
	filter core.DispatchFilter
	page   core.DispatchPage
}

func (s *stubReader) List(_ context.Context, filter core.DispatchFilter) (core.DispatchPage, error) {
	s.filter = filter
	return s.page, nil
}

func TestTestEndpointMessage_ValidateReturnsRichError(t *testing.T) {
	err := (TestEndpointMessage{Endpoint: core.EndpointConfig{APIKey: "k", Environment: core.Environment(9)}}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ErrorBadInput, rich.TextCode)
	}
	if rich.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rich.Code)
	}
}

func TestTestEndpointQuery_ReturnsTesterResult(t *testing.T) {
	tester := &stubTester{result: core.ValidationResult{Field: "APIKey", Message: "API key is invalid"}}
	result, err := NewTestEndpointQuery(tester).Query(context.Background(), TestEndpointMessage{
		Endpoint: core.EndpointConfig{APIKey: "bad"},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if tester.calls != 1 {
		t.Fatalf("expected one test call, got %d", tester.calls)
	}
	if result.Field != "APIKey" || result.OK() {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestTestEndpointQuery_MissingAPIKeyIsFieldResult(t *testing.T) {
	tester := &stubTester{}
	result, err := NewTestEndpointQuery(tester).Query(context.Background(), TestEndpointMessage{
		Endpoint: core.EndpointConfig{APIKey: "  ", InstanceName: "radarr"},
	})
	if err != nil {
		t.Fatalf("expected result without error, got %v", err)
	}
	if result.OK() || result.Field != core.FieldAPIKey || result.Message != "API key is required" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if tester.calls != 0 {
		t.Fatalf("expected no relay test without api key, got %d calls", tester.calls)
	}
}

func TestTestEndpointQuery_NilTester(t *testing.T) {
	var q *TestEndpointQuery
	_, err := q.Query(context.Background(), TestEndpointMessage{Endpoint: core.EndpointConfig{APIKey: "k"}})
	if err == nil {
		t.Fatalf("expected dependency error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal envelope, got %v", err)
	}
}

func TestListDispatchesMessage_Validate(t *testing.T) {
	cases := []struct {
		name    string
		filter  core.DispatchFilter
		wantErr bool
	}{
		{name: "zero", filter: core.DispatchFilter{}},
		{name: "negative page", filter: core.DispatchFilter{Page: -1}, wantErr: true},
		{name: "negative per page", filter: core.DispatchFilter{PerPage: -1}, wantErr: true},
		{name: "per page too large", filter: core.DispatchFilter{PerPage: MaxDispatchesPerPage + 1}, wantErr: true},
		{name: "bad operation", filter: core.DispatchFilter{Operation: "retry"}, wantErr: true},
		{name: "test operation", filter: core.DispatchFilter{Operation: core.OperationTest}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := (ListDispatchesMessage{Filter: tc.filter}).Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestListDispatchesQuery_ForwardsFilter(t *testing.T) {
	reader := &stubReader{page: core.DispatchPage{Total: 3, Page: 1, PerPage: 2}}
	page, err := NewListDispatchesQuery(reader).Query(context.Background(), ListDispatchesMessage{
		Filter: core.DispatchFilter{InstanceName: "radarr-4k", Page: 1, PerPage: 2},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if reader.filter.InstanceName != "radarr-4k" {
		t.Fatalf("expected filter to be forwarded, got %+v", reader.filter)
	}
	if page.Total != 3 {
		t.Fatalf("expected total 3, got %d", page.Total)
	}
}
