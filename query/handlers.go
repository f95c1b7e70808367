package query

import (
	"context"

	"github.com/goliatone/go-notifiarr/core"
)

type TestEndpointQuery struct {
	tester core.EndpointTester
}

func NewTestEndpointQuery(tester core.EndpointTester) *TestEndpointQuery {
	return &TestEndpointQuery{tester: tester}
}

// Query reports relay failures through the ValidationResult. The error return
// covers only wiring and message validation problems.
func (q *TestEndpointQuery) Query(ctx context.Context, msg TestEndpointMessage) (core.ValidationResult, error) {
	if q == nil || q.tester == nil {
		return core.ValidationResult{}, queryDependencyError("query: endpoint tester is required")
	}
	if err := msg.Validate(); err != nil {
		return core.ValidationResult{}, err
	}
	if msg.missingAPIKey() {
		return core.ValidationResult{Field: core.FieldAPIKey, Message: "API key is required"}, nil
	}
	return q.tester.Test(ctx, msg.Endpoint), nil
}

type ListDispatchesQuery struct {
	reader core.DispatchReader
}

func NewListDispatchesQuery(reader core.DispatchReader) *ListDispatchesQuery {
	return &ListDispatchesQuery{reader: reader}
}

func (q *ListDispatchesQuery) Query(ctx context.Context, msg ListDispatchesMessage) (core.DispatchPage, error) {
	if q == nil || q.reader == nil {
		return core.DispatchPage{}, queryDependencyError("query: dispatch reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.DispatchPage{}, err
	}
	return q.reader.List(ctx, msg.Filter)
}
