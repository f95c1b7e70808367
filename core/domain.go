package core

import (
	"sort"
	"strings"
	"time"
)

type Environment int

const (
	EnvironmentProduction Environment = iota
	EnvironmentDevelopment
)

func (e Environment) String() string {
	switch e {
	case EnvironmentDevelopment:
		return "development"
	default:
		return "production"
	}
}

// ParseEnvironment accepts the names produced by String and the numeric
// settings values 0 and 1.
func ParseEnvironment(value string) (Environment, bool) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "0", "production", "prod":
		return EnvironmentProduction, true
	case "1", "development", "dev":
		return EnvironmentDevelopment, true
	default:
		return EnvironmentProduction, false
	}
}

// EndpointConfig identifies one relay integration. APIKey is part of the
// request path and must never reach logs.
type EndpointConfig struct {
	APIKey       string
	InstanceName string
	Environment  Environment
}

type FormField struct {
	Name  string
	Value string
}

// EventPayload is an ordered string mapping. Setting an existing key replaces
// its value in place.
type EventPayload struct {
	keys   []string
	values map[string]string
}

func NewEventPayload(fields ...FormField) *EventPayload {
	payload := &EventPayload{}
	for _, field := range fields {
		payload.Set(field.Name, field.Value)
	}
	return payload
}

// EventPayloadFromMap builds a payload with keys in sorted order.
func EventPayloadFromMap(values map[string]string) *EventPayload {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	payload := &EventPayload{}
	for _, key := range keys {
		payload.Set(key, values[key])
	}
	return payload
}

func (p *EventPayload) Set(key string, value string) *EventPayload {
	if p.values == nil {
		p.values = map[string]string{}
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

func (p *EventPayload) Get(key string) (string, bool) {
	if p == nil || p.values == nil {
		return "", false
	}
	value, ok := p.values[key]
	return value, ok
}

func (p *EventPayload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *EventPayload) Fields() []FormField {
	if p == nil || len(p.keys) == 0 {
		return []FormField{}
	}
	fields := make([]FormField, 0, len(p.keys))
	for _, key := range p.keys {
		fields = append(fields, FormField{Name: key, Value: p.values[key]})
	}
	return fields
}

func (p *EventPayload) Map() map[string]string {
	out := make(map[string]string, p.Len())
	for _, field := range p.Fields() {
		out[field.Name] = field.Value
	}
	return out
}

// ValidationResult is the connectivity test outcome. The zero value is ok; an
// empty Field with a Message is a general error.
type ValidationResult struct {
	Field   string
	Message string
}

func (r ValidationResult) OK() bool {
	return strings.TrimSpace(r.Message) == ""
}

func (r ValidationResult) General() bool {
	return !r.OK() && strings.TrimSpace(r.Field) == ""
}

type Operation string

const (
	OperationSend Operation = "send"
	OperationTest Operation = "test"
)

type DispatchRecord struct {
	ID           string
	Operation    Operation
	InstanceName string
	Environment  Environment
	StatusCode   int
	Category     FailureCategory
	Message      string
	Fields       int
	Duration     time.Duration
	Metadata     map[string]any
	CreatedAt    time.Time
}

func (r DispatchRecord) Succeeded() bool {
	return r.Category == CategoryNone
}

type DispatchFilter struct {
	InstanceName string
	Operation    Operation
	Page         int
	PerPage      int
}

type DispatchPage struct {
	Items   []DispatchRecord
	Page    int
	PerPage int
	Total   int
}
