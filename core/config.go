package core

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultProductionBaseURL  = "https://notifiarr.com"
	DefaultDevelopmentBaseURL = "https://dev.notifiarr.com"
	DefaultNotificationPath   = "/api/v1/notification/radarr"
	DefaultTestEventKey       = "EventType"
	DefaultTestEventValue     = "Test"
)

type Config struct {
	ServiceName        string `koanf:"service_name" mapstructure:"service_name"`
	ProductionBaseURL  string `koanf:"production_base_url" mapstructure:"production_base_url"`
	DevelopmentBaseURL string `koanf:"development_base_url" mapstructure:"development_base_url"`
	NotificationPath   string `koanf:"notification_path" mapstructure:"notification_path"`
	TestEventKey       string `koanf:"test_event_key" mapstructure:"test_event_key"`
	TestEventValue     string `koanf:"test_event_value" mapstructure:"test_event_value"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:        "notifiarr",
		ProductionBaseURL:  DefaultProductionBaseURL,
		DevelopmentBaseURL: DefaultDevelopmentBaseURL,
		NotificationPath:   DefaultNotificationPath,
		TestEventKey:       DefaultTestEventKey,
		TestEventValue:     DefaultTestEventValue,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if err := validateBaseURL("production_base_url", c.ProductionBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("development_base_url", c.DevelopmentBaseURL); err != nil {
		return err
	}
	notificationPath := strings.TrimSpace(c.NotificationPath)
	if !strings.HasPrefix(notificationPath, "/") {
		return fmt.Errorf("core: notification_path must start with /")
	}
	if strings.Trim(notificationPath, "/") == "" {
		return fmt.Errorf("core: notification_path must name a path segment")
	}
	if strings.TrimSpace(c.TestEventKey) == "" {
		return fmt.Errorf("core: test_event_key is required")
	}
	return nil
}

// BaseURL picks the relay host for an environment.
func (c Config) BaseURL(env Environment) string {
	if env == EnvironmentDevelopment {
		return strings.TrimRight(strings.TrimSpace(c.DevelopmentBaseURL), "/")
	}
	return strings.TrimRight(strings.TrimSpace(c.ProductionBaseURL), "/")
}

// NotificationURL embeds the api key verbatim as the last path segment.
func (c Config) NotificationURL(endpoint EndpointConfig) string {
	path := strings.Trim(strings.TrimSpace(c.NotificationPath), "/")
	if path == "" {
		return c.BaseURL(endpoint.Environment) + "/" + endpoint.APIKey
	}
	return c.BaseURL(endpoint.Environment) + "/" + path + "/" + endpoint.APIKey
}

func validateBaseURL(field string, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("core: %s is required", field)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("core: %s is invalid: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("core: %s must use http or https", field)
	}
	if parsed.Host == "" {
		return fmt.Errorf("core: %s must include a host", field)
	}
	return nil
}
