package storefront

import (
	"errors"
	"strings"
)

// DefaultTimeoutSeconds is used when no request timeout is configured
const DefaultTimeoutSeconds = 30

// Config holds the storefront API connection settings
type Config struct {
	// APIKey is sent as X-API-Key on every request
	APIKey string
	// BaseURL is the storefront API origin, without a trailing slash
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MockFallback answers POSTs with canned local responses when the API
	// cannot be reached. Development only.
	MockFallback bool
}

// Errors for storefront configuration
var (
	ErrConfigMissingAPIKey  = errors.New("storefront: API key is required")
	ErrConfigMissingBaseURL = errors.New("storefront: base URL is required")
)

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return nil
}

// Configured reports whether both the API key and base URL are set
func (c Config) Configured() bool {
	return c.APIKey != "" && strings.TrimSpace(c.BaseURL) != ""
}
