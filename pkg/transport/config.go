package transport

import (
	"errors"
	"net/url"
	"time"
)

// DefaultBaseURL is the sandbox data API root.
const DefaultBaseURL = "https://sandbox.capitalone.co.uk/developer-services-platform-pr/api/data"

// DefaultVersion is sent in the Version header.
const DefaultVersion = "1.0"

// ErrInvalidConfig is returned by HTTPConfig.Validate.
var ErrInvalidConfig = errors.New("transport: invalid config")

// HTTPConfig holds configuration for an HTTPTransport.
type HTTPConfig struct {
	// Name identifies the transport in logs and metrics
	Name string

	// BaseURL is joined with each request path
	BaseURL string

	// Token is sent as "Authorization: Bearer <Token>"
	Token string

	// Version is sent in the Version header
	Version string

	// Timeout bounds each request, including reading the body.
	// Zero leaves it to the caller's context.
	Timeout time.Duration

	// MaxBodyBytes caps how much of a response is read (default 10 MiB)
	MaxBodyBytes int64
}

// DefaultHTTPConfig returns the sandbox defaults for the given token.
func DefaultHTTPConfig(token string) HTTPConfig {
	return HTTPConfig{
		Name:         "http",
		BaseURL:      DefaultBaseURL,
		Token:        token,
		Version:      DefaultVersion,
		Timeout:      10 * time.Second,
		MaxBodyBytes: 10 << 20,
	}
}

// Validate checks if the configuration is usable.
func (c *HTTPConfig) Validate() error {
	if c.Token == "" {
		return errors.Join(ErrInvalidConfig, errors.New("token is required"))
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Join(ErrInvalidConfig, errors.New("base URL must be absolute"))
	}
	if c.Timeout < 0 {
		return errors.Join(ErrInvalidConfig, errors.New("timeout must not be negative"))
	}
	return nil
}
