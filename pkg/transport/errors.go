package transport

import (
	"errors"
	"fmt"
	"strings"
)

// Errors surfaced by transports and their wrappers.
var (
	// ErrTransport matches any *TransportError
	ErrTransport = errors.New("transport: non-2xx response")

	// ErrTimeout is returned when a request exceeds its deadline
	ErrTimeout = errors.New("transport: request timeout")

	// ErrCircuitOpen is returned when the circuit breaker rejects a request
	ErrCircuitOpen = errors.New("transport: circuit breaker open")
)

// TransportError is a non-2xx response. Body holds the raw response body.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *TransportError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("transport: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// Is makes errors.Is(err, ErrTransport) true for any TransportError.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ClientError reports a 4xx status.
func (e *TransportError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// StatusCode returns the status of a wrapped TransportError, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// IsTransport checks if the error is a non-2xx response.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsTimeout checks if the error indicates a timeout occurred.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCircuitOpen checks if the error indicates the circuit breaker is open.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// ClassifyError returns a short classification of the error for metrics labels.
func ClassifyError(err error) string {
	if err == nil {
		return "none"
	}

	var te *TransportError
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_breaker_open"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &te):
		if te.ClientError() {
			return "client_error"
		}
		return "server_error"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection") || strings.Contains(msg, "dial"):
		return "connection"
	case strings.Contains(msg, "marshal") || strings.Contains(msg, "decode"):
		return "serialization"
	default:
		return "other"
	}
}

// WrapError adds the transport name and operation to an error.
func WrapError(err error, name, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("transport %s %s: %w", name, operation, err)
}
