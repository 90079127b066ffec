package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"devapi/pkg/logging"
	"devapi/pkg/metrics"
)

// HTTPTransport talks to the API over HTTP with bearer authentication.
// It is safe for concurrent use; connection reuse is left to the http.Client.
type HTTPTransport struct {
	client  *http.Client
	config  HTTPConfig
	metrics metrics.MetricsCollector
	logger  *logging.Logger
}

// NewHTTPTransport creates a transport with the default http.Client.
func NewHTTPTransport(config HTTPConfig) (*HTTPTransport, error) {
	return NewHTTPTransportWithMetrics(config, nil, metrics.NoOpCollector{})
}

// NewHTTPTransportWithMetrics creates a transport using client (nil for a new
// one) and reporting every request to the collector.
func NewHTTPTransportWithMetrics(config HTTPConfig, client *http.Client, collector metrics.MetricsCollector) (*HTTPTransport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Name == "" {
		config.Name = "http"
	}
	if config.Version == "" {
		config.Version = DefaultVersion
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 10 << 20
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if client == nil {
		client = &http.Client{}
	}

	return &HTTPTransport{
		client:  client,
		config:  config,
		metrics: collector,
		logger:  logging.Global().Named("transport").Named(config.Name),
	}, nil
}

// Name returns the configured transport name.
func (t *HTTPTransport) Name() string {
	return t.config.Name
}

// Get fetches path with the query attached.
func (t *HTTPTransport) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	target := t.url(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return t.do(ctx, http.MethodGet, path, target, nil)
}

// Post sends body encoded as JSON.
func (t *HTTPTransport) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal request body: %w", err)
	}
	return t.do(ctx, http.MethodPost, path, t.url(path), payload)
}

func (t *HTTPTransport) url(path string) string {
	return t.config.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func (t *HTTPTransport) do(ctx context.Context, method, path, target string, payload []byte) (json.RawMessage, error) {
	if t.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+t.config.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Version", t.config.Version)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		duration := time.Since(start)
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		t.metrics.RecordRequestError(t.config.Name, method, ClassifyError(err))
		t.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("transport: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.config.MaxBodyBytes))
	duration := time.Since(start)
	t.metrics.RecordRequest(t.config.Name, method, resp.StatusCode, duration)
	if err != nil {
		return nil, fmt.Errorf("transport: %s %s: read body: %w", method, path, err)
	}

	t.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       data,
		}
	}

	return json.RawMessage(data), nil
}
