package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"devapi/pkg/metrics/memory"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) (*HTTPTransport, *memory.MemoryCollector) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultHTTPConfig("secret")
	config.BaseURL = server.URL + "/api/data/"
	config.Timeout = time.Second

	collector := memory.NewMemoryCollector()
	tr, err := NewHTTPTransportWithMetrics(config, server.Client(), collector)
	if err != nil {
		t.Fatalf("NewHTTPTransportWithMetrics failed: %v", err)
	}
	return tr, collector
}

func TestHTTPTransport_GetHeadersAndQuery(t *testing.T) {
	var got *http.Request
	tr, collector := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"Accounts":[]}`))
	})

	query := url.Values{"riskScore": {"gte:20", "lt:80"}}
	body, err := tr.Get(context.Background(), "accounts", query)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != `{"Accounts":[]}` {
		t.Errorf("body = %s", body)
	}

	if got.Method != http.MethodGet {
		t.Errorf("method = %s", got.Method)
	}
	if got.URL.Path != "/api/data/accounts" {
		t.Errorf("path = %s", got.URL.Path)
	}
	if vals := got.URL.Query()["riskScore"]; len(vals) != 2 || vals[0] != "gte:20" || vals[1] != "lt:80" {
		t.Errorf("riskScore = %v", vals)
	}
	if h := got.Header.Get("Authorization"); h != "Bearer secret" {
		t.Errorf("Authorization = %q", h)
	}
	if h := got.Header.Get("Version"); h != DefaultVersion {
		t.Errorf("Version = %q", h)
	}
	if h := got.Header.Get("Content-Type"); h != "application/json" {
		t.Errorf("Content-Type = %q", h)
	}
	if got.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID should be set")
	}

	if n := collector.Component("http").Requests["GET 2xx"]; n != 1 {
		t.Errorf("GET 2xx = %d, want 1", n)
	}
}

func TestHTTPTransport_PostBody(t *testing.T) {
	var payload map[string]any
	tr, _ := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &payload)
		w.Write([]byte(`{"Accounts":[]}`))
	})

	_, err := tr.Post(context.Background(), "/accounts/create", map[string]any{"quantity": 2})
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if payload["quantity"] != float64(2) {
		t.Errorf("payload = %v", payload)
	}
}

func TestHTTPTransport_Non2xx(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		post       bool
		wantClient bool
	}{
		{"get 404", http.StatusNotFound, false, true},
		{"post 400", http.StatusBadRequest, true, true},
		{"get 500", http.StatusInternalServerError, false, false},
		{"post 503", http.StatusServiceUnavailable, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			})

			var err error
			if tt.post {
				_, err = tr.Post(context.Background(), "accounts/create", map[string]any{})
			} else {
				_, err = tr.Get(context.Background(), "accounts", nil)
			}

			if !IsTransport(err) {
				t.Fatalf("expected transport error, got %v", err)
			}
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TransportError, got %T", err)
			}
			if te.StatusCode != tt.status || StatusCode(err) != tt.status {
				t.Errorf("status = %d, want %d", te.StatusCode, tt.status)
			}
			if string(te.Body) != `{"error":"nope"}` {
				t.Errorf("body = %s", te.Body)
			}
			if te.ClientError() != tt.wantClient {
				t.Errorf("ClientError() = %v, want %v", te.ClientError(), tt.wantClient)
			}
		})
	}
}

func TestHTTPTransport_Timeout(t *testing.T) {
	release := make(chan struct{})
	tr, collector := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	tr.config.Timeout = 20 * time.Millisecond

	_, err := tr.Get(context.Background(), "accounts", nil)
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if n := collector.Component("http").ErrorsByType["timeout"]; n != 1 {
		t.Errorf("timeout errors = %d, want 1", n)
	}
}

func TestHTTPConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*HTTPConfig)
		wantErr bool
	}{
		{"default", func(c *HTTPConfig) {}, false},
		{"no token", func(c *HTTPConfig) { c.Token = "" }, true},
		{"relative url", func(c *HTTPConfig) { c.BaseURL = "/api" }, true},
		{"negative timeout", func(c *HTTPConfig) { c.Timeout = -time.Second }, true},
		{"no timeout", func(c *HTTPConfig) { c.Timeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultHTTPConfig("token")
			tt.modify(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig: %v", err)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{ErrCircuitOpen, "circuit_breaker_open"},
		{WrapError(ErrTimeout, "http", "get"), "timeout"},
		{&TransportError{StatusCode: 404}, "client_error"},
		{&TransportError{StatusCode: 502}, "server_error"},
		{errors.New("dial tcp: connection refused"), "connection"},
		{errors.New("json: cannot decode"), "serialization"},
		{errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
