package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"devapi/pkg/metrics"
	"devapi/pkg/metrics/memory"
	"devapi/pkg/transport"
	"devapi/pkg/transport/mock"
)

func failingMock(status int) *mock.MockTransport {
	m := mock.NewMockTransport(`{}`)
	m.GetFunc = func(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
		return nil, &transport.TransportError{Method: "GET", Path: path, StatusCode: status}
	}
	return m
}

func TestResilientTransport_PassThrough(t *testing.T) {
	m := mock.NewMockTransport(`{"Accounts":[]}`)
	rt := NewResilientTransport(m, DefaultConfig())

	if rt.Name() != "mock" {
		t.Errorf("Expected name 'mock', got '%s'", rt.Name())
	}

	body, err := rt.Get(context.Background(), "accounts", nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != `{"Accounts":[]}` {
		t.Errorf("body = %s", body)
	}

	if _, err := rt.Post(context.Background(), "accounts/create", map[string]any{"quantity": 1}); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if m.GetCalls() != 1 || m.PostCalls() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", m.GetCalls(), m.PostCalls())
	}
}

func TestResilientTransport_OpensOnServerErrors(t *testing.T) {
	m := failingMock(503)
	collector := memory.NewMemoryCollector()

	config := DefaultConfig()
	config.Breaker.Trip = ConsecutiveFailures(3)
	rt := NewResilientTransportWithMetrics(m, config, collector)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := rt.Get(ctx, "accounts", nil)
		if !transport.IsTransport(err) {
			t.Fatalf("call %d: expected transport error, got %v", i, err)
		}
	}

	if rt.State() != metrics.CircuitOpen {
		t.Fatalf("Expected circuit open, got %v", rt.State())
	}

	_, err := rt.Get(ctx, "accounts", nil)
	if !transport.IsCircuitOpen(err) {
		t.Fatalf("Expected circuit open error, got %v", err)
	}
	if m.GetCalls() != 3 {
		t.Errorf("open circuit should not reach the transport, calls = %d", m.GetCalls())
	}

	cm := collector.Component("mock")
	if cm == nil || cm.CircuitOpens != 1 {
		t.Errorf("expected one recorded circuit open, got %+v", cm)
	}
}

func TestResilientTransport_ClientErrorsDoNotTrip(t *testing.T) {
	m := failingMock(404)

	config := DefaultConfig()
	config.Breaker.Trip = ConsecutiveFailures(2)
	rt := NewResilientTransport(m, config)

	for i := 0; i < 5; i++ {
		_, err := rt.Get(context.Background(), "accounts/x", nil)
		if transport.StatusCode(err) != 404 {
			t.Fatalf("call %d: expected 404, got %v", i, err)
		}
	}

	if rt.State() != metrics.CircuitClosed {
		t.Errorf("4xx should not open the circuit, state = %v", rt.State())
	}
}

func TestResilientTransport_HalfOpenRecovers(t *testing.T) {
	m := failingMock(500)

	config := DefaultConfig().WithOpenFor(20 * time.Millisecond)
	config.Breaker.Trip = ConsecutiveFailures(1)
	rt := NewResilientTransport(m, config)

	rt.Get(context.Background(), "accounts", nil)
	if rt.State() != metrics.CircuitOpen {
		t.Fatalf("Expected circuit open, got %v", rt.State())
	}

	m.GetFunc = func(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
		return json.RawMessage(`{}`), nil
	}
	time.Sleep(40 * time.Millisecond)

	if _, err := rt.Get(context.Background(), "accounts", nil); err != nil {
		t.Fatalf("probe request failed: %v", err)
	}
	if rt.State() != metrics.CircuitClosed {
		t.Errorf("Expected circuit closed after a successful probe, got %v", rt.State())
	}
}

func TestResilientTransport_Timeout(t *testing.T) {
	m := mock.NewMockTransport(`{}`)
	m.GetFunc = func(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	rt := NewResilientTransport(m, DefaultConfig().WithCallTimeout(10*time.Millisecond))

	_, err := rt.Get(context.Background(), "accounts", nil)
	if !transport.IsTimeout(err) {
		t.Fatalf("Expected timeout error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("timeout should keep the context error: %v", err)
	}
}

func TestIsSuccessful(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"canceled", context.Canceled, true},
		{"400", &transport.TransportError{StatusCode: 400}, true},
		{"429", &transport.TransportError{StatusCode: 429}, false},
		{"500", &transport.TransportError{StatusCode: 500}, false},
		{"timeout", transport.ErrTimeout, false},
		{"other", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSuccessful(tt.err); got != tt.want {
				t.Errorf("isSuccessful(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
