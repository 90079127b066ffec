package mock

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"sync/atomic"
)

// Request is a call recorded by MockTransport.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is the JSON encoding of the POST body.
	Body []byte
}

// MockTransport is a mock implementation of Transport for testing.
// It allows injecting custom behavior for each method and records every call.
type MockTransport struct {
	// Function hooks - set these to customize behavior
	GetFunc  func(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	PostFunc func(ctx context.Context, path string, body any) (json.RawMessage, error)
	NameFunc func() string

	getCalls  int64
	postCalls int64

	mu       sync.Mutex
	requests []Request
}

// NewMockTransport creates a mock that answers every call with response.
func NewMockTransport(response string) *MockTransport {
	return &MockTransport{
		GetFunc: func(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
			return json.RawMessage(response), nil
		},
		PostFunc: func(ctx context.Context, path string, body any) (json.RawMessage, error) {
			return json.RawMessage(response), nil
		},
	}
}

// Get implements Transport.Get with optional custom behavior.
func (m *MockTransport) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	atomic.AddInt64(&m.getCalls, 1)
	m.record(Request{Method: "GET", Path: path, Query: query})
	if m.GetFunc != nil {
		return m.GetFunc(ctx, path, query)
	}
	return json.RawMessage(`{}`), nil
}

// Post implements Transport.Post with optional custom behavior.
func (m *MockTransport) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	atomic.AddInt64(&m.postCalls, 1)
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	m.record(Request{Method: "POST", Path: path, Body: data})
	if m.PostFunc != nil {
		return m.PostFunc(ctx, path, body)
	}
	return json.RawMessage(`{}`), nil
}

// Name implements transport.Named.
func (m *MockTransport) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// GetCalls returns the number of Get calls (thread-safe).
func (m *MockTransport) GetCalls() int {
	return int(atomic.LoadInt64(&m.getCalls))
}

// PostCalls returns the number of Post calls (thread-safe).
func (m *MockTransport) PostCalls() int {
	return int(atomic.LoadInt64(&m.postCalls))
}

// Requests returns a copy of the recorded calls in order.
func (m *MockTransport) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent call, or false if there was none.
func (m *MockTransport) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}

func (m *MockTransport) record(r Request) {
	m.mu.Lock()
	m.requests = append(m.requests, r)
	m.mu.Unlock()
}
