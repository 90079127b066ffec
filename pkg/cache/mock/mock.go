// Package mock provides a cache.Layer for tests. Without hooks it behaves
// like an in-memory cache that never expires; hooks replace single methods.
package mock

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"devapi/pkg/cache"
)

// MockLayer records every call and stores bodies in a map unless a hook
// takes over.
type MockLayer struct {
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
	CloseFunc  func() error

	name string

	getCalls    atomic.Int64
	setCalls    atomic.Int64
	deleteCalls atomic.Int64
	closeCalls  atomic.Int64

	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

// NewMockLayer creates an empty layer.
func NewMockLayer(name string) *MockLayer {
	return &MockLayer{
		name:    name,
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

// NewFailingLayer creates a layer whose reads and writes fail with err.
func NewFailingLayer(name string, err error) *MockLayer {
	m := NewMockLayer(name)
	m.GetFunc = func(ctx context.Context, key string) ([]byte, error) { return nil, err }
	m.SetFunc = func(ctx context.Context, key string, value []byte, ttl time.Duration) error { return err }
	return m
}

func (m *MockLayer) Get(ctx context.Context, key string) ([]byte, error) {
	m.getCalls.Add(1)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

func (m *MockLayer) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalls.Add(1)
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.Seed(key, value, ttl)
	return nil
}

func (m *MockLayer) Delete(ctx context.Context, key string) error {
	m.deleteCalls.Add(1)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}

	m.mu.Lock()
	delete(m.entries, key)
	delete(m.ttls, key)
	m.mu.Unlock()
	return nil
}

func (m *MockLayer) Name() string {
	return m.name
}

func (m *MockLayer) Close() error {
	m.closeCalls.Add(1)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Seed stores a body directly, bypassing hooks and call counters.
func (m *MockLayer) Seed(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = slices.Clone(value)
	m.ttls[key] = ttl
	m.mu.Unlock()
}

// TTL returns the TTL the key was last stored with.
func (m *MockLayer) TTL(key string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ttl, ok := m.ttls[key]
	return ttl, ok
}

// Keys returns the stored keys in sorted order.
func (m *MockLayer) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (m *MockLayer) GetCalls() int    { return int(m.getCalls.Load()) }
func (m *MockLayer) SetCalls() int    { return int(m.setCalls.Load()) }
func (m *MockLayer) DeleteCalls() int { return int(m.deleteCalls.Load()) }
func (m *MockLayer) CloseCalls() int  { return int(m.closeCalls.Load()) }
