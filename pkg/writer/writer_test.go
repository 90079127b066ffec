package writer

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"devapi/pkg/cache/mock"
	"devapi/pkg/metrics/memory"
)

func TestNew_Defaults(t *testing.T) {
	w := New(mock.NewMockLayer("L1"), Config{})
	defer w.Close()

	if cap(w.keys) != 1000 {
		t.Errorf("Expected default queue size 1000, got %d", cap(w.keys))
	}
	if w.config.Workers != 2 {
		t.Errorf("Expected default workers 2, got %d", w.config.Workers)
	}
	if w.config.MaxWait != 10*time.Millisecond {
		t.Errorf("Expected default MaxWait 10ms, got %v", w.config.MaxWait)
	}
}

func TestWriter_WriteAndFlush(t *testing.T) {
	layer := mock.NewMockLayer("L1")
	collector := memory.NewMemoryCollector()
	w := NewWithMetrics(layer, Config{QueueSize: 10, Workers: 1}, collector)
	defer w.Close()

	for i := 0; i < 5; i++ {
		if err := w.Write(context.Background(), "k"+strconv.Itoa(i), []byte("v"), time.Minute); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if err := w.Flush(time.Second); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if got := len(layer.Keys()); got != 5 {
		t.Errorf("Expected 5 writes applied, got %d", got)
	}
	if ttl, _ := layer.TTL("k0"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	if cm := collector.Component("L1"); cm == nil || cm.Sets != 5 {
		t.Errorf("Expected 5 recorded sets, got %+v", cm)
	}
	if stats := w.Stats(); stats.Accepted != 5 || stats.Queued != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestWriter_CoalescesQueuedKey(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	layer := mock.NewMockLayer("L1")
	layer.SetFunc = func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
		if key == "block" {
			close(started)
			<-release
		}
		layer.Seed(key, value, ttl)
		return nil
	}

	w := New(layer, Config{Workers: 1})
	defer w.Close()

	ctx := context.Background()
	w.Write(ctx, "block", nil, 0)
	<-started

	for i := 0; i < 3; i++ {
		if err := w.Write(ctx, "k", []byte(strconv.Itoa(i)), 0); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	close(release)

	if err := w.Flush(time.Second); err != nil {
		t.Fatal(err)
	}
	if layer.SetCalls() != 2 {
		t.Errorf("Expected 2 layer writes, got %d", layer.SetCalls())
	}
	if got, _ := layer.Get(ctx, "k"); string(got) != "2" {
		t.Errorf("Expected newest value, got %q", got)
	}
	if stats := w.Stats(); stats.Accepted != 2 || stats.Coalesced != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestWriter_QueueFull(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	layer := mock.NewMockLayer("L1")
	layer.SetFunc = func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}

	w := New(layer, Config{QueueSize: 1, Workers: 1, MaxWait: time.Millisecond})
	defer w.Close()
	defer close(release)

	ctx := context.Background()
	w.Write(ctx, "busy", nil, 0)
	<-started

	if err := w.Write(ctx, "queued", nil, 0); err != nil {
		t.Fatalf("one key should fit in the queue: %v", err)
	}
	if err := w.Write(ctx, "dropped", nil, 0); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
	if w.Stats().Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", w.Stats().Dropped)
	}
}

func TestWriter_FailedWrites(t *testing.T) {
	layer := mock.NewFailingLayer("L1", errors.New("boom"))
	w := New(layer, Config{})
	defer w.Close()

	w.Write(context.Background(), "k", []byte("v"), 0)
	if err := w.Flush(time.Second); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if w.Stats().Failed != 1 {
		t.Errorf("Failed = %d, want 1", w.Stats().Failed)
	}
}

func TestWriter_Close(t *testing.T) {
	layer := mock.NewMockLayer("L1")
	w := New(layer, Config{})

	w.Write(context.Background(), "k", []byte("v"), 0)
	w.Close()

	if layer.SetCalls() != 1 {
		t.Errorf("Close should apply queued writes, SetCalls = %d", layer.SetCalls())
	}
	if err := w.Write(context.Background(), "k2", []byte("v"), 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestWriter_CanceledContext(t *testing.T) {
	w := New(mock.NewMockLayer("L1"), Config{})
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Write(ctx, "k", []byte("v"), 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
