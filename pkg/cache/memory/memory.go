// Package memory is the process-local response cache layer.
package memory

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"time"

	"devapi/pkg/cache"
)

// Config configures a memory layer.
type Config struct {
	Name string

	// MaxEntries bounds the number of cached responses; 0 is unbounded
	MaxEntries int

	// MaxBytes bounds the summed size of cached bodies; 0 is unbounded
	MaxBytes int

	// DefaultTTL applies to Set calls with a zero TTL
	DefaultTTL time.Duration

	// SweepInterval is how often expired entries are dropped in the
	// background
	SweepInterval time.Duration
}

// Stats is a snapshot of a memory layer.
type Stats struct {
	Entries   int
	Bytes     int
	Evictions int64
	Expired   int64
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// Cache keeps bodies in an LRU list. Reads move an entry to the front;
// writes that exceed a bound evict from the back.
type Cache struct {
	config Config

	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List
	bytes int
	stats Stats

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ cache.Layer = (*Cache)(nil)

// New starts a memory layer and its sweeper. Close stops the sweeper.
func New(config Config) *Cache {
	if config.Name == "" {
		config.Name = "memory"
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = time.Minute
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = time.Minute
	}

	c := &Cache{
		config: config,
		items:  make(map[string]*list.Element),
		lru:    list.New(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.remove(el)
		c.stats.Expired++
		return nil, cache.ErrKeyNotFound
	}

	c.lru.MoveToFront(el)
	return slices.Clone(e.value), nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	e := &entry{key: key, value: slices.Clone(value), expiresAt: time.Now().Add(ttl)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.bytes += len(e.value) - len(el.Value.(*entry).value)
		el.Value = e
		c.lru.MoveToFront(el)
	} else {
		c.items[key] = c.lru.PushFront(e)
		c.bytes += len(e.value)
	}

	for c.overLimit() {
		back := c.lru.Back()
		if back == nil || back.Value.(*entry).key == key {
			break
		}
		c.remove(back)
		c.stats.Evictions++
	}
	return nil
}

func (c *Cache) overLimit() bool {
	return (c.config.MaxEntries > 0 && c.lru.Len() > c.config.MaxEntries) ||
		(c.config.MaxBytes > 0 && c.bytes > c.config.MaxBytes)
}

// remove unlinks el. Callers hold c.mu.
func (c *Cache) remove(el *list.Element) {
	e := c.lru.Remove(el).(*entry)
	delete(c.items, e.key)
	c.bytes -= len(e.value)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
	c.mu.Unlock()
	return nil
}

// Clear drops every entry and keeps the counters.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]*list.Element)
	c.lru.Init()
	c.bytes = 0
	c.mu.Unlock()
	return nil
}

func (c *Cache) Name() string {
	return c.config.Name
}

// Close stops the sweeper and drops all entries. Safe to call twice.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
		c.Clear(context.Background())
	})
	return nil
}

func (c *Cache) sweep() {
	defer close(c.done)

	ticker := time.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.dropExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) dropExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.lru.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*entry).expiresAt) {
			c.remove(el)
			c.stats.Expired++
		}
		el = prev
	}
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Entries = c.lru.Len()
	s.Bytes = c.bytes
	return s
}
