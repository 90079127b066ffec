// Package redis is the shared response cache layer. Several CLI processes
// or services pointed at the same Redis see each other's cached responses.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devapi/pkg/cache"

	"github.com/redis/rueidis"
)

// Config configures a Redis layer.
type Config struct {
	Name string

	// Addr is a single node address such as "localhost:6379". Ignored when
	// ClusterAddrs is set.
	Addr         string
	ClusterAddrs []string
	Username     string
	Password     string
	DB           int

	// KeyPrefix namespaces response keys inside the database
	KeyPrefix string

	// DefaultTTL applies to Set calls with a zero TTL
	DefaultTTL time.Duration

	// LocalTTL enables server-assisted client-side caching of reads for
	// this long. Zero disables it.
	LocalTTL time.Duration

	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Name:         "redis",
		Addr:         "localhost:6379",
		KeyPrefix:    "devapi:cache:",
		DefaultTTL:   time.Minute,
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func (c Config) addresses() ([]string, error) {
	switch {
	case len(c.ClusterAddrs) > 0:
		return c.ClusterAddrs, nil
	case c.Addr != "":
		return []string{c.Addr}, nil
	}
	return nil, errors.New("redis: set Addr or ClusterAddrs")
}

// Cache stores response bodies as plain Redis strings with an expiry.
type Cache struct {
	client rueidis.Client
	config Config
}

var _ cache.Layer = (*Cache)(nil)

// New connects and PINGs the server. Failures match
// cache.ErrLayerUnavailable.
func New(config Config) (*Cache, error) {
	defaults := DefaultConfig()
	if config.Name == "" {
		config.Name = defaults.Name
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = defaults.DefaultTTL
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = defaults.DialTimeout
	}

	addrs, err := config.addresses()
	if err != nil {
		return nil, err
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      addrs,
		Username:         config.Username,
		Password:         config.Password,
		SelectDB:         config.DB,
		ConnWriteTimeout: config.WriteTimeout,
		DisableCache:     config.LocalTTL <= 0,
		MaxFlushDelay:    100 * time.Microsecond,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w: %w", addrs, cache.ErrLayerUnavailable, err)
	}

	c := &Cache{client: client, config: config}

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) key(k string) string {
	return c.config.KeyPrefix + k
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	var resp rueidis.RedisResult
	if c.config.LocalTTL > 0 {
		resp = c.client.DoCache(ctx, c.client.B().Get().Key(c.key(key)).Cache(), c.config.LocalTTL)
	} else {
		resp = c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build())
	}

	data, err := resp.AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, cache.ErrKeyNotFound
	case err != nil:
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Set writes with millisecond expiry so sub-second TTLs from a decaying
// strategy are kept.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	ms := max(ttl.Milliseconds(), 1)

	cmd := c.client.B().Set().Key(c.key(key)).Value(rueidis.BinaryString(value)).PxMilliseconds(ms).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(c.key(key)).Build()).Error(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Name() string {
	return c.config.Name
}

func (c *Cache) Close() error {
	c.client.Close()
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Do(ctx, c.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("redis ping: %w: %w", cache.ErrLayerUnavailable, err)
	}
	return nil
}

// TTL returns the remaining lifetime of key with millisecond precision,
// -1 for a key without expiry, or cache.ErrKeyNotFound.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ms, err := c.client.Do(ctx, c.client.B().Pttl().Key(c.key(key)).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("redis ttl %s: %w", key, err)
	}

	switch ms {
	case -2:
		return 0, cache.ErrKeyNotFound
	case -1:
		return -1, nil
	}
	return time.Duration(ms) * time.Millisecond, nil
}
