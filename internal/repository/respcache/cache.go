// Package respcache is the optional response cache in front of the upstream.
// Failures never reach the caller: a broken backend behaves like an empty one.
package respcache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/streamreel/internal/db"
)

// Gateway stores serialized responses by key.
type Gateway interface {
	// Get returns the cached bytes and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value for ttl and reports whether the store succeeded.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	// Enabled reports whether a real backend is behind the gateway.
	Enabled() bool
}

// store is the consumer interface for the cache backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Compile-time checks.
var (
	_ Gateway = (*Redis)(nil)
	_ Gateway = Noop{}
)

// Redis is a Gateway backed by a key-value store.
type Redis struct {
	store  store
	ops    *prometheus.CounterVec
	logger *zap.Logger
}

// NewRedis creates a store-backed gateway.
// ops is a counter vec with labels "op" and "result", passed explicitly; nil disables counting.
func NewRedis(s store, ops *prometheus.CounterVec, logger *zap.Logger) *Redis {
	return &Redis{store: s, ops: ops, logger: logger}
}

// Get returns a cached response. Missing keys, empty values and store errors are all misses.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.inc("get", "miss")
			return nil, false
		}
		c.inc("get", "error")
		c.logger.Warn("Failed to read cached response", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if len(data) == 0 {
		c.inc("get", "miss")
		return nil, false
	}
	c.inc("get", "hit")
	return data, true
}

// Set stores a response. Failures are logged and reported as false.
func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if err := c.store.SetWithTTL(ctx, key, value, ttl); err != nil {
		c.inc("set", "error")
		c.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
		return false
	}
	c.inc("set", "ok")
	return true
}

// Enabled always reports true.
func (c *Redis) Enabled() bool { return true }

func (c *Redis) inc(op, result string) {
	if c.ops != nil {
		c.ops.WithLabelValues(op, result).Inc()
	}
}

// Noop is the Gateway used when caching is disabled or the backend is unreachable.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }

// Set does nothing.
func (Noop) Set(context.Context, string, []byte, time.Duration) bool { return false }

// Enabled always reports false.
func (Noop) Enabled() bool { return false }
