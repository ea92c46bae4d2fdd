package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/draeangela/industry-data-visualizer/pkg/config"
)

// ErrDisabled is returned by Ping when REDIS_ENABLED is off
var ErrDisabled = errors.New("redis disabled")

// Client is the shared connection behind the series cache and the backend rate limits.
// A disabled Client is valid: caches miss and limiters allow everything.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb         *redis.Client
	addr        string
	pingTimeout time.Duration
}

// New connects to Redis when enabled and fails fast if the server does not answer
func New(cfg *config.Config) (*Client, error) {
	rc := cfg.Redis
	if !rc.Enabled {
		return &Client{}, nil
	}

	c := &Client{
		addr:        net.JoinHostPort(rc.Host, rc.Port),
		pingTimeout: rc.DialTimeout,
	}
	if c.pingTimeout <= 0 {
		c.pingTimeout = 5 * time.Second
	}

	c.rdb = redis.NewClient(&redis.Options{
		Addr:         c.addr,
		Password:     rc.Password,
		DB:           rc.DB,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.ReadTimeout,
	})

	if err := c.Ping(context.Background()); err != nil {
		c.rdb.Close()
		return nil, err
	}
	return c, nil
}

// Ping checks the connection within the dial timeout
func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", c.addr, err)
	}
	return nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether a Redis server is configured
func (c *Client) Enabled() bool {
	return c.rdb != nil
}

// Redis returns the underlying client for scripts and pipelines
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
