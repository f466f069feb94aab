package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 3 * time.Second

var ErrMissingURL = errors.New("redis URL is required")

// Client is the connection shared by the rate limiter and the readiness probe.
type Client struct {
	*redis.Client
	timeout time.Duration
}

type Option func(*redis.Options)

// WithPoolSize caps open connections. Zero keeps the go-redis default.
func WithPoolSize(n int) Option {
	return func(o *redis.Options) {
		if n > 0 {
			o.PoolSize = n
		}
	}
}

// WithTimeout bounds dialing, reads and writes.
func WithTimeout(d time.Duration) Option {
	return func(o *redis.Options) {
		if d > 0 {
			o.DialTimeout = d
			o.ReadTimeout = d
			o.WriteTimeout = d
		}
	}
}

// NewClient connects to url (redis://[:password@]host:port[/db]) and pings it
// once before returning.
func NewClient(url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, ErrMissingURL
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	options.DialTimeout = defaultTimeout
	for _, opt := range opts {
		opt(options)
	}

	c := &Client{Client: redis.NewClient(options), timeout: options.DialTimeout}
	if err := c.Check(context.Background()); err != nil {
		_ = c.Client.Close()
		return nil, err
	}
	return c, nil
}

// Check pings the server within the dial timeout.
func (c *Client) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.Options().Addr, err)
	}
	return nil
}
