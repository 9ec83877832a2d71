// Package cache wraps the redis client shared by the server.
package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

type Client struct {
	rdb *redis.Client
}

// New parses a redis:// URL. poolSize overrides the URL's pool size when positive.
func New(dsn string, poolSize int) (*Client, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, oops.Code("CACHE_CONFIG_INVALID").Wrap(err)
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	return &Client{rdb: redis.NewClient(opts)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return oops.Code("CACHE_UNREACHABLE").Wrap(err)
	}
	return nil
}

// Addr is the host:port the client dials.
func (c *Client) Addr() string {
	return c.rdb.Options().Addr
}

func (c *Client) PoolSize() int {
	return c.rdb.Options().PoolSize
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
