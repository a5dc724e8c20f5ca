// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"shelftalk/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 5 * time.Second
	dialTimeout = 5 * time.Second
)

var client *redis.Client

// errorCountHook feeds command failures into the Redis error counter.
// redis.Nil is a cache miss, not a failure, and is not counted.
type errorCountHook struct{}

func (errorCountHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorCountHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorCountHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// parseOptions accepts either a redis:// URL or a bare host:port and
// returns client options with the shared dial timeout applied.
func parseOptions(addr string) (*redis.Options, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	opts.DialTimeout = dialTimeout
	return opts, nil
}

// InitRedis establishes the process-wide Redis client. The cache is an
// optimization layer: on any failure the client stays nil and callers fall
// back to the database.
func InitRedis(addr string) {
	opts, err := parseOptions(addr)
	if err != nil {
		slog.Warn("invalid redis address, continuing without cache", "addr", addr, "err", err)
		client = nil
		return
	}

	candidate := redis.NewClient(opts)
	candidate.AddHook(errorCountHook{})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := candidate.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, continuing without cache", "addr", opts.Addr, "err", err)
		client = nil
		return
	}

	slog.Info("redis connected", "addr", opts.Addr)
	client = candidate
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}

// SetClient overrides the client. Tests use this with miniredis.
func SetClient(c *redis.Client) {
	client = c
}
