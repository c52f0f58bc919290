// Package cache owns the redis client backing the rate limiter.
// It uses an embedded miniredis when no external address is configured.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mhsanaei/userhub/logger"
	"github.com/redis/go-redis/v9"
)

var errNotInitialized = errors.New("redis client not initialized")

var (
	client    *redis.Client
	miniRedis *miniredis.Miniredis
)

// InitRedis initializes the redis client. If redisAddr is empty, starts embedded redis.
func InitRedis(ctx context.Context, redisAddr string) error {
	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("failed to start embedded redis: %w", err)
		}
		miniRedis = mr
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		logger.Info("embedded redis started on", mr.Addr())
		return nil
	}

	client = redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", redisAddr, err)
	}
	logger.Info("connected to external redis at", redisAddr)
	return nil
}

// IsEmbedded returns true if using embedded redis.
func IsEmbedded() bool {
	return miniRedis != nil
}

// Advance moves the embedded server's clock forward so pending TTLs expire.
// miniredis never expires keys on its own. No-op for an external server.
func Advance(d time.Duration) {
	if miniRedis != nil {
		miniRedis.FastForward(d)
	}
}

// Close closes the redis connection and stops embedded redis if running.
func Close() error {
	var err error
	if client != nil {
		err = client.Close()
		client = nil
	}
	if miniRedis != nil {
		miniRedis.Close()
		miniRedis = nil
	}
	return err
}

// Incr increments the counter at key and makes it expire after ttl.
// It returns the new value.
func Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if client == nil {
		return 0, errNotInitialized
	}
	var incr *redis.IntCmd
	_, err := client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Ping checks the connection.
func Ping(ctx context.Context) error {
	if client == nil {
		return errNotInitialized
	}
	return client.Ping(ctx).Err()
}
