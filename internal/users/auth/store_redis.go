// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/vidora/internal/platform/constants"
)

// RedisLoginThrottle implements [LoginThrottle] with a fixed window counter.
type RedisLoginThrottle struct {
	client      redis.Cmdable
	maxFailures int64
	window      time.Duration
}

// NewLoginThrottle creates a throttle allowing maxFailures per window.
func NewLoginThrottle(client redis.Cmdable, maxFailures int, window time.Duration) *RedisLoginThrottle {
	return &RedisLoginThrottle{
		client:      client,
		maxFailures: int64(maxFailures),
		window:      window,
	}
}

func failureKey(identifier string) string {
	return constants.RedisPrefixLoginFailures + identifier
}

/*
Allowed reports whether the identifier is still under its failure budget.

Returns:
  - bool: false once maxFailures have been recorded within the window
  - error: connectivity errors
*/
func (throttle *RedisLoginThrottle) Allowed(ctx context.Context, identifier string) (bool, error) {
	count, err := throttle.client.Get(ctx, failureKey(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("redis_login_throttle_get_failed: %w", err)
	}
	return count < throttle.maxFailures, nil
}

// RecordFailure increments the counter; the first failure opens the window.
func (throttle *RedisLoginThrottle) RecordFailure(ctx context.Context, identifier string) error {
	key := failureKey(identifier)

	pipe := throttle.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, throttle.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis_login_throttle_incr_failed: %w", err)
	}

	return nil
}

// Reset forgets previous failures after a successful login.
func (throttle *RedisLoginThrottle) Reset(ctx context.Context, identifier string) error {
	if err := throttle.client.Del(ctx, failureKey(identifier)).Err(); err != nil {
		return fmt.Errorf("redis_login_throttle_reset_failed: %w", err)
	}
	return nil
}
