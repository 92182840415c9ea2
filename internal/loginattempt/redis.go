package loginattempt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard is a Guard backed by Redis, sharing failure counters and
// lockouts across instances. Counters and lock keys carry the cooldown as
// their TTL, so lockouts self-expire server-side.
type RedisGuard struct {
	client      *redis.Client
	maxAttempts int
	cooldown    time.Duration
}

// NewRedisGuard returns a Guard that stores state in the given Redis client.
func NewRedisGuard(client *redis.Client, maxAttempts int, cooldown time.Duration) *RedisGuard {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &RedisGuard{client: client, maxAttempts: maxAttempts, cooldown: cooldown}
}

func failKey(username string) string { return "la:fail:" + username }
func lockKey(username string) string { return "la:lock:" + username }

// LoginFailed increments the per-username counter and sets the lock key when
// the threshold is crossed. While locked, failures do not accumulate.
func (g *RedisGuard) LoginFailed(ctx context.Context, username string) error {
	locked, err := g.IsBlocked(ctx, username)
	if err != nil {
		return err
	}
	if locked {
		return nil
	}
	count, err := g.client.Incr(ctx, failKey(username)).Result()
	if err != nil {
		return fmt.Errorf("loginattempt: redis incr: %w", err)
	}
	if count == 1 {
		if err := g.client.Expire(ctx, failKey(username), g.cooldown).Err(); err != nil {
			return fmt.Errorf("loginattempt: redis expire: %w", err)
		}
	}
	if count >= int64(g.maxAttempts) {
		if err := g.client.Set(ctx, lockKey(username), "1", g.cooldown).Err(); err != nil {
			return fmt.Errorf("loginattempt: redis set lock: %w", err)
		}
		if err := g.client.Del(ctx, failKey(username)).Err(); err != nil {
			return fmt.Errorf("loginattempt: redis del counter: %w", err)
		}
	}
	return nil
}

// LoginSucceeded clears the counter and any lockout for the username.
func (g *RedisGuard) LoginSucceeded(ctx context.Context, username string) error {
	if err := g.client.Del(ctx, failKey(username), lockKey(username)).Err(); err != nil {
		return fmt.Errorf("loginattempt: redis del: %w", err)
	}
	return nil
}

// IsBlocked reports whether the lock key exists. The key's TTL is the
// cooldown, so expiry needs no explicit unlock.
func (g *RedisGuard) IsBlocked(ctx context.Context, username string) (bool, error) {
	err := g.client.Get(ctx, lockKey(username)).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, fmt.Errorf("loginattempt: redis get: %w", err)
}
