package service

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter gates the auth endpoints per client IP
type RateLimiter interface {
	// Check records a request for ip and reports whether it is within
	// the limit.
	Check(ip string) bool
}

// MemoryRateLimit is a mutex-guarded sliding-window limiter used when
// redis is not available.
type MemoryRateLimit struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	window   time.Duration
	maxReqs  int
}

// NewMemoryRateLimit creates an in-memory rate limiter
func NewMemoryRateLimit(window time.Duration, maxReqs int) *MemoryRateLimit {
	return &MemoryRateLimit{
		requests: make(map[string][]time.Time),
		window:   window,
		maxReqs:  maxReqs,
	}
}

// Check checks if the IP is within the rate limit
func (r *MemoryRateLimit) Check(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// Drop requests that fell out of the window
	if reqs, exists := r.requests[ip]; exists {
		var valid []time.Time
		for _, t := range reqs {
			if now.Sub(t) < r.window {
				valid = append(valid, t)
			}
		}
		r.requests[ip] = valid
	}

	if len(r.requests[ip]) >= r.maxReqs {
		return false
	}

	r.requests[ip] = append(r.requests[ip], now)
	return true
}

// RedisRateLimit counts requests per IP in redis with a keyed window,
// so the limit holds across restarts and replicas.
type RedisRateLimit struct {
	client  *redis.Client
	window  time.Duration
	maxReqs int
	prefix  string
}

// NewRedisRateLimit creates a redis-backed rate limiter
func NewRedisRateLimit(client *redis.Client, window time.Duration, maxReqs int) *RedisRateLimit {
	return &RedisRateLimit{
		client:  client,
		window:  window,
		maxReqs: maxReqs,
		prefix:  "auth_rate:",
	}
}

// Check checks if the IP is within the rate limit. On a redis error it
// fails open so an outage does not lock everyone out.
func (r *RedisRateLimit) Check(ip string) bool {
	ctx := context.Background()
	key := r.prefix + ip

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		zap.L().Warn("rate limit check failed, allowing request",
			zap.String("ip", ip),
			zap.Error(err))
		return true
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			zap.L().Warn("failed to set rate limit window",
				zap.String("ip", ip),
				zap.Error(err))
		}
	}

	return count <= int64(r.maxReqs)
}
