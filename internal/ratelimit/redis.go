package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	redis "github.com/redis/go-redis/v9"
)

var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local info = redis.call("HMGET", key, "tokens", "last_refill")
	local tokens = tonumber(info[1])
	local last_refill = tonumber(info[2])

	if tokens == nil then
		tokens = capacity
		last_refill = now
	end

	local delta = math.max(0, now - last_refill)
	local filled_tokens = math.min(capacity, tokens + (delta / 1000 * rate))

	local allowed = 0
	if filled_tokens >= requested then
		filled_tokens = filled_tokens - requested
		allowed = 1
		redis.call("HMSET", key, "tokens", filled_tokens, "last_refill", now)
		redis.call("EXPIRE", key, math.ceil(capacity / rate) * 2)
	end

	return allowed
`)

// Redis shares token buckets between server instances.
type Redis struct {
	client   redis.Scripter
	prefix   string
	capacity int
	rate     float64
}

// NewRedis allows n requests per window for each key. Keys are stored under
// prefix.
func NewRedis(client redis.Scripter, prefix string, n int, window time.Duration) *Redis {
	return &Redis{
		client:   client,
		prefix:   prefix,
		capacity: n,
		rate:     float64(n) / window.Seconds(),
	}
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixMilli()

	keys := []string{fmt.Sprintf("%s:%s", l.prefix, key)}
	args := []interface{}{l.capacity, l.rate, now, 1}

	result, err := tokenBucketScript.Run(ctx, l.client, keys, args...).Int64()
	if err != nil {
		return false, errors.Wrap(err, "run token bucket script")
	}
	return result == 1, nil
}

// Connect returns a client for addr once it answers a ping.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", addr)
	}
	return client, nil
}
