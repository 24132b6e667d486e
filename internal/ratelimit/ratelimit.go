// Package ratelimit throttles requests per key, in process or through redis.
package ratelimit

import "context"

type Limiter interface {
	// Allow takes one token from key's bucket and reports whether there was
	// one.
	Allow(ctx context.Context, key string) (bool, error)
}
