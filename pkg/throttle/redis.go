package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window limiter shared across processes. Windows are
// bucketed by aligning the current time to the window size; the counter for
// each bucket is a Redis key updated with INCR, which makes the
// check-and-increment atomic without client-side coordination.
type Redis struct {
	client redis.Cmdable
	limit  Limit
	now    func() time.Time
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(client redis.Cmdable, limit Limit) (*Redis, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	return &Redis{client: client, limit: limit, now: time.Now}, nil
}

func (r *Redis) Take(ctx context.Context, key string) error {
	now := r.now()
	bucket := now.UnixNano() / int64(r.limit.Window)
	redisKey := fmt.Sprintf("throttle:%s:%d", key, bucket)

	n, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("throttle: incr %s: %w", redisKey, err)
	}

	// First taker sets the TTL; one extra window tolerates clock skew
	// between readers of the same bucket.
	if n == 1 {
		if err := r.client.Expire(ctx, redisKey, 2*r.limit.Window).Err(); err != nil {
			return fmt.Errorf("throttle: expire %s: %w", redisKey, err)
		}
	}

	if n > int64(r.limit.Events) {
		windowEnd := time.Unix(0, (bucket+1)*int64(r.limit.Window))
		return &RetryAfterError{Key: key, After: windowEnd.Sub(now)}
	}

	return nil
}

var _ Limiter = (*Redis)(nil)
