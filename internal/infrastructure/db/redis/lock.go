package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shopfront/store-api/internal/core/domain"
)

const lockPrefix = "lock:"

// releaseScript deletes the key only while it still holds the caller's token,
// so an expired holder cannot release a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived exclusive locks.
// Key format: lock:<key>
type Locker struct {
	client *redis.Client
}

// NewLocker creates a Locker wrapping the given Redis client.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// Acquire takes the lock for key or returns domain.ErrCheckoutInProgress when
// another holder has it. The lock expires after ttl if never released.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	k := lockKey(key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrCheckoutInProgress
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{k}, token).Err(); err != nil {
			return fmt.Errorf("unlock %s: %w", key, err)
		}
		return nil
	}, nil
}

func lockKey(key string) string {
	return lockPrefix + key
}
