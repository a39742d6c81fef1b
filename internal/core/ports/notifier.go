package ports

import (
	"context"
	"time"

	"github.com/shopfront/store-api/internal/core/domain"
)

// Notifier delivers a message to an address. Success or failure is all the
// caller learns.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// Locker grants exclusive, expiring locks by key. Acquire returns
// domain.ErrCheckoutInProgress when the key is already held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
