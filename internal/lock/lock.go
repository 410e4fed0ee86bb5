package lock

import (
	"context"
	"time"
)

// Locker guards one client's recurrence while its exceptions and
// appointments are being written. Lock reports false without error when the
// key is already held.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// RecurrenceKey is the lock key for one client's rule.
func RecurrenceKey(clientID string) string {
	return "recurrence:" + clientID
}
