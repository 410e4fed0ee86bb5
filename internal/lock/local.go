package lock

import (
	"context"
	"sync"
	"time"
)

// Local is an in-process Locker for single-instance deployments and tests.
type Local struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

func NewLocal() *Local {
	return &Local{held: make(map[string]time.Time), clock: time.Now}
}

func (l *Local) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return false, nil
	}

	l.held[key] = now.Add(ttl)
	return true, nil
}

func (l *Local) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
	return nil
}
