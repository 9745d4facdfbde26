// Package lock serializes work on one key across concurrent requests.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrNotAcquired is returned when a lock could not be taken in time
var ErrNotAcquired = errors.New("lock not acquired")

// Locker takes expiring locks. TryLock never blocks: ok is false when the
// key is already held. release is safe to call after the lock expired.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// Acquire blocks until key is locked, ctx ends, or ttl has passed without
// the holder letting go
func Acquire(ctx context.Context, l Locker, key string, ttl time.Duration) (func(), error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Millisecond
	b.MaxInterval = 50 * time.Millisecond
	b.MaxElapsedTime = ttl

	var release func()
	err := backoff.Retry(func() error {
		r, ok, err := l.TryLock(ctx, key, ttl)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return ErrNotAcquired
		}
		release = r
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", key, err)
	}
	return release, nil
}

// Local is an in-process Locker
type Local struct {
	mu    sync.Mutex
	next  uint64
	locks map[string]localLock
}

type localLock struct {
	token   uint64
	expires time.Time
}

// NewLocal creates an in-process locker
func NewLocal() *Local {
	return &Local{locks: make(map[string]localLock)}
}

// TryLock takes key unless a live lock already holds it
func (l *Local) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if held, ok := l.locks[key]; ok && now.Before(held.expires) {
		return nil, false, nil
	}

	l.next++
	token := l.next
	l.locks[key] = localLock{token: token, expires: now.Add(ttl)}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if held, ok := l.locks[key]; ok && held.token == token {
			delete(l.locks, key)
		}
	}, true, nil
}
