// internal/infrastructure/database/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// releaseScript deletes the lock only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker takes expiring locks shared by every instance using the same Redis
type Locker struct {
	client redis.Cmdable
	log    *logrus.Logger
}

// NewLocker creates a Redis backed locker
func NewLocker(client redis.Cmdable, log *logrus.Logger) *Locker {
	return &Locker{client: client, log: log}
}

// TryLock sets key with SET NX and a random token. The lock expires after
// ttl if its holder never releases it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.log.WithError(err).WithField("lock_key", key).Warn("Failed to release lock")
		}
	}, true, nil
}
