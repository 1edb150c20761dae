package publication

import (
	"context"
	"time"

	"github.com/google/uuid"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Locker a best-effort mutual exclusion between API instances
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, func(), error)
}

// NoopLocker always acquires
type NoopLocker struct{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (bool, func(), error) {
	return true, func() {}, nil
}

// releaseScript deletes the key only if this instance still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker SETNX lock; falls back to NoopLocker behaviour when client is nil
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a Redis backed Locker
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, func(), error) {
	if l.client == nil {
		return NoopLocker{}.TryLock(ctx, key, ttl)
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, func() {}, nil
	}

	release := func() {
		// 요청 컨텍스트가 취소돼도 락은 해제
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("key", key).Msg("publication lock release failed")
		}
	}
	return true, release, nil
}
