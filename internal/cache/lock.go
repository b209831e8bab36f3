package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired 等待超时仍未拿到锁
var ErrLockNotAcquired = errors.New("lock not acquired")

const (
	defaultLockTTL   = 90 * time.Second
	defaultLockWait  = 5 * time.Second
	lockRetryBackoff = 50 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker 基于 SET NX PX 的分布式互斥锁
type Locker struct {
	client *Client
	ttl    time.Duration
	wait   time.Duration
}

// NewLocker 创建互斥锁，ttl 为持锁上限，wait 为获取等待上限
func NewLocker(client *Client, ttl, wait time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait < 0 {
		wait = defaultLockWait
	}
	return &Locker{client: client, ttl: ttl, wait: wait}
}

// ReleaseFunc 释放锁
type ReleaseFunc func(ctx context.Context) error

// Acquire 获取指定名称的锁，等待超过上限返回 ErrLockNotAcquired
func (l *Locker) Acquire(ctx context.Context, name string) (ReleaseFunc, error) {
	key := l.client.Key("lock", name)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.Redis().SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func(releaseCtx context.Context) error {
				return releaseScript.Run(releaseCtx, l.client.Redis(), []string{key}, token).Err()
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockNotAcquired
		}
		timer := time.NewTimer(lockRetryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
