package appointment

import (
	"context"
	"errors"
	"sync"
	"time"

	"clinic-booking-be/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SlotLocker serializes check-then-insert for one doctor slot.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// LocalLocker is a keyed mutex for single-instance deployments. A key's
// entry lives only while someone holds or waits for it.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*localSlot)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.release(key, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, slot)
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) release(key string, slot *localSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

// releaseScript deletes the key only if we still own it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

var ErrLockTimeout = errors.New("timed out waiting for slot lock")

// RedisLocker holds slot locks in Redis so several API instances agree.
type RedisLocker struct {
	client   redis.Cmdable
	ttl      time.Duration
	wait     time.Duration
	retry    time.Duration
	newToken func() string
}

func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	return &RedisLocker{
		client:   client,
		ttl:      10 * time.Second,
		wait:     5 * time.Second,
		retry:    50 * time.Millisecond,
		newToken: uuid.NewString,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := l.newToken()
	deadline := time.Now().Add(l.wait)
	lockKey := "lock:" + key

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// Release with a fresh context so a cancelled request still frees the slot.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := l.client.Eval(releaseCtx, releaseScript, []string{lockKey}, token).Err(); err != nil {
					logger.FromCtx(ctx).Warn("slot lock release failed", zap.String("key", lockKey), zap.Error(err))
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
