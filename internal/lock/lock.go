// Package lock provides the per-user trigger lock used by the scan
// orchestrator.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when the lock is held by someone else.
var ErrNotObtained = errors.New("lock: not obtained")

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains named locks. Obtain does not wait: a held key returns
// ErrNotObtained immediately.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Key returns the lock key for a user's scan trigger.
func Key(userID string) string {
	return fmt.Sprintf("spendscan:scan:%s", userID)
}

// RedisLocker backs Locker with redislock.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedis returns a RedisLocker using rdb.
func NewRedis(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr string) (*RedisLocker, *redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedis(rdb), rdb, nil
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lk, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", key, err)
	}
	return lk, nil
}

// LocalLocker is an in-process Locker. TTLs are honoured lazily on the
// next Obtain of the same key.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

// NewLocal returns an empty LocalLocker.
func NewLocal() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time), clock: time.Now}
}

func (l *LocalLocker) Obtain(_ context.Context, key string, ttl time.Duration) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if exp, ok := l.held[key]; ok && now.Before(exp) {
		return nil, ErrNotObtained
	}
	exp := now.Add(ttl)
	l.held[key] = exp
	return &localLock{parent: l, key: key, exp: exp}, nil
}

type localLock struct {
	parent *LocalLocker
	key    string
	exp    time.Time
}

func (k *localLock) Release(context.Context) error {
	k.parent.mu.Lock()
	defer k.parent.mu.Unlock()
	// a lock that expired and was re-obtained belongs to the new holder
	if exp, ok := k.parent.held[k.key]; ok && exp.Equal(k.exp) {
		delete(k.parent.held, k.key)
	}
	return nil
}

// Noop never contends.
type Noop struct{}

func (Noop) Obtain(context.Context, string, time.Duration) (Lock, error) { return noopLock{}, nil }

type noopLock struct{}

func (noopLock) Release(context.Context) error { return nil }

var (
	_ Locker = (*RedisLocker)(nil)
	_ Locker = (*LocalLocker)(nil)
	_ Locker = Noop{}
)
