package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RunLock keeps multiple process instances from firing the same task at
// the same moment.
type RunLock interface {
	Acquire(ctx context.Context, task string) (bool, error)
	Release(ctx context.Context, task string) error
}

// RedisRunLock implements RunLock with SETNX + TTL, one key per task.
type RedisRunLock struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	mu     sync.Mutex
	owners map[string]string
}

// NewRedisRunLock constructs a Redis-backed run lock.
func NewRedisRunLock(client *redis.Client, prefix string, ttl time.Duration) *RedisRunLock {
	if prefix == "" {
		prefix = "workdesk:monitor:"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRunLock{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		owners: make(map[string]string),
	}
}

// Acquire tries to own the task's lock for the configured TTL.
func (l *RedisRunLock) Acquire(ctx context.Context, task string) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+task, owner, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		l.mu.Lock()
		l.owners[task] = owner
		l.mu.Unlock()
	}
	return ok, nil
}

// Release frees the task's lock only while this instance still owns it.
func (l *RedisRunLock) Release(ctx context.Context, task string) error {
	l.mu.Lock()
	owner, ok := l.owners[task]
	delete(l.owners, task)
	l.mu.Unlock()
	if !ok {
		return nil
	}

	key := l.prefix + task
	value, err := l.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if value != owner {
		return nil
	}
	return l.client.Del(ctx, key).Err()
}

// NoopRunLock always grants the lock. Used when Redis is not configured
// and the service runs as a single instance.
type NoopRunLock struct{}

func (NoopRunLock) Acquire(context.Context, string) (bool, error) { return true, nil }
func (NoopRunLock) Release(context.Context, string) error         { return nil }
