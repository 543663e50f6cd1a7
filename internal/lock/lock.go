package lock

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another owner holds the lock.
var ErrHeld = errors.New("operación en curso por otro administrador")

// Locker is a Redis SETNX lock keyed by name and owned by a token.
type Locker struct {
	Client *redis.Client
	Prefix string
}

func New(client *redis.Client) *Locker {
	return &Locker{Client: client, Prefix: "caravan:lock:"}
}

func (l *Locker) key(name string) string {
	return l.Prefix + name
}

// Acquire takes the lock for ttl. It returns false when someone else holds it.
func (l *Locker) Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	if l == nil || l.Client == nil {
		return true, nil
	}
	return l.Client.SetNX(ctx, l.key(name), owner, ttl).Result()
}

// Release drops the lock only when owner still holds it.
func (l *Locker) Release(ctx context.Context, name, owner string) error {
	if l == nil || l.Client == nil {
		return nil
	}
	val, err := l.Client.Get(ctx, l.key(name)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val != owner {
		return nil
	}
	return l.Client.Del(ctx, l.key(name)).Err()
}

// With runs fn while holding the lock, returning ErrHeld when it is taken.
func (l *Locker) With(ctx context.Context, name, owner string, ttl time.Duration, fn func() error) error {
	ok, err := l.Acquire(ctx, name, owner, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrHeld
	}
	defer func() { _ = l.Release(context.WithoutCancel(ctx), name, owner) }()
	return fn()
}
