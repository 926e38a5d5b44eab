package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Login lockout counters, keyed per username:
//   im:login:fail:<username>  -> attempt count (expires with the window)
//   im:login:lock:<username>  -> set while the account is locked (TTL = lock duration)

func failKey(username string) string { return "im:login:fail:" + username }
func lockKey(username string) string { return "im:login:lock:" + username }

// LockoutStore is the redis implementation of the auth service's lockout
// policy storage.
type LockoutStore struct{}

func NewLockoutStore() *LockoutStore { return &LockoutStore{} }

func (s *LockoutStore) IsLocked(ctx context.Context, username string) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis not initialized")
	}
	_, err := rdb.Get(ctx, lockKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *LockoutStore) RecordFailure(ctx context.Context, username string, window time.Duration) (int64, error) {
	if rdb == nil {
		return 0, fmt.Errorf("redis not initialized")
	}
	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, failKey(username))
	pipe.Expire(ctx, failKey(username), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *LockoutStore) Lock(ctx context.Context, username string, d time.Duration) error {
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Set(ctx, lockKey(username), time.Now().Add(d).Unix(), d).Err()
}

func (s *LockoutStore) Reset(ctx context.Context, username string) error {
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Del(ctx, failKey(username), lockKey(username)).Err()
}
