package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

// Use hands the package an already-initialized client (see storage/redis).
func Use(client *redis.Client) { rdb = client }

// presence key: im:presence:<userID>
// Value: gateway id; TTL bounds the online validity period so a crashed
// gateway's entries expire on their own.
func presenceKey(userID int64) string {
	return "im:presence:" + strconv.FormatInt(userID, 10)
}

// PresenceOnline marks the user online on this gateway and renews the TTL.
func PresenceOnline(ctx context.Context, userID int64, gatewayID string, ttl time.Duration) error {
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Set(ctx, presenceKey(userID), gatewayID, ttl).Err()
}

// PresenceOffline actively marks the user offline (deletes the key).
func PresenceOffline(ctx context.Context, userID int64) error {
	if rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	return rdb.Del(ctx, presenceKey(userID)).Err()
}

// PresenceLookup reports whether the user is online and on which gateway.
func PresenceLookup(ctx context.Context, userID int64) (gatewayID string, online bool, err error) {
	if rdb == nil {
		return "", false, fmt.Errorf("redis not initialized")
	}
	val, err := rdb.Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
