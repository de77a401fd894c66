package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix    = "user:%d"
	revokedKeyPrefix = "revoked:%s"
)

// UserTTL bounds staleness of cached user rows.
const UserTTL = 5 * time.Minute

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// RevokedSessionKey is the revocation-list key for a session token jti.
func RevokedSessionKey(jti string) string {
	return fmt.Sprintf(revokedKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// RevokeSession marks a session token ID as revoked until its expiry.
func RevokeSession(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return client.Set(ctx, RevokedSessionKey(jti), "1", ttl).Err()
}

// IsSessionRevoked reports whether the session token ID has been revoked.
// Without Redis there is no revocation list and tokens stay valid until expiry.
func IsSessionRevoked(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, RevokedSessionKey(jti)).Result()
	return err == nil && n > 0
}
