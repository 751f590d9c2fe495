package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	UserNameKeyPrefix = "user:name:%s"
)

// UserTTL bounds how long a cached user row may lag the database.
const UserTTL = 5 * time.Minute

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserNameKey(username string) string {
	return fmt.Sprintf(UserNameKeyPrefix, username)
}

// Invalidate deletes keys, ignoring errors and a missing client.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateUser drops the id key and the key of every username given.
func InvalidateUser(ctx context.Context, userID uint, usernames ...string) {
	keys := []string{UserKey(userID)}
	for _, name := range usernames {
		keys = append(keys, UserNameKey(name))
	}
	Invalidate(ctx, keys...)
}
