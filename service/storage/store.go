package storage

import (
	"context"
	"time"
)

// Store is the narrow key-value contract the relay consumes. It is shared by
// all relay instances and all connections; the presence tracker relies on
// SAdd being a single atomic add-with-result operation (never a separate
// membership check followed by an add).
type Store interface {
	// SAdd adds member to the set at key and reports whether it was newly
	// inserted (i.e. was not already a member).
	SAdd(ctx context.Context, key, member string) (bool, error)
	SRem(ctx context.Context, key, member string) error
	SCard(ctx context.Context, key string) (int64, error)

	HSet(ctx context.Context, key, field, value string) error
	// HGet returns ok=false when the field is absent.
	HGet(ctx context.Context, key, field string) (string, bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key, field string) error

	// SetEx writes a value with an expiry; a later write overwrites both.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
}

// ===== key construction =====

// SessionsKey holds the set of connection ids currently bound to a user.
func SessionsKey(userID string) string { return "presence:sessions:" + userID }

// OnlineUsersKey holds the set of user ids with at least one open session.
const OnlineUsersKey = "presence:online"

// ConnMapKey maps connection id -> user id, so a disconnect (which carries
// only the connection id) can resolve whose session it was.
const ConnMapKey = "presence:conns"

// TypingKey marks (chatId, userId) as typing; existence/expiry is the whole
// signal, there is no stop-typing event.
func TypingKey(chatID, userID string) string {
	return "typing:" + chatID + ":" + userID
}
