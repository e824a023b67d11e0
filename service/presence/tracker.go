// Package presence converts raw connect/disconnect/join activity from
// possibly-multiple simultaneous connections per user into a single,
// edge-triggered online/offline signal.
package presence

import (
	"context"

	"github.com/pkg/errors"

	"DMRelay/service/events"
	"DMRelay/service/rooms"
	"DMRelay/service/storage"
)

// Broadcaster is the slice of the room hub the tracker needs.
type Broadcaster interface {
	Join(connID, room string)
	BroadcastAll(event string, payload any, excludeID string)
}

// StatusPayload is the data carried by user-online / user-offline events.
type StatusPayload struct {
	UserID string `json:"userId"`
}

// Tracker keeps per-user session bookkeeping in the shared store. Invariant
// after every completed Join/Leave: a user is in the online set iff their
// session set is non-empty. The store's atomic add-with-result is the only
// synchronization; two racing joins for the same user cannot both observe
// "newly online".
type Tracker struct {
	store storage.Store
	hub   Broadcaster
}

func NewTracker(store storage.Store, hub Broadcaster) *Tracker {
	return &Tracker{store: store, hub: hub}
}

// Join binds a connection to a user and broadcasts user-online to everyone
// else if this is the user's first open session. A second tab for an
// already-online user triggers no extra broadcast.
//
// A connection id lives in at most one user's session set. A connection that
// re-joins under a different user id is first released from its previous
// binding, with the same offline bookkeeping a disconnect would run.
//
// A store failure aborts the operation with no broadcast; the resulting
// inconsistency self-heals on the user's next join/leave.
func (t *Tracker) Join(ctx context.Context, connID, userID string) error {
	prev, bound, err := t.store.HGet(ctx, storage.ConnMapKey, connID)
	if err != nil {
		return errors.Wrap(err, "presence join: resolve previous binding")
	}
	if bound && prev != userID {
		if err := t.release(ctx, connID, prev); err != nil {
			return errors.Wrap(err, "presence join: release previous binding")
		}
	}

	if err := t.store.HSet(ctx, storage.ConnMapKey, connID, userID); err != nil {
		return errors.Wrap(err, "presence join: record connection")
	}
	if _, err := t.store.SAdd(ctx, storage.SessionsKey(userID), connID); err != nil {
		return errors.Wrap(err, "presence join: add session")
	}

	newlyOnline, err := t.store.SAdd(ctx, storage.OnlineUsersKey, userID)
	if err != nil {
		return errors.Wrap(err, "presence join: mark online")
	}
	if newlyOnline {
		t.hub.BroadcastAll(events.UserOnline, StatusPayload{UserID: userID}, connID)
	}

	t.hub.Join(connID, rooms.UserRoom(userID))
	return nil
}

// Leave tears down one connection's session. A connection that was never
// joined to a user is a normal no-op. user-offline fires only when the last
// session for the user is gone.
func (t *Tracker) Leave(ctx context.Context, connID string) error {
	userID, ok, err := t.store.HGet(ctx, storage.ConnMapKey, connID)
	if err != nil {
		return errors.Wrap(err, "presence leave: resolve user")
	}
	if !ok {
		return nil
	}

	if err := t.release(ctx, connID, userID); err != nil {
		return errors.Wrap(err, "presence leave")
	}

	if err := t.store.HDel(ctx, storage.ConnMapKey, connID); err != nil {
		return errors.Wrap(err, "presence leave: drop connection record")
	}
	return nil
}

// release drops one connection from a user's session set and, when it was the
// user's last session, marks them offline and broadcasts user-offline. Shared
// by Leave and the re-join cleanup in Join.
func (t *Tracker) release(ctx context.Context, connID, userID string) error {
	if err := t.store.SRem(ctx, storage.SessionsKey(userID), connID); err != nil {
		return errors.Wrap(err, "remove session")
	}

	remaining, err := t.store.SCard(ctx, storage.SessionsKey(userID))
	if err != nil {
		return errors.Wrap(err, "count sessions")
	}
	if remaining == 0 {
		if err := t.store.SRem(ctx, storage.OnlineUsersKey, userID); err != nil {
			return errors.Wrap(err, "mark offline")
		}
		t.hub.BroadcastAll(events.UserOffline, StatusPayload{UserID: userID}, connID)
	}
	return nil
}
