// Package relay fans inbound chat events out to the dashboard room of the
// recipient and the conversation room of the chat.
package relay

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"DMRelay/service/events"
	"DMRelay/service/rooms"
	"DMRelay/service/storage"
)

// Sender is the slice of the room hub the relay needs.
type Sender interface {
	SendToRoom(room, event string, payload any, excludeID string)
}

// LastMessage is the summary embedded in a dashboard notification. Fields
// mirror whatever the sender supplied; absent message fields stay absent in
// the notification rather than being rejected.
type LastMessage struct {
	SentAt any `json:"sentAt,omitempty"`
	Text   any `json:"text,omitempty"`
	Sender any `json:"sender,omitempty"`
}

// Notification is the user-message payload delivered to the recipient's
// dashboard room.
type Notification struct {
	LastMessage     LastMessage `json:"lastMessage"`
	ChatID          string      `json:"chatId"`
	UnreadIncrement int         `json:"unreadIncrement"`
}

type Relay struct {
	store     storage.Store
	hub       Sender
	typingTTL time.Duration
}

func NewRelay(store storage.Store, hub Sender, typingTTL time.Duration) *Relay {
	if typingTTL <= 0 {
		typingTTL = 3 * time.Second
	}
	return &Relay{store: store, hub: hub, typingTTL: typingTTL}
}

// RelayMessage forwards one chat message: a notification to every connection
// the recipient has open on their dashboard, and the verbatim message to
// everyone viewing the conversation (excluding the sender). Both sends are
// independent and unconditional; a recipient on the dashboard with the chat
// open receives both and reconciles at the display layer. Pure in-process
// fan-out, no store access.
func (r *Relay) RelayMessage(senderConnID string, message map[string]any, toUserID, chatID string) {
	notification := Notification{
		LastMessage: LastMessage{
			SentAt: message["createdAt"],
			Text:   message["text"],
			Sender: message["sender"],
		},
		ChatID:          chatID,
		UnreadIncrement: 1,
	}

	r.hub.SendToRoom(rooms.UserRoom(toUserID), events.UserMessage, notification, "")
	r.hub.SendToRoom(rooms.ChatRoom(chatID), events.ChatMessage, message, senderConnID)
}

// RelayTyping writes the short-lived typing marker and tells the rest of the
// conversation. There is no stop-typing event; consumers treat the indicator
// as expired after the marker's TTL. A store failure aborts before any
// broadcast.
func (r *Relay) RelayTyping(ctx context.Context, senderConnID, chatID, userID string) error {
	key := storage.TypingKey(chatID, userID)
	if err := r.store.SetEx(ctx, key, "1", r.typingTTL); err != nil {
		return errors.Wrap(err, "typing marker")
	}

	r.hub.SendToRoom(rooms.ChatRoom(chatID), events.UserStartTyping,
		presencePayload{UserID: userID}, senderConnID)
	return nil
}

type presencePayload struct {
	UserID string `json:"userId"`
}
