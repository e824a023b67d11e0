// Package events names the wire-level socket events exchanged with clients.
package events

// Inbound (client -> relay).
const (
	JoinUserRoom = "join-user-room"
	JoinChatRoom = "join-chat-room"
	SendMessage  = "send-message"
	StartTyping  = "start-typing"
	Disconnect   = "disconnect"
)

// Outbound (relay -> client). ChatMessage is also accepted inbound as a
// log-only event.
const (
	ChatMessage     = "chat-message"
	UserMessage     = "user-message"
	UserOnline      = "user-online"
	UserOffline     = "user-offline"
	UserStartTyping = "user-start-typing"
)
