package rooms

// Two room kinds by naming convention: one dashboard room per user, one
// room per conversation.

func UserRoom(userID string) string { return "user-room:" + userID }

func ChatRoom(chatID string) string { return "chat-room:" + chatID }
