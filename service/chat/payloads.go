package chat

// Inbound frame envelope. data is kept generic and decoded per event; no
// validation is applied to message content, absent fields simply propagate.
type inFrame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

type joinUserRoomPayload struct {
	UserID string `json:"userId"`
}

type joinChatRoomPayload struct {
	ChatID string `json:"chatId"`
}

type sendMessagePayload struct {
	Message  map[string]any `json:"message"`
	ToUserID string         `json:"toUserId"`
	ChatID   string         `json:"chatId"`
}

type startTypingPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}
