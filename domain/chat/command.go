package chat

// SendMessageCommand carries a send intent. SenderID always comes from the
// verified session, never from the request body.
type SendMessageCommand struct {
	SenderID   string
	ReceiverID string
	Content    string
}

type GetConversationCommand struct {
	UserID    string
	PartnerID string
}
