package event

import "direct-chat/domain"

// DomainEvent is anything the live channel can push to a subscribed connection.
type DomainEvent interface {
	Channel() domain.ChannelKey
	Type() string
}

const (
	MessageType      = "message"
	NotificationType = "notification"
)

// MessageDelivered carries a freshly persisted message to the conversation key
// the receiver listens on.
type MessageDelivered struct {
	Message domain.EnrichedMessage
}

func (m MessageDelivered) Channel() domain.ChannelKey {
	return domain.ConversationChannel(m.Message.Sender.ID, m.Message.Receiver.ID)
}

func (m MessageDelivered) Type() string { return MessageType }

// MessageNotified is the secondary, non-authoritative alert on the receiver's personal key.
type MessageNotified struct {
	ReceiverID   string
	Notification domain.Notification
}

func (m MessageNotified) Channel() domain.ChannelKey {
	return domain.PersonalChannel(m.ReceiverID)
}

func (m MessageNotified) Type() string { return NotificationType }

// FromMessage builds both events emitted for one stored message.
func FromMessage(msg domain.EnrichedMessage) []DomainEvent {
	return []DomainEvent{
		MessageDelivered{Message: msg},
		MessageNotified{ReceiverID: msg.Receiver.ID, Notification: msg.ToNotification()},
	}
}
