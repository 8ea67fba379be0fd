// Package domain contains core concepts of the direct-messaging system.
// This file defines Message and its enriched presentation form.
// Messages are immutable once stored.
package domain

import "time"

// Message is a stored direct message between two users.
type Message struct {
	ID        uint64
	Sender    string
	Receiver  string
	Content   string
	Timestamp time.Time
}

// UserSummary is the display-safe projection of a user. It never carries credentials.
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// EnrichedMessage is a Message whose participants have been resolved for display.
type EnrichedMessage struct {
	ID        uint64      `json:"id"`
	Sender    UserSummary `json:"sender"`
	Receiver  UserSummary `json:"receiver"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// NotificationSender is the lightweight sender form pushed on personal channels.
type NotificationSender struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
}

// Notification alerts a user that a message arrived, whatever conversation is open.
type Notification struct {
	Sender  NotificationSender `json:"sender"`
	Content string             `json:"content"`
}

// Participants returns the unordered pair in a canonical order.
func (m Message) Participants() (string, string) {
	return OrderedPair(m.Sender, m.Receiver)
}

// OrderedPair sorts two identifiers so that {a, b} and {b, a} map to the same value.
func OrderedPair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

func BareSummary(id string) UserSummary {
	return UserSummary{ID: id}
}

func (e EnrichedMessage) ToNotification() Notification {
	return Notification{
		Sender: NotificationSender{
			ID:        e.Sender.ID,
			FirstName: e.Sender.FirstName,
		},
		Content: e.Content,
	}
}
