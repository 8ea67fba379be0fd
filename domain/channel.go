package domain

import "strings"

// ChannelKey names a live-delivery subscription.
type ChannelKey string

const personalChannelPrefix = "personal-channel-"

// ConversationChannel is the directed key a receiver listens on for messages
// coming from one specific sender: "<from>-<to>".
func ConversationChannel(from, to string) ChannelKey {
	return ChannelKey(from + "-" + to)
}

// PersonalChannel is the per-user broadcast key used for out-of-band notifications.
func PersonalChannel(userID string) ChannelKey {
	return ChannelKey(personalChannelPrefix + userID)
}

func (k ChannelKey) IsPersonal() bool {
	return strings.HasPrefix(string(k), personalChannelPrefix)
}

func (k ChannelKey) String() string {
	return string(k)
}
