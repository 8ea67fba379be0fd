package repositories

import "fmt"

// Key layout in BadgerDB:
//
//	user:id:{uuid}                      -> diskUser
//	user:email:{email}                  -> uuid
//	conv:{lowID}:{highID}:{id padded}   -> diskMessage
//	seq:message                         -> badger sequence for message ids
const (
	userIDPrefix    = "user:id:"
	userEmailPrefix = "user:email:"
	conversationTag = "conv"
	messageSequence = "seq:message"
)

func userKey(id string) []byte {
	return []byte(userIDPrefix + id)
}

func emailKey(email string) []byte {
	return []byte(userEmailPrefix + email)
}

// conversationPrefix is shared by both directions of a pair, which is what makes
// FindConversation symmetric.
func conversationPrefix(low, high string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", conversationTag, low, high))
}

// messageKey pads the id to 20 digits so lexicographic order equals id order.
func messageKey(low, high string, id uint64) []byte {
	return append(conversationPrefix(low, high), []byte(fmt.Sprintf("%020d", id))...)
}
