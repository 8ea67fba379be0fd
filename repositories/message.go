//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"direct-chat/domain"
	"direct-chat/errors"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const sequenceBandwidth = 100

type IMessageRepository interface {
	Append(sender, receiver, content string) (domain.Message, error)
	FindConversation(userA, userB string) ([]domain.Message, error)
}

type MessageRepository struct {
	db       *badger.DB
	log      *slog.Logger
	sequence *badger.Sequence
	now      func() time.Time

	// Guards id and timestamp issuance so both grow together.
	mu     sync.Mutex
	lastAt time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	sequence, err := db.GetSequence([]byte(messageSequence), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("%w: message sequence: %v", errors.ErrStore, err)
	}
	return &MessageRepository{db: db, log: log, sequence: sequence, now: time.Now}, nil
}

// Close returns the leased but unused ids of the sequence to the database.
func (m *MessageRepository) Close() error {
	return m.sequence.Release()
}

type diskMessage struct {
	ID       uint64 `json:"id"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
	At       int64  `json:"at"`
}

// Append validates and persists a message.
// Both participants must exist: their user keys are read inside the same
// transaction that writes the message, so a message never references a user
// unknown at commit time.
func (m *MessageRepository) Append(sender, receiver, content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}
	if err := validateUserIDs(sender, receiver); err != nil {
		return domain.Message{}, err
	}

	id, at, err := m.issue()
	if err != nil {
		return domain.Message{}, err
	}

	message := domain.Message{
		ID:        id,
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Timestamp: at,
	}
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}

	low, high := message.Participants()
	err = m.db.Update(func(txn *badger.Txn) error {
		for _, userID := range []string{sender, receiver} {
			if _, err := txn.Get(userKey(userID)); err != nil {
				if stderrors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %s", errors.ErrUserNotFound, userID)
				}
				return err
			}
		}
		return txn.Set(messageKey(low, high, id), bytes)
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return domain.Message{}, err
		}
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}

	m.log.Debug("Message stored", "id", id, "sender", sender, "receiver", receiver)
	return message, nil
}

// issue hands out the next id with a timestamp never older than the previous one,
// so sorting by timestamp then id matches creation order.
func (m *MessageRepository) issue() (uint64, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.sequence.Next()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: next message id: %v", errors.ErrStore, err)
	}
	at := m.now().UTC()
	if at.Before(m.lastAt) {
		at = m.lastAt
	}
	m.lastAt = at
	// Sequence starts at 0, ids start at 1
	return id + 1, at, nil
}

// FindConversation returns every message exchanged between the two users,
// whatever their direction, oldest first.
// Both directions live under the same prefix so a single forward scan is enough.
func (m *MessageRepository) FindConversation(userA, userB string) ([]domain.Message, error) {
	if err := validateUserIDs(userA, userB); err != nil {
		return nil, err
	}
	low, high := domain.OrderedPair(userA, userB)
	prefix := conversationPrefix(low, high)

	var diskMessages []diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var dm diskMessage
				if err := json.Unmarshal(value, &dm); err != nil {
					return err
				}
				diskMessages = append(diskMessages, dm)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}

	messages := lo.Map(diskMessages, func(item diskMessage, _ int) domain.Message {
		return toMessage(item)
	})
	// Keys are in id order. Messages written by an earlier process may still
	// carry a clock that went backwards, so the order is enforced here.
	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].Timestamp.Before(messages[j].Timestamp)
		}
		return messages[i].ID < messages[j].ID
	})
	return messages, nil
}

func validateUserIDs(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: %q", errors.ErrInvalidUserID, id)
		}
	}
	return nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:       message.ID,
		Sender:   message.Sender,
		Receiver: message.Receiver,
		Content:  message.Content,
		At:       message.Timestamp.UnixNano(),
	}
}

func toMessage(dm diskMessage) domain.Message {
	return domain.Message{
		ID:        dm.ID,
		Sender:    dm.Sender,
		Receiver:  dm.Receiver,
		Content:   dm.Content,
		Timestamp: time.Unix(0, dm.At).UTC(),
	}
}

// WalkMessages visits every stored message in key order, pair by pair.
func WalkMessages(db *badger.DB, fn func(key string, message domain.Message) error) error {
	prefix := []byte(conversationTag + ":")
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var dm diskMessage
			if err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &dm)
			}); err != nil {
				return fmt.Errorf("%w: key %s: %v", errors.ErrStore, item.Key(), err)
			}
			if err := fn(string(item.Key()), toMessage(dm)); err != nil {
				return err
			}
		}
		return nil
	})
}
