package services

import (
	"context"
	"direct-chat/domain"
	"direct-chat/domain/chat"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/mocks"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	aliceID = "7f3b7c4e-0d55-4f6a-9a59-3a8d9b0c1a01"
	bobID   = "a2d1c2f0-5a7e-4b7c-8c65-0b7e2b4d9e02"
)

var (
	alice = domain.User{ID: aliceID, FirstName: "Alice", LastName: "Martin", Email: "alice@example.com", PasswordHash: "secret"}
	bob   = domain.User{ID: bobID, FirstName: "Bob", LastName: "Durand", Email: "bob@example.com", PasswordHash: "secret"}
)

type chatFixture struct {
	messages   *mocks.MockIMessageRepository
	users      *mocks.MockIUserRepository
	dispatcher *mocks.MockIDispatcher
	service    *ChatService
}

func newChatFixture(t *testing.T) chatFixture {
	ctrl := gomock.NewController(t)
	f := chatFixture{
		messages:   mocks.NewMockIMessageRepository(ctrl),
		users:      mocks.NewMockIUserRepository(ctrl),
		dispatcher: mocks.NewMockIDispatcher(ctrl),
	}
	f.service = NewChatService(logs.GetLoggerFromLevel(slog.LevelDebug), f.messages, f.users, f.dispatcher)
	return f
}

func TestChatService_Send(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	now := time.Now().UTC()
	stored := domain.Message{ID: 1, Sender: aliceID, Receiver: bobID, Content: "hi", Timestamp: now}

	// Given both users exist
	f.messages.EXPECT().Append(aliceID, bobID, "hi").Return(stored, nil).Times(1)
	f.users.EXPECT().GetUserByID(aliceID).Return(alice, nil).Times(1)
	f.users.EXPECT().GetUserByID(bobID).Return(bob, nil).Times(1)

	var dispatched []event.DomainEvent
	f.dispatcher.EXPECT().Dispatch(gomock.Any()).
		Do(func(events ...event.DomainEvent) { dispatched = events }).Times(1)

	// When alice sends a message to bob
	got, err := f.service.Send(context.Background(), chat.SendMessageCommand{
		SenderID:   aliceID,
		ReceiverID: bobID,
		Content:    "hi",
	})

	// Then the enriched message is returned
	req.NoError(err)
	req.Equal(uint64(1), got.ID)
	req.Equal(alice.Summary(), got.Sender)
	req.Equal(bob.Summary(), got.Receiver)
	req.Equal(now, got.Timestamp)

	// And both live events were queued
	req.Len(dispatched, 2)
	req.Equal(domain.ConversationChannel(aliceID, bobID), dispatched[0].Channel())
	req.Equal(domain.PersonalChannel(bobID), dispatched[1].Channel())
	notified := dispatched[1].(event.MessageNotified)
	req.Equal(domain.NotificationSender{ID: aliceID, FirstName: "Alice"}, notified.Notification.Sender)
}

func TestChatService_Send_Rejects_Blank_Content(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	// Nothing is persisted nor emitted
	f.messages.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	f.dispatcher.EXPECT().Dispatch(gomock.Any()).Times(0)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := f.service.Send(context.Background(), chat.SendMessageCommand{
			SenderID: aliceID, ReceiverID: bobID, Content: content,
		})
		req.ErrorIs(err, errors.ErrEmptyContent)
		req.ErrorIs(err, errors.ErrValidation)
	}
}

func TestChatService_Send_Rejects_Self_Conversation(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	f.messages.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := f.service.Send(context.Background(), chat.SendMessageCommand{
		SenderID: aliceID, ReceiverID: aliceID, Content: "me",
	})

	req.ErrorIs(err, errors.ErrValidation)
}

func TestChatService_Send_Store_Failure_Emits_Nothing(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	// Given the receiver does not exist
	f.messages.EXPECT().Append(aliceID, bobID, "hi").
		Return(domain.Message{}, errors.ErrUserNotFound).Times(1)
	f.dispatcher.EXPECT().Dispatch(gomock.Any()).Times(0)

	_, err := f.service.Send(context.Background(), chat.SendMessageCommand{
		SenderID: aliceID, ReceiverID: bobID, Content: "hi",
	})

	req.ErrorIs(err, errors.ErrNotFound)
}

func TestChatService_Conversation(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	now := time.Now().UTC()

	// Given two messages exchanged between alice and bob
	f.messages.EXPECT().FindConversation(bobID, aliceID).Return([]domain.Message{
		{ID: 1, Sender: aliceID, Receiver: bobID, Content: "hi", Timestamp: now},
		{ID: 2, Sender: bobID, Receiver: aliceID, Content: "hello", Timestamp: now.Add(time.Second)},
	}, nil).Times(1)
	// Each participant is resolved once
	f.users.EXPECT().GetUserByID(aliceID).Return(alice, nil).Times(1)
	f.users.EXPECT().GetUserByID(bobID).Return(bob, nil).Times(1)

	// When bob reads the conversation
	conversation, err := f.service.Conversation(context.Background(), chat.GetConversationCommand{
		UserID: bobID, PartnerID: aliceID,
	})

	// Then both messages are enriched in order
	req.NoError(err)
	req.Len(conversation, 2)
	req.Equal("hi", conversation[0].Content)
	req.Equal(alice.Summary(), conversation[0].Sender)
	req.Equal(alice.Summary(), conversation[1].Receiver)
	req.Equal("hello", conversation[1].Content)
}

func TestChatService_Conversation_Empty(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	f.messages.EXPECT().FindConversation(aliceID, bobID).Return([]domain.Message{}, nil).Times(1)

	conversation, err := f.service.Conversation(context.Background(), chat.GetConversationCommand{
		UserID: aliceID, PartnerID: bobID,
	})

	req.NoError(err)
	req.NotNil(conversation)
	req.Empty(conversation)
}

func TestChatService_Conversation_Unknown_Participant_Degrades(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	// Given bob was deleted after the message was stored
	f.messages.EXPECT().FindConversation(aliceID, bobID).Return([]domain.Message{
		{ID: 1, Sender: bobID, Receiver: aliceID, Content: "bye"},
	}, nil).Times(1)
	f.users.EXPECT().GetUserByID(bobID).Return(domain.User{}, errors.ErrUserNotFound).Times(1)
	f.users.EXPECT().GetUserByID(aliceID).
		Return(domain.User{}, fmt.Errorf("%w: disk", errors.ErrStore)).Times(1)

	conversation, err := f.service.Conversation(context.Background(), chat.GetConversationCommand{
		UserID: aliceID, PartnerID: bobID,
	})

	// Then the message is still returned with bare summaries
	req.NoError(err)
	req.Equal(domain.BareSummary(bobID), conversation[0].Sender)
	req.Equal(domain.BareSummary(aliceID), conversation[0].Receiver)
}

func TestChatService_Conversation_Store_Error(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	f.messages.EXPECT().FindConversation(aliceID, bobID).
		Return(nil, fmt.Errorf("%w: closed", errors.ErrStore)).Times(1)

	_, err := f.service.Conversation(context.Background(), chat.GetConversationCommand{
		UserID: aliceID, PartnerID: bobID,
	})

	req.ErrorIs(err, errors.ErrStore)
}

func TestChatService_Cancelled_Request_Touches_Nothing(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	// Given the caller already went away
	cancel()

	// When it sends and queries, no repository nor dispatcher call is expected
	_, err := f.service.Send(ctx, chat.SendMessageCommand{SenderID: aliceID, ReceiverID: bobID, Content: "hi"})
	req.ErrorIs(err, context.Canceled)

	_, err = f.service.Conversation(ctx, chat.GetConversationCommand{UserID: aliceID, PartnerID: bobID})
	req.ErrorIs(err, context.Canceled)
}
