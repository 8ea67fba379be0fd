package services

import (
	"context"
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/chat"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/repositories"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

type IChatService interface {
	Send(ctx context.Context, cmd chat.SendMessageCommand) (domain.EnrichedMessage, error)
	Conversation(ctx context.Context, cmd chat.GetConversationCommand) ([]domain.EnrichedMessage, error)
}

// ChatService accepts new messages and answers conversation queries.
// Live delivery is handed to the dispatcher and never affects the result of a send.
type ChatService struct {
	log               *slog.Logger
	messageRepository repositories.IMessageRepository
	userRepository    repositories.IUserRepository
	dispatcher        contract.IDispatcher
}

func NewChatService(log *slog.Logger, messageRepository repositories.IMessageRepository,
	userRepository repositories.IUserRepository, dispatcher contract.IDispatcher) *ChatService {
	return &ChatService{
		log:               log,
		messageRepository: messageRepository,
		userRepository:    userRepository,
		dispatcher:        dispatcher,
	}
}

// Send persists the message, resolves both participants and queues live delivery.
func (s *ChatService) Send(ctx context.Context, cmd chat.SendMessageCommand) (domain.EnrichedMessage, error) {
	if strings.TrimSpace(cmd.Content) == "" {
		return domain.EnrichedMessage{}, errors.ErrEmptyContent
	}
	if cmd.SenderID == cmd.ReceiverID {
		return domain.EnrichedMessage{}, errors.ErrSelfConversation
	}

	// An abandoned request must not write
	if err := ctx.Err(); err != nil {
		return domain.EnrichedMessage{}, fmt.Errorf("send aborted: %w", err)
	}

	msg, err := s.messageRepository.Append(cmd.SenderID, cmd.ReceiverID, cmd.Content)
	if err != nil {
		return domain.EnrichedMessage{}, err
	}

	summaries := newSummaryCache(s.log, s.userRepository)
	enriched := summaries.enrich(msg)

	s.dispatcher.Dispatch(event.FromMessage(enriched)...)
	s.log.DebugContext(ctx, "Message sent", "id", msg.ID, "sender", msg.Sender, "receiver", msg.Receiver)
	return enriched, nil
}

// Conversation returns the full history between the two users, oldest first.
func (s *ChatService) Conversation(ctx context.Context, cmd chat.GetConversationCommand) ([]domain.EnrichedMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("conversation aborted: %w", err)
	}
	messages, err := s.messageRepository.FindConversation(cmd.UserID, cmd.PartnerID)
	if err != nil {
		return nil, err
	}
	summaries := newSummaryCache(s.log, s.userRepository)
	return lo.Map(messages, func(msg domain.Message, _ int) domain.EnrichedMessage {
		return summaries.enrich(msg)
	}), nil
}

// summaryCache resolves each participant once per request.
type summaryCache struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	summaries      map[string]domain.UserSummary
}

func newSummaryCache(log *slog.Logger, userRepository repositories.IUserRepository) *summaryCache {
	return &summaryCache{
		log:            log,
		userRepository: userRepository,
		summaries:      make(map[string]domain.UserSummary, 2),
	}
}

func (c *summaryCache) enrich(msg domain.Message) domain.EnrichedMessage {
	return domain.EnrichedMessage{
		ID:        msg.ID,
		Sender:    c.resolve(msg.Sender),
		Receiver:  c.resolve(msg.Receiver),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
}

// resolve falls back to a bare summary when the user cannot be read.
func (c *summaryCache) resolve(userID string) domain.UserSummary {
	if summary, ok := c.summaries[userID]; ok {
		return summary
	}
	summary := domain.BareSummary(userID)
	user, err := c.userRepository.GetUserByID(userID)
	switch {
	case err == nil:
		summary = user.Summary()
	case stderrors.Is(err, errors.ErrNotFound):
		c.log.Debug("Participant not found, using bare summary", "user_id", userID)
	default:
		c.log.Warn("Participant lookup failed, using bare summary", "user_id", userID, "error", err)
	}
	c.summaries[userID] = summary
	return summary
}
