package api

import (
	"direct-chat/auth"
	"direct-chat/domain"
	"direct-chat/domain/chat"
	"direct-chat/errors"
	"net/http"
)

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content"`
}

type conversationRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
}

type chatResponse struct {
	Chat domain.EnrichedMessage `json:"chat"`
}

type conversationResponse struct {
	Conversation []domain.EnrichedMessage `json:"conversation"`
}

// sendMessage stores a message from the session user. A senderId in the body is ignored.
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, s.log, errors.ErrMissingToken)
		return
	}
	var body sendMessageRequest
	if err := decodeAndValidate(r, &body); err != nil {
		respondError(w, r, s.log, err)
		return
	}
	msg, err := s.chat.Send(r.Context(), chat.SendMessageCommand{
		SenderID:   userID,
		ReceiverID: body.ReceiverID,
		Content:    body.Content,
	})
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, s.log, http.StatusCreated, chatResponse{Chat: msg})
}

func (s *Server) conversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, s.log, errors.ErrMissingToken)
		return
	}
	var body conversationRequest
	if err := decodeAndValidate(r, &body); err != nil {
		respondError(w, r, s.log, err)
		return
	}
	messages, err := s.chat.Conversation(r.Context(), chat.GetConversationCommand{
		UserID:    userID,
		PartnerID: body.ReceiverID,
	})
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, s.log, http.StatusOK, conversationResponse{Conversation: messages})
}
