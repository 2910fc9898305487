package service

import (
	"encoding/json"

	"go-fairway/internal/apperr"
	"go-fairway/internal/event"
	"go-fairway/internal/interfaces"
	"go-fairway/internal/model"
	"go-fairway/internal/repository"
	"go-fairway/pkg/logger"

	"go.uber.org/zap"
)

// ChatService persists session chat and mirrors each message onto the
// session's realtime channel. The database row is authoritative; the
// broadcast is best-effort.
type ChatService struct {
	hub         interfaces.ConnectionManager
	messageRepo *repository.ChatMessageRepository
	sessionRepo *repository.SessionRepository
	userRepo    *repository.UserRepository
}

func NewChatService(
	hub interfaces.ConnectionManager,
	messageRepo *repository.ChatMessageRepository,
	sessionRepo *repository.SessionRepository,
	userRepo *repository.UserRepository,
) *ChatService {
	return &ChatService{
		hub:         hub,
		messageRepo: messageRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
	}
}

type ChatMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// HandleInbound implements interfaces.MessageHandler for frames sent
// over the websocket. Errors are logged, not surfaced: the sender can
// always fall back to the REST endpoint.
func (s *ChatService) HandleInbound(sessionID, senderID uint, data []byte) {
	var req ChatMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.L.Warn("Failed to unmarshal inbound chat frame",
			zap.Uint("senderID", senderID), zap.Error(err))
		return
	}
	if _, err := s.SendMessage(sessionID, senderID, req); err != nil {
		logger.L.Warn("Error processing inbound chat frame",
			zap.Uint("sessionID", sessionID),
			zap.Uint("senderID", senderID),
			zap.Error(err))
	}
}

func (s *ChatService) SendMessage(sessionID, senderID uint, req ChatMessageRequest) (*model.ChatMessage, error) {
	if req.Content == "" {
		return nil, apperr.New(apperr.InvalidInput, "message content is required")
	}

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.New(apperr.NotFound, "session not found")
	}
	if session.Status.Terminal() {
		return nil, apperr.New(apperr.InvalidState, "session has ended")
	}

	member, err := s.sessionRepo.FindMember(sessionID, senderID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperr.New(apperr.Forbidden, "you are not in this session")
	}

	message := &model.ChatMessage{
		SessionID: sessionID,
		SenderID:  senderID,
		Content:   req.Content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	senderUsername := ""
	if sender, err := s.userRepo.FindByID(senderID); err == nil && sender != nil {
		senderUsername = sender.Username
	}

	if s.hub != nil {
		ev := event.New(event.TypeChat, sessionID, event.ChatPayload{
			MessageID:      message.ID,
			SenderID:       senderID,
			SenderUsername: senderUsername,
			Content:        message.Content,
			SentAt:         message.CreatedAt,
		})
		if err := s.hub.Publish(ev); err != nil {
			logger.L.Warn("Failed to broadcast chat message",
				zap.Uint("messageID", message.ID), zap.Error(err))
		}
	}

	return message, nil
}

func (s *ChatService) History(sessionID, userID uint, limit, offset int) ([]model.ChatMessage, error) {
	member, err := s.sessionRepo.FindMember(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperr.New(apperr.Forbidden, "you are not in this session")
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.messageRepo.FindBySession(sessionID, limit, offset)
}
