package message

import (
	"context"
	"fmt"
	"strings"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

type MessageUseCase struct {
	connRepo    repository.ConnectionRepository
	messageRepo repository.MessageRepository
}

func NewMessageUseCase(
	connRepo repository.ConnectionRepository,
	messageRepo repository.MessageRepository,
) *MessageUseCase {
	return &MessageUseCase{
		connRepo:    connRepo,
		messageRepo: messageRepo,
	}
}

type SendRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// Send posts a message into the connection's chat. Paused and ended
// connections do not accept new messages.
func (uc *MessageUseCase) Send(ctx context.Context, connectionID, senderID int, req *SendRequest) (*domain.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}

	conn, err := uc.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasUser(senderID) {
		return nil, domain.ErrNotParticipant
	}
	if conn.Status == domain.StatusEnded {
		return nil, domain.ErrConnectionEnded
	}
	if conn.Status == domain.StatusPaused {
		return nil, domain.ErrConnectionPaused
	}

	msg := &domain.Message{
		ConnectionID: connectionID,
		SenderID:     senderID,
		Content:      req.Content,
	}
	if err := uc.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// List returns the connection's messages, newest first, participants only.
func (uc *MessageUseCase) List(ctx context.Context, connectionID, userID, limit, offset int) ([]*domain.Message, error) {
	conn, err := uc.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasUser(userID) {
		return nil, domain.ErrNotParticipant
	}
	if limit <= 0 {
		limit = 100
	}
	return uc.messageRepo.ListByConnection(ctx, connectionID, limit, offset)
}
