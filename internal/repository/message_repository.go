package repository

import (
	"context"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByConnection(ctx context.Context, connectionID, limit, offset int) ([]*domain.Message, error)
	CountByConnection(ctx context.Context, connectionID int) (int, error)
}
