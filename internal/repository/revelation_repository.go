package repository

import (
	"context"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
)

type RevelationRepository interface {
	Create(ctx context.Context, rev *domain.DailyRevelation) error
	GetByID(ctx context.Context, id int) (*domain.DailyRevelation, error)
	ListByConnection(ctx context.Context, connectionID int) ([]*domain.DailyRevelation, error)
	// GetBySenderAndDay returns the sender's non-photo revelation for the
	// given day, or domain.ErrRevelationNotFound.
	GetBySenderAndDay(ctx context.Context, connectionID, senderID, dayNumber int) (*domain.DailyRevelation, error)
	CountByConnection(ctx context.Context, connectionID int) (int, error)
	MarkRead(ctx context.Context, id int) error
}
