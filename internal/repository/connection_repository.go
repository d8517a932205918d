package repository

import (
	"context"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
)

type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.SoulConnection) error
	GetByID(ctx context.Context, id int) (*domain.SoulConnection, error)
	// GetActiveByUsers looks up the non-ended connection for an
	// unordered pair of users.
	GetActiveByUsers(ctx context.Context, user1ID, user2ID int) (*domain.SoulConnection, error)
	ListForUser(ctx context.Context, userID, limit, offset int) ([]*domain.SoulConnection, error)
	ListActiveForUser(ctx context.Context, userID int) ([]*domain.SoulConnection, error)
	// Mutate loads the connection under a per-connection exclusive lock,
	// applies fn and persists the result. fn returning an error aborts
	// the whole mutation; no partial state is ever written. Repository
	// calls made with the ctx passed to fn join the same transaction.
	Mutate(ctx context.Context, id int, fn func(ctx context.Context, conn *domain.SoulConnection) error) (*domain.SoulConnection, error)
}
