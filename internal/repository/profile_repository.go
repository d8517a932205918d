package repository

import (
	"context"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id int) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID int) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	// ListEligible returns onboarded profiles of active users, excluding
	// the given user, ordered by most recently updated first.
	ListEligible(ctx context.Context, excludeUserID, limit, offset int) ([]*domain.Profile, error)
}
