package repository

import (
	"context"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
)

type AccuracyRepository interface {
	Create(ctx context.Context, rec *domain.CompatibilityAccuracyRecord) error
	GetByConnectionID(ctx context.Context, connectionID int) (*domain.CompatibilityAccuracyRecord, error)
	Update(ctx context.Context, rec *domain.CompatibilityAccuracyRecord) error
	// ListEvaluated returns completed records for the given algorithm
	// version, newest first; version "" matches all versions.
	ListEvaluated(ctx context.Context, algorithmVersion string, limit, offset int) ([]*domain.CompatibilityAccuracyRecord, error)
}
