package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

type accuracyRepository struct {
	db *sqlx.DB
}

func NewAccuracyRepository(db *sqlx.DB) repository.AccuracyRepository {
	return &accuracyRepository{db: db}
}

func (r *accuracyRepository) Create(ctx context.Context, rec *domain.CompatibilityAccuracyRecord) error {
	query := `
		INSERT INTO compatibility_accuracy_records (
			connection_id, predicted_score, prediction_confidence, algorithm_version
		)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return q(ctx, r.db).QueryRowContext(ctx, query,
		rec.ConnectionID, rec.PredictedScore, rec.PredictionConfidence, rec.AlgorithmVersion,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

func (r *accuracyRepository) GetByConnectionID(ctx context.Context, connectionID int) (*domain.CompatibilityAccuracyRecord, error) {
	var rec domain.CompatibilityAccuracyRecord
	query := `SELECT * FROM compatibility_accuracy_records WHERE connection_id = $1`
	err := q(ctx, r.db).GetContext(ctx, &rec, query, connectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccuracyRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *accuracyRepository) Update(ctx context.Context, rec *domain.CompatibilityAccuracyRecord) error {
	query := `
		UPDATE compatibility_accuracy_records
		SET message_count = $1, revelation_completion_rate = $2, days_survived = $3,
		    reached_photo_reveal = $4, mutual_satisfaction = $5,
		    actual_success_score = $6, prediction_accuracy = $7, prediction_error = $8,
		    evaluated_at = $9, updated_at = NOW()
		WHERE id = $10
	`
	result, err := q(ctx, r.db).ExecContext(ctx, query,
		rec.MessageCount, rec.RevelationCompletionRate, rec.DaysSurvived,
		rec.ReachedPhotoReveal, rec.MutualSatisfaction,
		rec.ActualSuccessScore, rec.PredictionAccuracy, rec.PredictionError,
		rec.EvaluatedAt, rec.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAccuracyRecordNotFound
	}
	return nil
}

func (r *accuracyRepository) ListEvaluated(ctx context.Context, algorithmVersion string, limit, offset int) ([]*domain.CompatibilityAccuracyRecord, error) {
	var recs []*domain.CompatibilityAccuracyRecord
	if algorithmVersion == "" {
		query := `
			SELECT * FROM compatibility_accuracy_records
			WHERE evaluated_at IS NOT NULL
			ORDER BY evaluated_at DESC
			LIMIT $1 OFFSET $2
		`
		err := q(ctx, r.db).SelectContext(ctx, &recs, query, limit, offset)
		return recs, err
	}
	query := `
		SELECT * FROM compatibility_accuracy_records
		WHERE evaluated_at IS NOT NULL AND algorithm_version = $1
		ORDER BY evaluated_at DESC
		LIMIT $2 OFFSET $3
	`
	err := q(ctx, r.db).SelectContext(ctx, &recs, query, algorithmVersion, limit, offset)
	return recs, err
}
