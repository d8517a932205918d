package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

type revelationRepository struct {
	db *sqlx.DB
}

func NewRevelationRepository(db *sqlx.DB) repository.RevelationRepository {
	return &revelationRepository{db: db}
}

func (r *revelationRepository) Create(ctx context.Context, rev *domain.DailyRevelation) error {
	query := `
		INSERT INTO daily_revelations (connection_id, sender_id, day_number, revelation_type, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return q(ctx, r.db).QueryRowContext(ctx, query,
		rev.ConnectionID, rev.SenderID, rev.DayNumber, rev.RevelationType, rev.Content,
	).Scan(&rev.ID, &rev.CreatedAt)
}

func (r *revelationRepository) GetByID(ctx context.Context, id int) (*domain.DailyRevelation, error) {
	var rev domain.DailyRevelation
	query := `SELECT * FROM daily_revelations WHERE id = $1`
	err := q(ctx, r.db).GetContext(ctx, &rev, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRevelationNotFound
		}
		return nil, err
	}
	return &rev, nil
}

func (r *revelationRepository) ListByConnection(ctx context.Context, connectionID int) ([]*domain.DailyRevelation, error) {
	var revs []*domain.DailyRevelation
	query := `
		SELECT * FROM daily_revelations
		WHERE connection_id = $1
		ORDER BY day_number ASC, created_at ASC
	`
	err := q(ctx, r.db).SelectContext(ctx, &revs, query, connectionID)
	return revs, err
}

func (r *revelationRepository) GetBySenderAndDay(ctx context.Context, connectionID, senderID, dayNumber int) (*domain.DailyRevelation, error) {
	var rev domain.DailyRevelation
	query := `
		SELECT * FROM daily_revelations
		WHERE connection_id = $1 AND sender_id = $2 AND day_number = $3
		  AND revelation_type <> 'photo_reveal'
	`
	err := q(ctx, r.db).GetContext(ctx, &rev, query, connectionID, senderID, dayNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRevelationNotFound
		}
		return nil, err
	}
	return &rev, nil
}

func (r *revelationRepository) CountByConnection(ctx context.Context, connectionID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM daily_revelations WHERE connection_id = $1`
	err := q(ctx, r.db).GetContext(ctx, &count, query, connectionID)
	return count, err
}

func (r *revelationRepository) MarkRead(ctx context.Context, id int) error {
	query := `UPDATE daily_revelations SET is_read = true WHERE id = $1`
	result, err := q(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRevelationNotFound
	}
	return nil
}
