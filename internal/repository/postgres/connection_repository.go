package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

type connectionRepository struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) repository.ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, conn *domain.SoulConnection) error {
	// Ordered pair keeps the partial unique index on active pairs honest.
	user1ID, user2ID := conn.User1ID, conn.User2ID
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}
	conn.User1ID = user1ID
	conn.User2ID = user2ID

	query := `
		INSERT INTO soul_connections (
			user1_id, user2_id, initiated_by, connection_stage, status,
			compatibility_score, compatibility_breakdown, reveal_day,
			user1_consent, user2_consent, mutual_reveal_consent, first_dinner_completed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := q(ctx, r.db).QueryRowContext(ctx, query,
		conn.User1ID, conn.User2ID, conn.InitiatedBy, conn.Stage, conn.Status,
		conn.CompatibilityScore, conn.CompatibilityBreakdown, conn.RevealDay,
		conn.User1Consent, conn.User2Consent, conn.MutualRevealConsent, conn.FirstDinnerCompleted,
	).Scan(&conn.ID, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateConnection
		}
		return err
	}
	return nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id int) (*domain.SoulConnection, error) {
	var conn domain.SoulConnection
	query := `SELECT * FROM soul_connections WHERE id = $1`
	err := q(ctx, r.db).GetContext(ctx, &conn, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) GetActiveByUsers(ctx context.Context, user1ID, user2ID int) (*domain.SoulConnection, error) {
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}
	var conn domain.SoulConnection
	query := `
		SELECT * FROM soul_connections
		WHERE user1_id = $1 AND user2_id = $2 AND status <> 'ended'
	`
	err := q(ctx, r.db).GetContext(ctx, &conn, query, user1ID, user2ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) ListForUser(ctx context.Context, userID, limit, offset int) ([]*domain.SoulConnection, error) {
	var conns []*domain.SoulConnection
	query := `
		SELECT * FROM soul_connections
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := q(ctx, r.db).SelectContext(ctx, &conns, query, userID, limit, offset)
	return conns, err
}

func (r *connectionRepository) ListActiveForUser(ctx context.Context, userID int) ([]*domain.SoulConnection, error) {
	var conns []*domain.SoulConnection
	query := `
		SELECT * FROM soul_connections
		WHERE (user1_id = $1 OR user2_id = $1) AND status <> 'ended'
		ORDER BY created_at DESC
	`
	err := q(ctx, r.db).SelectContext(ctx, &conns, query, userID)
	return conns, err
}

// Mutate runs fn with the connection row locked (SELECT ... FOR UPDATE)
// inside a transaction, then writes the mutated fields back. Concurrent
// participant actions on the same connection serialize here; other
// connections are untouched.
func (r *connectionRepository) Mutate(ctx context.Context, id int, fn func(ctx context.Context, conn *domain.SoulConnection) error) (*domain.SoulConnection, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin connection tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txCtx := withTx(ctx, tx)

	var conn domain.SoulConnection
	err = tx.GetContext(txCtx, &conn, `SELECT * FROM soul_connections WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}

	if err := fn(txCtx, &conn); err != nil {
		return nil, err
	}

	query := `
		UPDATE soul_connections
		SET connection_stage = $1, status = $2, reveal_day = $3,
		    user1_consent = $4, user2_consent = $5, mutual_reveal_consent = $6,
		    first_dinner_completed = $7, last_advanced_at = $8, ended_at = $9,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $10
		RETURNING updated_at
	`
	err = tx.QueryRowContext(txCtx, query,
		conn.Stage, conn.Status, conn.RevealDay,
		conn.User1Consent, conn.User2Consent, conn.MutualRevealConsent,
		conn.FirstDinnerCompleted, conn.LastAdvancedAt, conn.EndedAt,
		conn.ID,
	).Scan(&conn.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit connection tx: %w", err)
	}
	return &conn, nil
}
