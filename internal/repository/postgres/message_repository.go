package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (connection_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return q(ctx, r.db).QueryRowContext(ctx, query,
		msg.ConnectionID, msg.SenderID, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepository) ListByConnection(ctx context.Context, connectionID, limit, offset int) ([]*domain.Message, error) {
	var msgs []*domain.Message
	query := `
		SELECT * FROM messages
		WHERE connection_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := q(ctx, r.db).SelectContext(ctx, &msgs, query, connectionID, limit, offset)
	return msgs, err
}

func (r *messageRepository) CountByConnection(ctx context.Context, connectionID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE connection_id = $1`
	err := q(ctx, r.db).GetContext(ctx, &count, query, connectionID)
	return count, err
}
