package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openkart/storefront/internal/domain/message"
)

const (
	messageColumns = `id, user_id, content, sender_type, created_at`

	createMessageSQL = `INSERT INTO messages (id, user_id, content, sender_type)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	listMessagesForUserSQL = `SELECT ` + messageColumns + ` FROM messages
		WHERE user_id = $1 ORDER BY created_at`

	latestUserMessageSQL = `SELECT ` + messageColumns + ` FROM messages
		WHERE sender_type = 'user' ORDER BY created_at DESC LIMIT 1`
)

var _ message.Repository = (*MessageRepository)(nil)

// MessageRepository implements message.Repository backed by PostgreSQL.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository returns a MessageRepository that uses the given pool.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create persists a message in its thread.
func (r *MessageRepository) Create(ctx context.Context, m *message.Message) (*message.Message, error) {
	err := r.pool.QueryRow(ctx, createMessageSQL, m.ID, m.UserID, m.Content, m.SenderType).Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	return m, nil
}

// ListForUser returns a user's thread, oldest first.
func (r *MessageRepository) ListForUser(ctx context.Context, userID string) ([]message.Message, error) {
	rows, err := r.pool.Query(ctx, listMessagesForUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing messages for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanMessage)
}

// Latest returns the newest user-sent message, or nil when none exist.
func (r *MessageRepository) Latest(ctx context.Context) (*message.Message, error) {
	rows, err := r.pool.Query(ctx, latestUserMessageSQL)
	if err != nil {
		return nil, fmt.Errorf("getting latest message: %w", err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, scanMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting latest message: %w", err)
	}
	return &m, nil
}

func scanMessage(row pgx.CollectableRow) (message.Message, error) {
	var m message.Message
	err := row.Scan(&m.ID, &m.UserID, &m.Content, &m.SenderType, &m.CreatedAt)
	return m, err
}
