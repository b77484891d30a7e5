package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/collabboard/internal/domain"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

// Append inserts a message and returns the row with the id and timestamp
// the database assigned.
func (r *ChatRepo) Append(ctx context.Context, boardID, userID uuid.UUID, text string) (*domain.ChatMessage, error) {
	msg := domain.ChatMessage{BoardID: boardID, UserID: userID, Message: text}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (board_id, user_id, message)
		 SELECT $1, $2, $3 WHERE EXISTS (SELECT 1 FROM boards WHERE id = $1)
		 RETURNING id, timestamp`,
		boardID, userID, text,
	).Scan(&msg.ID, &msg.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("chatRepo.Append: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("chatRepo.Append: %w", err)
	}

	return &msg, nil
}

// ListByBoard returns the newest limit messages in chronological order.
func (r *ChatRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, user_id, message, timestamp FROM (
		     SELECT id, board_id, user_id, message, timestamp
		     FROM chat_messages WHERE board_id = $1
		     ORDER BY timestamp DESC, id DESC
		     LIMIT $2
		 ) recent ORDER BY timestamp, id`,
		boardID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("chatRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		err = rows.Scan(&m.ID, &m.BoardID, &m.UserID, &m.Message, &m.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("chatRepo.ListByBoard: scan: %w", err)
		}
		msgs = append(msgs, &m)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("chatRepo.ListByBoard: rows: %w", err)
	}

	return msgs, nil
}
