package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is append-only. ID and Timestamp are assigned by the store.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	BoardID   uuid.UUID `json:"board_id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatRepository interface {
	Append(ctx context.Context, boardID, userID uuid.UUID, text string) (*ChatMessage, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*ChatMessage, error)
}
