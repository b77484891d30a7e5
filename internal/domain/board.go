package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Board is the unit of collaboration. WhiteboardData is an opaque blob that
// is only ever replaced as a whole.
type Board struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Name           string    `json:"name"`
	WhiteboardData *string   `json:"whiteboard_data"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewBoard creates a Board with validated required fields.
func NewBoard(ownerID uuid.UUID, name string) (*Board, error) {
	if ownerID == uuid.Nil {
		return nil, errors.New("board: owner ID is required")
	}
	if name == "" {
		return nil, errors.New("board: name is required")
	}
	return &Board{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

type BoardRepository interface {
	// Create inserts the board, the owner membership and a member row for
	// every id in memberIDs that resolves to an existing user, atomically.
	Create(ctx context.Context, b *Board, memberIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Board, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Board, error)
	UpdateWhiteboard(ctx context.Context, id uuid.UUID, data string) error
}
