package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // argon2id
	CreatedAt    time.Time `json:"created_at"`
}

// Identity returns the live-channel identity for the user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Name: u.Username}
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Search(ctx context.Context, query string, limit int) ([]*User, error)
}
