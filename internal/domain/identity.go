package domain

import "github.com/google/uuid"

// Identity is the authenticated principal behind a connection or request.
// It is resolved once from a bearer credential and never changes afterwards.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"username"`
}

// IsZero reports whether the identity carries no authenticated user.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}
