package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

type MemberStatus string

const (
	MemberStatusInvited MemberStatus = "invited"
	MemberStatusMember  MemberStatus = "member"
)

// Membership links a user to a board. Only rows with status member grant
// access; an invited row carries a single-use InviteToken until redeemed.
type Membership struct {
	ID              uuid.UUID    `json:"id"`
	BoardID         uuid.UUID    `json:"board_id"`
	UserID          uuid.UUID    `json:"user_id"`
	Username        string       `json:"username,omitempty"`
	Role            MemberRole   `json:"role"`
	Status          MemberStatus `json:"status"`
	InviteToken     *string      `json:"-"`
	InviteExpiresAt *time.Time   `json:"-"`
}

// GrantsAccess reports whether the row confers room-join and mutation rights.
func (m *Membership) GrantsAccess() bool {
	return m != nil && m.Status == MemberStatusMember
}

type MembershipRepository interface {
	Get(ctx context.Context, boardID, userID uuid.UUID) (*Membership, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Membership, error)
	// UpsertInvite stores a pending invite for (board, user), replacing any
	// token still outstanding on an invited row. Returns ErrConflict when the
	// user is already a member.
	UpsertInvite(ctx context.Context, m *Membership) error
	// Redeem flips the row holding token to member and clears the token.
	// Returns ErrNotFound when no unexpired invite holds the token.
	Redeem(ctx context.Context, token string) (*Membership, error)
}
