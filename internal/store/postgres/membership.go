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

type MembershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) *MembershipRepo {
	return &MembershipRepo{pool: pool}
}

const membershipColumns = `m.id, m.board_id, m.user_id, u.username, m.role, m.status, m.invite_token, m.invite_expires_at`

func scanMembership(row pgx.Row) (*domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(&m.ID, &m.BoardID, &m.UserID, &m.Username, &m.Role, &m.Status, &m.InviteToken, &m.InviteExpiresAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepo) Get(ctx context.Context, boardID, userID uuid.UUID) (*domain.Membership, error) {
	m, err := scanMembership(r.pool.QueryRow(ctx,
		`SELECT `+membershipColumns+`
		 FROM board_members m JOIN users u ON u.id = m.user_id
		 WHERE m.board_id = $1 AND m.user_id = $2`,
		boardID, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("membershipRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("membershipRepo.Get: %w", err)
	}

	return m, nil
}

func (r *MembershipRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+membershipColumns+`
		 FROM board_members m JOIN users u ON u.id = m.user_id
		 WHERE m.board_id = $1
		 ORDER BY m.role DESC, u.username`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("membershipRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var members []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("membershipRepo.ListByBoard: scan: %w", err)
		}
		members = append(members, m)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("membershipRepo.ListByBoard: rows: %w", err)
	}

	return members, nil
}

// UpsertInvite inserts an invited row or refreshes the token on an existing
// one. A row that is already a member is left untouched.
func (r *MembershipRepo) UpsertInvite(ctx context.Context, m *domain.Membership) error {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO board_members (id, board_id, user_id, role, status, invite_token, invite_expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (board_id, user_id) DO UPDATE
		     SET invite_token = EXCLUDED.invite_token,
		         invite_expires_at = EXCLUDED.invite_expires_at
		     WHERE board_members.status = $5
		 RETURNING id`,
		m.ID, m.BoardID, m.UserID, domain.MemberRoleMember, domain.MemberStatusInvited,
		m.InviteToken, m.InviteExpiresAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("membershipRepo.UpsertInvite: already a member: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("membershipRepo.UpsertInvite: %w", err)
	}

	m.ID = id
	m.Role = domain.MemberRoleMember
	m.Status = domain.MemberStatusInvited
	return nil
}

// Redeem is a single conditional UPDATE so two concurrent redemptions of one
// token cannot both succeed.
func (r *MembershipRepo) Redeem(ctx context.Context, token string) (*domain.Membership, error) {
	m, err := scanMembership(r.pool.QueryRow(ctx,
		`WITH redeemed AS (
		     UPDATE board_members
		     SET status = $2, invite_token = NULL, invite_expires_at = NULL
		     WHERE invite_token = $1 AND status = $3 AND invite_expires_at > now()
		     RETURNING id, board_id, user_id, role, status, invite_token, invite_expires_at
		 )
		 SELECT m.id, m.board_id, m.user_id, u.username, m.role, m.status, m.invite_token, m.invite_expires_at
		 FROM redeemed m JOIN users u ON u.id = m.user_id`,
		token, domain.MemberStatusMember, domain.MemberStatusInvited,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("membershipRepo.Redeem: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("membershipRepo.Redeem: %w", err)
	}

	return m, nil
}
