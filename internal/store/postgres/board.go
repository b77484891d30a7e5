package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/gosuda/collabboard/internal/domain"
)

type BoardRepo struct {
	pool *pgxpool.Pool
}

func NewBoardRepo(pool *pgxpool.Pool) *BoardRepo {
	return &BoardRepo{pool: pool}
}

func (r *BoardRepo) Create(ctx context.Context, b *domain.Board, memberIDs []uuid.UUID) error {
	others := lo.Uniq(lo.Without(memberIDs, b.OwnerID, uuid.Nil))

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO boards (id, owner_id, name, whiteboard_data, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			b.ID, b.OwnerID, b.Name, b.WhiteboardData, b.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert board: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO board_members (id, board_id, user_id, role, status)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), b.ID, b.OwnerID, domain.MemberRoleOwner, domain.MemberStatusMember,
		)
		if err != nil {
			return fmt.Errorf("insert owner: %w", err)
		}

		// Unknown user ids are skipped rather than failing the board.
		for _, userID := range others {
			_, err = tx.Exec(ctx,
				`INSERT INTO board_members (id, board_id, user_id, role, status)
				 SELECT $1, $2, id, $4, $5 FROM users WHERE id = $3`,
				uuid.New(), b.ID, userID, domain.MemberRoleMember, domain.MemberStatusMember,
			)
			if err != nil {
				return fmt.Errorf("insert member %s: %w", userID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("boardRepo.Create: %w", err)
	}

	return nil
}

func (r *BoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var b domain.Board

	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, whiteboard_data, created_at
		 FROM boards WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.OwnerID, &b.Name, &b.WhiteboardData, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", err)
	}

	return &b, nil
}

// ListForUser returns boards on which the user holds any membership row,
// including pending invites.
func (r *BoardRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.owner_id, b.name, b.whiteboard_data, b.created_at
		 FROM boards b
		 JOIN board_members m ON m.board_id = b.id
		 WHERE m.user_id = $1
		 ORDER BY b.created_at, b.id
		 LIMIT 500`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListForUser: %w", err)
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		var b domain.Board
		err = rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.WhiteboardData, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("boardRepo.ListForUser: scan: %w", err)
		}
		boards = append(boards, &b)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListForUser: rows: %w", err)
	}

	return boards, nil
}

func (r *BoardRepo) UpdateWhiteboard(ctx context.Context, id uuid.UUID, data string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE boards SET whiteboard_data = $1 WHERE id = $2`,
		data, id,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.UpdateWhiteboard: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.UpdateWhiteboard: %w", domain.ErrNotFound)
	}

	return nil
}
