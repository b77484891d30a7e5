package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/collabboard/internal/domain"
)

// MembershipOracle answers membership questions from the persistent store.
// *postgres.MembershipRepo satisfies this interface.
type MembershipOracle interface {
	Get(ctx context.Context, boardID, userID uuid.UUID) (*domain.Membership, error)
}

// Gate is the single authorization check in front of every room join and
// every board-scoped mutation. It only reads.
type Gate struct {
	oracle MembershipOracle
}

func NewGate(oracle MembershipOracle) *Gate {
	return &Gate{oracle: oracle}
}

// Authorize returns the caller's membership when it grants access.
// Errors wrap domain.ErrUnauthenticated, domain.ErrForbidden or
// domain.ErrPersistence.
func (g *Gate) Authorize(ctx context.Context, id domain.Identity, boardID uuid.UUID) (*domain.Membership, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("realtime.Gate.Authorize: %w", domain.ErrUnauthenticated)
	}
	if boardID == uuid.Nil {
		return nil, fmt.Errorf("realtime.Gate.Authorize: %w", domain.ErrForbidden)
	}

	m, err := g.oracle.Get(ctx, boardID, id.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("realtime.Gate.Authorize: %w", domain.ErrForbidden)
	}
	if err != nil {
		return nil, fmt.Errorf("realtime.Gate.Authorize: %w: %w", domain.ErrPersistence, err)
	}

	// An invited row does not confer access until the invite is redeemed.
	if !m.GrantsAccess() {
		return nil, fmt.Errorf("realtime.Gate.Authorize: %w", domain.ErrForbidden)
	}

	return m, nil
}
