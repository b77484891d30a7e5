package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/collabboard/internal/domain"
)

// IdentityResolver turns a bearer credential into the identity it names.
// Resolution is stateless: the token alone decides.
type IdentityResolver struct {
	jwtSecret string
}

func NewIdentityResolver(jwtSecret string) *IdentityResolver {
	return &IdentityResolver{jwtSecret: jwtSecret}
}

// Resolve accepts only access tokens. Any failure is ErrUnauthenticated.
func (r *IdentityResolver) Resolve(_ context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, fmt.Errorf("auth.Resolve: missing token: %w", domain.ErrUnauthenticated)
	}

	claims, err := ValidateToken(r.jwtSecret, token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("auth.Resolve: %w: %w", domain.ErrUnauthenticated, err)
	}
	if claims.TokenType != tokenTypeAccess {
		return domain.Identity{}, fmt.Errorf("auth.Resolve: %s token: %w", claims.TokenType, domain.ErrUnauthenticated)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return domain.Identity{}, fmt.Errorf("auth.Resolve: invalid user id: %w", domain.ErrUnauthenticated)
	}

	return domain.Identity{UserID: userID, Name: claims.Username}, nil
}
