package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/collabboard/internal/domain"
	"github.com/gosuda/collabboard/internal/server/middleware"
)

// caller returns the authenticated identity or a 401.
func caller(ctx context.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return domain.Identity{}, huma.Error401Unauthorized("authentication required")
	}
	return id, nil
}

// statusError maps domain errors to HTTP problems. what names the resource
// for 404s and the failed action for 500s.
func statusError(err error, what string) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return huma.Error401Unauthorized("authentication required")
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("not a member of this board")
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(what + " not found")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(what + " conflicts with existing state")
	case errors.Is(err, domain.ErrValidation):
		return huma.Error422UnprocessableEntity("invalid " + what)
	default:
		return huma.Error500InternalServerError("failed to process "+what, err)
	}
}
