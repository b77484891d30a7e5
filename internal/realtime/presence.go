package realtime

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/collabboard/internal/domain"
)

// PresenceStore mirrors room occupancy outside the process so the REST layer
// can answer "who is online" without touching the broker. It is advisory:
// failures are logged and never affect delivery.
type PresenceStore interface {
	Add(ctx context.Context, boardID, connID uuid.UUID, id domain.Identity) error
	Remove(ctx context.Context, boardID, connID uuid.UUID) error
	List(ctx context.Context, boardID uuid.UUID) ([]domain.Identity, error)
	// Refresh rewrites the room's entries and renews their expiry.
	Refresh(ctx context.Context, boardID uuid.UUID, occupants map[uuid.UUID]domain.Identity) error
}
