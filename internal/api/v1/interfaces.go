package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/collabboard/internal/domain"
	"github.com/gosuda/collabboard/internal/notify"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Boards() domain.BoardRepository
	Memberships() domain.MembershipRepository
	Tasks() domain.TaskRepository
	Chats() domain.ChatRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (user *domain.User, accessToken, refreshToken string, err error)
	IssueTokens(user *domain.User) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// Live is the board-scoped authorization and broadcast surface shared with
// the websocket transport. *realtime.Router satisfies this interface.
type Live interface {
	Authorize(ctx context.Context, id domain.Identity, boardID uuid.UUID) (*domain.Membership, error)
	CommitTask(ctx context.Context, id domain.Identity, boardID uuid.UUID, commit func(context.Context) (*domain.Task, error)) (*domain.Task, error)
	CommitTaskDelete(ctx context.Context, id domain.Identity, boardID, taskID uuid.UUID, commit func(context.Context) error) error
	SaveWhiteboard(ctx context.Context, id domain.Identity, boardID uuid.UUID, blob string) error
	Presence(ctx context.Context, id domain.Identity, boardID uuid.UUID) ([]domain.Identity, error)
}

// InviteNotifier tells an invitee about a new invite.
// *notify.Notifier satisfies this interface.
type InviteNotifier interface {
	NotifyInvite(ctx context.Context, inv notify.Invite) error
}
