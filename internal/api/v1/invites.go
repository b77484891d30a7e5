package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/collabboard/internal/auth"
	"github.com/gosuda/collabboard/internal/domain"
	"github.com/gosuda/collabboard/internal/notify"
)

// InviteOptions controls invite lifetime and the accept link handed back to
// the inviter.
type InviteOptions struct {
	TTL           time.Duration
	PublicBaseURL string
}

type CreateInviteInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Email string `json:"email" minLength:"3" maxLength:"255" doc:"Email of the user to invite"`
	}
}

type CreateInviteOutput struct {
	Body struct {
		BoardID   uuid.UUID `json:"board_id"`
		UserID    uuid.UUID `json:"user_id"`
		Token     string    `json:"token"`
		AcceptURL string    `json:"accept_url"`
		ExpiresAt time.Time `json:"expires_at"`
	}
}

type RedeemInviteInput struct {
	Token string `path:"token" minLength:"1" maxLength:"128" doc:"Invite token"`
}

type RedeemInviteOutput struct {
	Body struct {
		BoardID uuid.UUID           `json:"board_id"`
		UserID  uuid.UUID           `json:"user_id"`
		Status  domain.MemberStatus `json:"status"`
	}
}

// RegisterInviteRoutes mounts invite creation, which requires a board member.
// A failed notification is logged; the response still carries the token.
func RegisterInviteRoutes(api huma.API, store DataStore, live Live, notifier InviteNotifier, opts InviteOptions) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-invite",
		Method:        http.MethodPost,
		Path:          "/boards/{boardID}/invites",
		Summary:       "Invite an existing user to a board",
		Tags:          []string{"Invites"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateInviteInput) (*CreateInviteOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := live.Authorize(ctx, id, input.BoardID); err != nil {
			return nil, statusError(err, "board")
		}

		board, err := store.Boards().GetByID(ctx, input.BoardID)
		if err != nil {
			return nil, statusError(err, "board")
		}

		invitee, err := store.Users().GetByEmail(ctx, input.Body.Email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user with this email does not exist")
			}
			return nil, huma.Error500InternalServerError("failed to look up user", err)
		}

		token, err := auth.NewInviteToken()
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to generate invite token", err)
		}
		expiresAt := time.Now().Add(opts.TTL).UTC()

		m := &domain.Membership{
			ID:              uuid.New(),
			BoardID:         input.BoardID,
			UserID:          invitee.ID,
			Role:            domain.MemberRoleMember,
			Status:          domain.MemberStatusInvited,
			InviteToken:     &token,
			InviteExpiresAt: &expiresAt,
		}
		if err := store.Memberships().UpsertInvite(ctx, m); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("user is already a member")
			}
			return nil, huma.Error500InternalServerError("failed to store invite", err)
		}

		log.Info().
			Str("board_id", input.BoardID.String()).
			Str("user_id", invitee.ID.String()).
			Str("invited_by", id.UserID.String()).
			Msg("invite created")

		acceptURL := opts.PublicBaseURL + "/accept-invite/" + token
		err = notifier.NotifyInvite(ctx, notify.Invite{
			BoardID:     board.ID,
			BoardName:   board.Name,
			InviterName: id.Name,
			Email:       invitee.Email,
			Username:    invitee.Username,
			AcceptURL:   acceptURL,
			ExpiresAt:   expiresAt,
		})
		if err != nil {
			log.Warn().Err(err).Str("board_id", input.BoardID.String()).Msg("invite notification failed")
		}

		out := &CreateInviteOutput{}
		out.Body.BoardID = input.BoardID
		out.Body.UserID = invitee.ID
		out.Body.Token = token
		out.Body.AcceptURL = acceptURL
		out.Body.ExpiresAt = expiresAt
		return out, nil
	})
}

// RegisterInviteRedeemRoutes mounts invite redemption. The token is the only
// credential, so this goes on the unauthenticated API.
func RegisterInviteRedeemRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "redeem-invite",
		Method:      http.MethodPost,
		Path:        "/invites/{token}",
		Summary:     "Accept a board invitation",
		Tags:        []string{"Invites"},
	}, func(ctx context.Context, input *RedeemInviteInput) (*RedeemInviteOutput, error) {
		m, err := store.Memberships().Redeem(ctx, input.Token)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("invitation is invalid, expired or already used")
			}
			return nil, huma.Error500InternalServerError("failed to redeem invite", err)
		}

		out := &RedeemInviteOutput{}
		out.Body.BoardID = m.BoardID
		out.Body.UserID = m.UserID
		out.Body.Status = m.Status
		return out, nil
	})
}
