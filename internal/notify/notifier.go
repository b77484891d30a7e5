package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNoChannelDelivered is returned when every registered channel failed.
var ErrNoChannelDelivered = errors.New("notify: no channel delivered the invite") //nolint:gochecknoglobals // sentinel error

// Invite is what a channel needs to tell a user they were invited to a board.
type Invite struct {
	BoardID     uuid.UUID `json:"board_id"`
	BoardName   string    `json:"board_name"`
	InviterName string    `json:"inviter"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	AcceptURL   string    `json:"accept_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Channel delivers invites over one transport.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, inv Invite) error
}

// ChannelSource lists channels in the order they should be tried.
type ChannelSource interface {
	Channels() []Channel
}

// Notifier hands invites to the first channel that accepts them.
type Notifier struct {
	channels ChannelSource
}

func New(channels ChannelSource) *Notifier {
	return &Notifier{channels: channels}
}

// NotifyInvite tries each channel in order until one succeeds. With no
// channels configured the accept link is logged so a developer can follow it.
func (n *Notifier) NotifyInvite(ctx context.Context, inv Invite) error {
	channels := n.channels.Channels()
	if len(channels) == 0 {
		log.Info().
			Str("board_id", inv.BoardID.String()).
			Str("email", inv.Email).
			Str("accept_url", inv.AcceptURL).
			Msg("notify: no channels configured, invite link logged")
		return nil
	}

	var errs []error
	for _, ch := range channels {
		err := ch.Deliver(ctx, inv)
		if err == nil {
			log.Debug().
				Str("board_id", inv.BoardID.String()).
				Str("channel", ch.Name()).
				Msg("notify: invite delivered")
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
	}

	return fmt.Errorf("notify.Notifier.NotifyInvite: %w: %w", ErrNoChannelDelivered, errors.Join(errs...))
}
