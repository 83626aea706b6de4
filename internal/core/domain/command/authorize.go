package command

import (
	"authbot/internal/core/domain"
	"authbot/internal/core/port"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// IdentityAuthorizer moves identities into the authorized set.
type IdentityAuthorizer interface {
	Authorize(ctx context.Context, id domain.Identity) (domain.IdentityMetadata, error)
	AdminID() domain.Identity
}

// Authorize grants access to every identity given as argument.
// It must be registered behind the admin gate.
type Authorize struct {
	state    IdentityAuthorizer
	notifier port.Notifier
	command  string
}

func NewAuthorize(state IdentityAuthorizer, notifier port.Notifier, command string) *Authorize {
	return &Authorize{state: state, notifier: notifier, command: command}
}

func (a *Authorize) GetCommand() string {
	return a.command
}

const (
	invalidID  = "invalid id: %s"
	addingID   = "adding id %d"
	welcomeMsg = "Welcome!"
)

// Respond parses all arguments before touching any state. A single bad token rejects the whole list.
func (a *Authorize) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", int64(message.ChatID)).
		Str("command", a.GetCommand()).
		Logger()

	if len(message.Args) == 0 {
		l.Debug().Msg("no ids specified")
		return nil
	}

	ids := make([]domain.Identity, 0, len(message.Args))
	for _, arg := range message.Args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			l.Warn().Str("token", arg).Err(domain.ErrInvalidIdentity).Msg("rejecting authorize request")

			err = a.notifier.Notify(ctx, a.state.AdminID(), fmt.Sprintf(invalidID, arg))
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrSendingFailed, err)
			}

			return nil
		}
		ids = append(ids, domain.Identity(id))
	}

	l.Debug().Interface("ids", ids).Msg("authorizing ids")

	for _, id := range ids {
		if _, err := a.state.Authorize(ctx, id); err != nil {
			return fmt.Errorf("failed to authorize id %d: %w", id, err)
		}

		l.Info().Int64("authorizedId", int64(id)).Msg("id authorized")

		if err := a.notifier.Notify(ctx, a.state.AdminID(), fmt.Sprintf(addingID, id)); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrSendingFailed, err)
		}

		if err := a.notifier.Notify(ctx, id, welcomeMsg); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrSendingFailed, err)
		}
	}

	return nil
}
