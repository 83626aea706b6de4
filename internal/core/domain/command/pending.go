package command

import (
	"authbot/internal/core/domain"
	"authbot/internal/core/port"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type PendingLister interface {
	Pending() map[domain.Identity]domain.IdentityMetadata
	AdminID() domain.Identity
}

// Pending lists identities waiting for authorization. Registered behind the admin gate.
type Pending struct {
	state    PendingLister
	notifier port.Notifier
	command  string
}

func NewPending(state PendingLister, notifier port.Notifier, command string) *Pending {
	return &Pending{state: state, notifier: notifier, command: command}
}

func (p *Pending) GetCommand() string {
	return p.command
}

const noPending = "no pending ids"

func (p *Pending) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", int64(message.ChatID)).
		Str("command", p.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	pending := p.state.Pending()
	ids := make([]domain.Identity, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	text := noPending
	if len(ids) > 0 {
		var sb strings.Builder
		for _, id := range ids {
			meta := pending[id]
			fmt.Fprintf(&sb, "%d %s %s\n", id, meta.FirstName, meta.LastName)
		}
		text = strings.TrimRight(sb.String(), "\n")
	}

	err := p.notifier.Notify(ctx, p.state.AdminID(), text)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingFailed, err)
	}

	return nil
}
