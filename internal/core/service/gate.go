package service

import (
	"authbot/internal/core/domain"
	"authbot/internal/core/port"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const notAuthorized = "User %s with id %d not in id list"

// AccessGate forwards to the wrapped command only for authorized identities.
// Unknown identities are recorded as pending and reported to the admin.
type AccessGate struct {
	next     port.Command
	state    *BotState
	notifier port.Notifier
	policy   domain.PendingPolicy
}

func NewAccessGate(next port.Command, state *BotState, notifier port.Notifier, policy domain.PendingPolicy) *AccessGate {
	if policy == "" {
		policy = domain.NotifyOnce
	}

	return &AccessGate{next: next, state: state, notifier: notifier, policy: policy}
}

func (g *AccessGate) GetCommand() string {
	return g.next.GetCommand()
}

func (g *AccessGate) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	if g.state.IsAuthorized(message.ChatID) {
		log.Debug().Int64("chatId", int64(message.ChatID)).Msg("found id in authorized set")
		return g.next.Respond(ctx, timeout, message)
	}

	warning := fmt.Sprintf(notAuthorized, message.DisplayName(), message.ChatID)
	log.Warn().
		Int64("chatId", int64(message.ChatID)).
		Str("command", g.GetCommand()).
		Err(domain.ErrUnauthorized).
		Msg(warning)

	added, err := g.state.RecordPending(ctx, message.ChatID, message.Metadata())
	if err != nil {
		log.Error().Err(err).Int64("chatId", int64(message.ChatID)).Msg("failed to record pending id")
		return nil
	}

	if !added && g.policy == domain.NotifyOnce {
		log.Debug().Int64("chatId", int64(message.ChatID)).Msg("id already pending, admin not notified again")
		return nil
	}

	err = g.notifier.Notify(ctx, g.state.AdminID(), warning)
	if err != nil {
		log.Err(err).Msg("failed to send unauthorized warning to admin")
	}

	return nil
}

// AdminGate forwards to the wrapped command only when the requester is the admin.
// Everyone else is logged and dropped without a reply.
type AdminGate struct {
	next  port.Command
	state *BotState
}

func NewAdminGate(next port.Command, state *BotState) *AdminGate {
	return &AdminGate{next: next, state: state}
}

func (g *AdminGate) GetCommand() string {
	return g.next.GetCommand()
}

func (g *AdminGate) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	if !g.state.IsAdmin(message.ChatID) {
		log.Warn().
			Int64("chatId", int64(message.ChatID)).
			Str("command", g.GetCommand()).
			Err(domain.ErrAdminOnly).
			Msg("non-admin tried to use command")
		return nil
	}

	return g.next.Respond(ctx, timeout, message)
}
