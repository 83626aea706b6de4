package command

import (
	"authbot/internal/core/domain"
	"authbot/internal/core/port"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Start greets the requester. Registered behind the access gate, it is the first contact
// that puts unknown identities on the pending list.
type Start struct {
	notifier port.Notifier
	command  string
}

func NewStart(notifier port.Notifier, command string) *Start {
	return &Start{notifier: notifier, command: command}
}

func (s *Start) GetCommand() string {
	return s.command
}

const greeting = "Hello %s, you are authorized to use this bot."

func (s *Start) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", int64(message.ChatID)).
		Str("command", s.GetCommand()).
		Msg("handling request")

	name := message.FirstName
	if name == "" {
		name = fmt.Sprintf("%d", message.ChatID)
	}

	err := s.notifier.Notify(ctx, message.ChatID, fmt.Sprintf(greeting, name))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingFailed, err)
	}

	return nil
}
