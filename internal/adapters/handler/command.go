package handler

import (
	"authbot/internal/core/domain"
	"authbot/internal/core/domain/command"
	"authbot/internal/core/port"
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

type Registry interface {
	port.CommandRegistry
	Options(command string) (command.Options, error)
}

type Command struct {
	registry Registry
	timeout  time.Duration
}

func NewCommand(registry Registry, timeout time.Duration) *Command {
	return &Command{registry: registry, timeout: timeout}
}

// Handle dispatches one update to its registered command and waits for it to finish.
func (c *Command) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg, edited := effectiveMessage(update)
	if msg == nil {
		return
	}

	cmd, args := command.ParseCommand(msg.Text)
	if cmd == "" {
		return
	}

	requestID, err := uuid.NewV4()
	if err != nil {
		log.Err(err).Msg("failed to generate request id")
	}

	l := log.With().
		Str("requestId", requestID.String()).
		Str("command", cmd).
		Int64("chatId", msg.Chat.ID).
		Logger()

	l.Debug().Str("message", msg.Text).Msg("received command")

	commandHandler, err := c.registry.Get(cmd)
	if err != nil {
		l.Debug().Err(err).Msg("no handler for command")
		return
	}

	opts, err := c.registry.Options(cmd)
	if err != nil {
		l.Debug().Err(err).Msg("no options for command")
		return
	}

	if edited && !opts.AllowEdited {
		l.Debug().Msg("ignoring edited message")
		return
	}

	if !opts.PassArgs {
		args = nil
	}

	message := &domain.Message{
		ID:        msg.ID,
		ChatID:    domain.Identity(msg.Chat.ID),
		FirstName: msg.Chat.FirstName,
		LastName:  msg.Chat.LastName,
		Username:  msg.Chat.Username,
		Command:   cmd,
		Args:      args,
		Text:      msg.Text,
		Edited:    edited,
	}
	if msg.From != nil && message.FirstName == "" && message.LastName == "" {
		message.FirstName = msg.From.FirstName
		message.LastName = msg.From.LastName
		message.Username = msg.From.Username
	}

	reqCtx, cancel := context.WithTimeout(l.WithContext(ctx), c.timeout)
	defer cancel()

	err = commandHandler.Respond(reqCtx, c.timeout, message)
	if err != nil {
		l.Err(err).Msg("failed to respond to command")
	}
}

func effectiveMessage(update *models.Update) (*models.Message, bool) {
	if update == nil {
		return nil, false
	}

	if update.Message != nil {
		return update.Message, false
	}

	if update.EditedMessage != nil {
		return update.EditedMessage, true
	}

	return nil, false
}
