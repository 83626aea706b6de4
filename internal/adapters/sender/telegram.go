package sender

import (
	"authbot/internal/core/domain"
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// TelegramMessageLimit is the maximum text length of a single Telegram message.
const TelegramMessageLimit = 4096

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

type Telegram struct {
	bot TelegramBot
}

func NewTelegram(bot TelegramBot) *Telegram {
	return &Telegram{bot: bot}
}

// Notify sends text to the target chat, split into chunks Telegram accepts.
func (s *Telegram) Notify(ctx context.Context, target domain.Identity, text string) error {
	for _, chunk := range chunkText(text, TelegramMessageLimit) {
		_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: int64(target),
			Text:   chunk,
		})
		if err != nil {
			log.Error().Err(err).Int64("chatId", int64(target)).Msg("failed to send message")
			return err
		}
	}

	log.Debug().Int64("chatId", int64(target)).Msg("notification sent")

	return nil
}

// CommandDescription is one entry of the command menu.
type CommandDescription struct {
	Command     string
	Description string
}

// SetCommands publishes the command menu. Entries without description are skipped.
func (s *Telegram) SetCommands(ctx context.Context, commands []CommandDescription) error {
	botCommands := make([]models.BotCommand, 0, len(commands))
	for _, c := range commands {
		if c.Description == "" {
			continue
		}
		botCommands = append(botCommands, models.BotCommand{
			Command:     strings.TrimPrefix(c.Command, "/"),
			Description: c.Description,
		})
	}

	if len(botCommands) == 0 {
		return nil
	}

	_, err := s.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: botCommands})
	if err != nil {
		log.Error().Err(err).Msg("failed to set bot commands")
		return err
	}

	return nil
}

func chunkText(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		n := min(limit, len(runes))
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}

	return chunks
}
