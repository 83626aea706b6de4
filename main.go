package main

import (
	"authbot/internal/adapters/handler"
	"authbot/internal/adapters/sender"
	"authbot/internal/adapters/store"
	"authbot/internal/config"
	"authbot/internal/core/domain"
	"authbot/internal/core/domain/command"
	"authbot/internal/core/service"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "authbot",
		Short:         "Telegram bot with an admin-managed access list",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.toml (default ./config.toml)")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start polling Telegram",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "state",
		Short: "Print the authorized and pending identities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printState(cmd.Context(), cmd.OutOrStdout(), configPath)
		},
	})

	return root
}

func run(parent context.Context, configPath string) error {
	log.Info().Msg("starting authbot...")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel())

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	identityStore, err := store.Open(store.Backend(cfg.Store.Backend), cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("failed opening identity store")
	}

	state, err := service.NewBotState(ctx, identityStore, domain.Identity(cfg.Telegram.AdminID))
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("failed loading bot state")
	}
	defer func() {
		if err := state.Close(); err != nil {
			log.Err(err).Msg("failed closing identity store")
		}
	}()

	b, err := bot.New(cfg.Telegram.BotToken, bot.WithDefaultHandler(noOpHandler))
	if err != nil {
		log.Error().Err(err).Msg("failed initializing telegram bot")
		return err
	}

	s := sender.NewTelegram(b)

	commandRegistry := &command.Registry{}
	err = commandRegistry.Register(
		command.New(
			service.NewAccessGate(command.NewStart(s, "/start"), state, s, domain.PendingPolicy(cfg.Bot.PendingPolicy)),
			command.WithDescription("check your access"),
		),
		command.New(
			service.NewAdminGate(command.NewAuthorize(state, s, "/authorize"), state),
			command.WithPassArgs(),
			command.WithDescription("authorize ids (admin only)"),
		),
		command.New(
			service.NewAdminGate(command.NewPending(state, s, "/pending"), state),
			command.WithDescription("list ids waiting for authorization (admin only)"),
		),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed building command registry")
		return err
	}

	publishCommands(ctx, s, commandRegistry)

	commandHandler := handler.NewCommand(commandRegistry, cfg.Handler.Timeout)

	b.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, commandHandler.Handle)
	b.RegisterHandlerMatchFunc(isEditedCommand, commandHandler.Handle)

	log.Info().
		Int64("adminId", cfg.Telegram.AdminID).
		Strs("commands", commandRegistry.ListCommands()).
		Msg("bot listening")
	b.Start(ctx)

	log.Info().Msg("bot stopped")

	return nil
}

func publishCommands(ctx context.Context, s *sender.Telegram, registry *command.Registry) {
	var descriptions []sender.CommandDescription
	for _, name := range registry.ListCommands() {
		opts, err := registry.Options(name)
		if err != nil {
			continue
		}
		descriptions = append(descriptions, sender.CommandDescription{Command: name, Description: opts.Description})
	}

	if err := s.SetCommands(ctx, descriptions); err != nil {
		log.Warn().Err(err).Msg("could not publish command menu")
	}
}

func isEditedCommand(update *models.Update) bool {
	return update.EditedMessage != nil && strings.HasPrefix(update.EditedMessage.Text, "/")
}

func printState(ctx context.Context, out io.Writer, configPath string) error {
	cfg, err := config.LoadStore(configPath)
	if err != nil {
		return err
	}

	identityStore, err := store.Open(store.Backend(cfg.Store.Backend), cfg.Store.Path)
	if err != nil {
		return err
	}
	defer identityStore.Close()

	authorized, pending, err := identityStore.Load(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SET\tID\tFIRST NAME\tLAST NAME")
	writeSet(w, "authorized", authorized)
	writeSet(w, "pending", pending)

	return w.Flush()
}

func writeSet(w io.Writer, name string, set map[domain.Identity]domain.IdentityMetadata) {
	ids := make([]domain.Identity, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", name, id, set[id].FirstName, set[id].LastName)
	}
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
