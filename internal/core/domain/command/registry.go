package command

import (
	"authbot/internal/core/domain"
	"authbot/internal/core/port"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// Options is the dispatch metadata attached to a handler at registration time.
type Options struct {
	// PassArgs hands the whitespace separated tokens after the command to the handler.
	PassArgs bool
	// AllowEdited also dispatches edited messages.
	AllowEdited bool
	// Description is published to the Telegram command menu.
	Description string
}

type Option func(*Options)

func WithPassArgs() Option {
	return func(o *Options) { o.PassArgs = true }
}

func WithAllowEdited() Option {
	return func(o *Options) { o.AllowEdited = true }
}

func WithDescription(description string) Option {
	return func(o *Options) { o.Description = description }
}

// Registration pairs a handler with its dispatch options. Building one never invokes the handler.
type Registration struct {
	Handler port.Command
	Options Options
}

// New builds a registration. Without options it is a bare registration.
func New(handler port.Command, opts ...Option) Registration {
	r := Registration{Handler: handler}
	for _, opt := range opts {
		opt(&r.Options)
	}

	return r
}

type entry struct {
	handler port.Command
	options Options
}

type Registry struct {
	commands map[string]entry
}

// Register installs one dispatch entry per registration, keyed by the handler's command name.
// A name that is already taken is rejected with domain.ErrDuplicateCommand.
func (r *Registry) Register(registrations ...Registration) error {
	if r.commands == nil {
		r.commands = make(map[string]entry)
	}

	for _, reg := range registrations {
		name := normalizeCommand(reg.Handler.GetCommand())
		if name == "/" {
			return errors.New("empty command name")
		}

		if _, ok := r.commands[name]; ok {
			log.Error().Str("handler", name).Msg("command registered twice")
			return fmt.Errorf("%w: %s", domain.ErrDuplicateCommand, name)
		}

		log.Info().
			Str("handler", name).
			Bool("passArgs", reg.Options.PassArgs).
			Bool("allowEdited", reg.Options.AllowEdited).
			Msg("adding command handler to registry")
		r.commands[name] = entry{handler: reg.Handler, options: reg.Options}
	}

	return nil
}

func (r *Registry) Get(command string) (port.Command, error) {
	e, err := r.lookup(command)
	if err != nil {
		return nil, err
	}

	return e.handler, nil
}

// Options returns the dispatch options a command was registered with.
func (r *Registry) Options(command string) (Options, error) {
	e, err := r.lookup(command)
	if err != nil {
		return Options{}, err
	}

	return e.options, nil
}

func (r *Registry) lookup(command string) (entry, error) {
	log.Debug().Str("command", command).Msg("fetching command handler from registry")

	if r.commands == nil {
		return entry{}, domain.ErrRegistryNotInitialized
	}

	e, ok := r.commands[normalizeCommand(command)]
	if !ok {
		return entry{}, domain.ErrCommandNotFound
	}

	return e, nil
}

// ListCommands returns the registered command names in sorted order.
func (r *Registry) ListCommands() []string {
	keys := make([]string, 0, len(r.commands))
	for k := range r.commands {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}

func normalizeCommand(command string) string {
	return "/" + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(command)), "/")
}

// ParseCommand splits "/cmd@botname arg1 arg2" into "/cmd" and its argument tokens.
func ParseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}

	command, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]
	if len(args) == 0 {
		args = nil
	}

	return strings.ToLower(command), args
}
