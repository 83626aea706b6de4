package config

import (
	"authbot/internal/adapters/store"
	"authbot/internal/core/domain"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Store    StoreConfig    `mapstructure:"store"`
	Handler  HandlerConfig  `mapstructure:"handler"`
}

type BotConfig struct {
	Name          string `mapstructure:"name"`
	LogLevel      string `mapstructure:"log_level"`
	PendingPolicy string `mapstructure:"pending_policy"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	AdminID  int64  `mapstructure:"admin_id"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type HandlerConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads the TOML config file (config.toml in the working directory when path is empty),
// overlays AUTHBOT_* environment variables and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("bot.name", "AuthBot")
	v.SetDefault("bot.log_level", "info")
	v.SetDefault("bot.pending_policy", string(domain.NotifyOnce))
	v.SetDefault("store.backend", string(store.BackendSQLite))
	v.SetDefault("store.path", "")
	v.SetDefault("handler.timeout", "30s")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.admin_id", 0)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AUTHBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = store.DefaultPath(cfg.Bot.Name, store.Backend(cfg.Store.Backend))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadStore reads only what is needed to open the identity store; no token is required.
func LoadStore(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}

	var missing *MissingTokenError
	if errors.As(err, &missing) {
		return missing.Config, nil
	}

	return nil, err
}

// MissingTokenError is returned when everything but the bot token is valid.
type MissingTokenError struct {
	Config *Config
}

func (e *MissingTokenError) Error() string {
	return "telegram.bot_token is required"
}

func (c *Config) Validate() error {
	if c.Telegram.AdminID == 0 {
		return errors.New("telegram.admin_id is required")
	}
	switch domain.PendingPolicy(c.Bot.PendingPolicy) {
	case domain.NotifyOnce, domain.NotifyAlways:
	default:
		return fmt.Errorf("bot.pending_policy must be %q or %q", domain.NotifyOnce, domain.NotifyAlways)
	}
	switch store.Backend(c.Store.Backend) {
	case store.BackendSQLite, store.BackendFile:
	default:
		return fmt.Errorf("store.backend must be %q or %q", store.BackendSQLite, store.BackendFile)
	}
	if c.Handler.Timeout <= 0 {
		return errors.New("handler.timeout must be positive")
	}
	if _, err := zerolog.ParseLevel(c.Bot.LogLevel); err != nil {
		return fmt.Errorf("bot.log_level: %w", err)
	}
	if c.Telegram.BotToken == "" {
		return &MissingTokenError{Config: c}
	}
	return nil
}

// LogLevel returns the configured zerolog level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Bot.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
