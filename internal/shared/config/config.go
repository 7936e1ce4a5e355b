package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Bot transport modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv         string
	LogLevel       string
	EncryptionKey  string
	DatabaseURL    string
	ReviewerChatID int64
	OpsListenAddr  string
	Bot            BotConfig
}

// BotConfig configures the Telegram side.
type BotConfig struct {
	Token             string
	Mode              string
	WebAppURL         string
	WorkerPoolSize    int
	PollingTimeout    int
	WebhookURL        string
	WebhookListenPort int
}

// IsDev reports whether console logging and API debug output are wanted.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// envBindings maps viper keys to the environment variables that feed them.
var envBindings = map[string]string{
	"app.env":              "APP_ENV",
	"log.level":            "LOG_LEVEL",
	"encryption.key":       "ENCRYPTION_KEY",
	"database.url":         "DATABASE_URL",
	"reviewer.chat_id":     "REVIEWER_CHAT_ID",
	"ops.listen_addr":      "OPS_LISTEN_ADDR",
	"bot.token":            "BOT_TOKEN",
	"bot.mode":             "BOT_MODE",
	"bot.webapp_url":       "WEBAPP_URL",
	"bot.worker_pool_size": "BOT_WORKER_POOL_SIZE",
	"bot.polling_timeout":  "BOT_POLLING_TIMEOUT",
	"bot.webhook.url":      "WEBHOOK_URL",
	"bot.webhook.port":     "WEBHOOK_LISTEN_PORT",
}

// Load loads configuration from the environment, reading a .env file
// first when one exists.
func Load() (*Config, error) {
	// 1. Load .env file into the process environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// 2. Explicitly bind viper keys to env var names
	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	// 3. Set defaults
	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("ops.listen_addr", ":9090")
	v.SetDefault("bot.mode", ModePolling)
	v.SetDefault("bot.worker_pool_size", 10)
	v.SetDefault("bot.polling_timeout", 30)
	v.SetDefault("bot.webhook.port", 8443)

	// 4. Get values
	cfg := Config{
		AppEnv:         v.GetString("app.env"),
		LogLevel:       v.GetString("log.level"),
		EncryptionKey:  v.GetString("encryption.key"),
		DatabaseURL:    v.GetString("database.url"),
		ReviewerChatID: v.GetInt64("reviewer.chat_id"),
		OpsListenAddr:  v.GetString("ops.listen_addr"),
		Bot: BotConfig{
			Token:             v.GetString("bot.token"),
			Mode:              v.GetString("bot.mode"),
			WebAppURL:         v.GetString("bot.webapp_url"),
			WorkerPoolSize:    v.GetInt("bot.worker_pool_size"),
			PollingTimeout:    v.GetInt("bot.polling_timeout"),
			WebhookURL:        v.GetString("bot.webhook.url"),
			WebhookListenPort: v.GetInt("bot.webhook.port"),
		},
	}

	// 5. Validation
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.EncryptionKey == "" {
		return errors.New("ENCRYPTION_KEY is not set in environment or .env file")
	}
	if len(c.EncryptionKey) != 64 {
		return fmt.Errorf("ENCRYPTION_KEY must be a 64-character hex string (32 bytes), but got %d chars", len(c.EncryptionKey))
	}
	if _, err := hex.DecodeString(c.EncryptionKey); err != nil {
		return fmt.Errorf("ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.Bot.Token == "" {
		return errors.New("BOT_TOKEN is not set")
	}
	if c.ReviewerChatID == 0 {
		return errors.New("REVIEWER_CHAT_ID is not set or not a number")
	}

	switch c.Bot.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Bot.WebhookURL == "" {
			return errors.New("WEBHOOK_URL is required when BOT_MODE=webhook")
		}
		if c.Bot.WebhookListenPort <= 0 || c.Bot.WebhookListenPort > 65535 {
			return fmt.Errorf("WEBHOOK_LISTEN_PORT %d is out of range", c.Bot.WebhookListenPort)
		}
	default:
		return fmt.Errorf("BOT_MODE must be %q or %q, got %q", ModePolling, ModeWebhook, c.Bot.Mode)
	}

	if c.Bot.WorkerPoolSize < 1 {
		return fmt.Errorf("BOT_WORKER_POOL_SIZE must be positive, got %d", c.Bot.WorkerPoolSize)
	}
	if c.Bot.PollingTimeout < 0 {
		return fmt.Errorf("BOT_POLLING_TIMEOUT must not be negative, got %d", c.Bot.PollingTimeout)
	}
	return nil
}
