package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	NatsURL        string
	NatsToken      string
	DatabaseURL    string
	LogLevel       string
	SlackBotToken  string
	SlackAppToken  string
	SlackDebug     bool
	ChannelID      string
	AdminChannelID string
	KeepaliveURL   string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; variables already set win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           envInt("PORT", 8000),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		SlackBotToken:  envStr("SLACK_BOT_TOKEN", ""),
		SlackAppToken:  envStr("SLACK_APP_TOKEN", ""),
		SlackDebug:     envBool("SLACK_DEBUG", false),
		ChannelID:      envStr("CHANNEL_ID", ""),
		AdminChannelID: envStr("ADMIN_CHANNEL_ID", ""),
		KeepaliveURL:   envStr("KEEPALIVE_URL", envStr("KOYEB_URL", "")),
	}
}

// Validate reports every required variable that is missing.
func (c Config) Validate() error {
	var errs []error
	for _, req := range []struct {
		key, value string
	}{
		{"SLACK_BOT_TOKEN", c.SlackBotToken},
		{"SLACK_APP_TOKEN", c.SlackAppToken},
		{"CHANNEL_ID", c.ChannelID},
		{"DATABASE_URL", c.DatabaseURL},
	} {
		if req.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", req.key))
		}
	}
	return errors.Join(errs...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
