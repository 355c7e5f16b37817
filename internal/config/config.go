// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64

	// FiltersPath names a YAML ruleset imported for SeedChatID when that
	// chat has no filters yet.
	FiltersPath string
	SeedChatID  int64

	// WordsPath names a YAML or JSON word probability table. When set, posts
	// no filter matches are also scored by the word model.
	WordsPath string

	RegexEngine  string
	RegexTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	cfg := &Config{
		TelegramBotToken: token,
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/bot.db"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		FiltersPath:      os.Getenv("FILTERS_PATH"),
		WordsPath:        os.Getenv("WORDS_PATH"),
		RegexEngine:      envOrDefault("REGEX_ENGINE", "posix"),
		RegexTimeout:     time.Second,
	}

	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			cfg.AllowedUsers = append(cfg.AllowedUsers, uid)
		}
	}

	if raw := os.Getenv("SEED_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_CHAT_ID %q: %w", raw, err)
		}
		cfg.SeedChatID = id
	}
	if cfg.FiltersPath != "" && cfg.SeedChatID == 0 {
		return nil, fmt.Errorf("SEED_CHAT_ID is required when FILTERS_PATH is set")
	}

	switch cfg.RegexEngine {
	case "posix", "backtrack":
	default:
		return nil, fmt.Errorf("invalid REGEX_ENGINE %q, use: posix, backtrack", cfg.RegexEngine)
	}

	if raw := os.Getenv("REGEX_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid REGEX_TIMEOUT %q", raw)
		}
		cfg.RegexTimeout = d
	}

	return cfg, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
