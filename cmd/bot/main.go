package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"spam_bot/internal/bot"
	"spam_bot/internal/classify"
	"spam_bot/internal/config"
	"spam_bot/internal/filter"
	"spam_bot/internal/ruleset"
	"spam_bot/internal/scheduler"
	"spam_bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	engine, err := filter.EngineByName(cfg.RegexEngine, cfg.RegexTimeout)
	if err != nil {
		log.Error("select regex engine", "engine", cfg.RegexEngine, "error", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.FiltersPath != "" {
		n, err := ruleset.Seed(ctx, store, cfg.FiltersPath, cfg.SeedChatID, engine)
		if err != nil {
			log.Error("seed filters", "path", cfg.FiltersPath, "chat_id", cfg.SeedChatID, "error", err)
			os.Exit(1)
		}
		if n > 0 {
			log.Info("seeded filters", "count", n, "chat_id", cfg.SeedChatID)
		}
	}

	classifier := classify.New(store, engine, log)
	if cfg.WordsPath != "" {
		words, err := ruleset.LoadWordModelFile(cfg.WordsPath)
		if err != nil {
			log.Error("load word model", "path", cfg.WordsPath, "error", err)
			os.Exit(1)
		}
		classifier.SetWordModel(words)
		log.Info("loaded word model", "words", words.Len(), "prior", words.Prior())
	}

	b, err := bot.New(cfg.TelegramBotToken, store, classifier, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(store, classifier, b, log)

	log.Info("starting bot", "regex_engine", cfg.RegexEngine)

	go sched.Run(ctx)

	b.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
