package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeSquared-Agency/scrumbot/internal/api"
	"github.com/MikeSquared-Agency/scrumbot/internal/config"
	"github.com/MikeSquared-Agency/scrumbot/internal/events"
	"github.com/MikeSquared-Agency/scrumbot/internal/keepalive"
	"github.com/MikeSquared-Agency/scrumbot/internal/slackbot"
	"github.com/MikeSquared-Agency/scrumbot/internal/standup"
	"github.com/MikeSquared-Agency/scrumbot/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("scrumbot starting", "port", cfg.Port)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// NATS (optional, events are dropped without it)
	var publisher standup.Publisher = events.Discard{}
	if cfg.NatsURL != "" {
		eventsClient, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		publisher = eventsClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, check-in events will not be published")
	}

	// Slack
	slackAPI, err := slackbot.NewClient(slackbot.Config{
		BotToken: cfg.SlackBotToken,
		AppToken: cfg.SlackAppToken,
		Debug:    cfg.SlackDebug,
	})
	if err != nil {
		slog.Error("invalid slack configuration", "error", err)
		os.Exit(1)
	}

	svc := standup.New(
		cfg.ChannelID,
		slackbot.NewHistory(slackAPI),
		db, db,
		slackbot.NewPoster(slackAPI, slog.Default()),
		publisher,
		slog.Default(),
	)
	bot := slackbot.New(slackAPI, svc, cfg.AdminChannelID, slog.Default())

	// HTTP health server
	srv := api.NewServer(cfg.Port, bot)
	go func() {
		if err := srv.Start(ctx); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Self ping
	pinger := keepalive.New(cfg.KeepaliveURL, slog.Default())
	if err := pinger.Start(keepalive.DefaultSchedule); err != nil {
		slog.Error("failed to start keepalive", "error", err)
		os.Exit(1)
	}
	defer pinger.Stop()

	botErr := make(chan error, 1)
	go func() {
		botErr <- bot.Run(ctx)
	}()

	slog.Info("scrumbot ready", "channel", cfg.ChannelID)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case err := <-botErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("slack bot stopped", "error", err)
		}
	}
	cancel()
	slog.Info("scrumbot stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
